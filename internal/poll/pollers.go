package poll

import (
	"context"
	"log"
	"time"

	"github.com/workhubhq/workhub-cli/internal/models"
)

// Fetcher fetches a page-supplied URL and returns its raw HTML.
type Fetcher func(ctx context.Context) ([]byte, error)

// NewUnreadPoller polls the unread-count endpoint and feeds the count to
// onCount. Errors are swallowed so a flaky connection never disturbs the
// ambient UI; the first check fires immediately on start.
func NewUnreadPoller(interval time.Duration, count func(ctx context.Context) (int, error), onCount func(int)) *Poller {
	return New(interval, true, func(ctx context.Context) {
		n, err := count(ctx)
		if err != nil {
			return // silently fail
		}
		onCount(n)
	})
}

// NewConversationPoller polls the conversation's check endpoint,
// reconciles the fetched fragment against conv, and hands any newly
// appended messages to onAppend. onAppend is only called when something
// was actually appended, which is also the signal to scroll the view to
// the bottom.
func NewConversationPoller(interval time.Duration, fetch Fetcher, conv *Conversation, onAppend func([]models.Message)) *Poller {
	return New(interval, false, func(ctx context.Context) {
		fragment, err := fetch(ctx)
		if err != nil {
			log.Printf("Error checking new messages: %v", err)
			return
		}
		fetched, err := ParseMessages(fragment)
		if err != nil {
			log.Printf("Error parsing messages: %v", err)
			return
		}
		if appended := conv.Reconcile(fetched); len(appended) > 0 {
			onAppend(appended)
		}
	})
}

// NewInboxPoller re-fetches the inbox page, extracts the named
// conversation-list region, and calls onReplace only when its content
// differs byte-for-byte from what is currently shown. Errors are
// swallowed.
func NewInboxPoller(interval time.Duration, fetch Fetcher, regionID, current string, onReplace func(string)) *Poller {
	return New(interval, false, func(ctx context.Context) {
		page, err := fetch(ctx)
		if err != nil {
			return
		}
		region, ok := ExtractRegion(page, regionID)
		if !ok {
			return
		}
		if region == current {
			return
		}
		current = region
		onReplace(region)
	})
}
