package poll

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/workhubhq/workhub-cli/internal/models"
)

// ParseMessages extracts the messages from a rendered conversation
// fragment, in document order. Each message node carries a
// data-message-id attribute.
func ParseMessages(fragment []byte) ([]models.Message, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(fragment)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message fragment: %v", err)
	}

	var msgs []models.Message
	doc.Find("[data-message-id]").Each(func(i int, s *goquery.Selection) {
		id, _ := s.Attr("data-message-id")
		if id == "" {
			return
		}
		html, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		msgs = append(msgs, models.Message{ID: id, HTML: html})
	})
	return msgs, nil
}

// CompareIDs orders two message identifiers. Numeric IDs are compared as
// integers so that 10 sorts after 9; anything non-numeric falls back to
// plain string order.
func CompareIDs(a, b string) int {
	an, aerr := strconv.ParseInt(a, 10, 64)
	bn, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	// An empty side means "nothing seen yet" and sorts before everything.
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

// Conversation mirrors the live message container: the messages already
// shown, an index for duplicate suppression, and the last-seen message
// identifier used as the cut line for appends.
type Conversation struct {
	messages []models.Message
	index    map[string]struct{}
	lastID   string
}

// NewConversation seeds the state from the messages present when the
// page loaded.
func NewConversation(initial []models.Message) *Conversation {
	c := &Conversation{index: make(map[string]struct{})}
	for _, m := range initial {
		c.messages = append(c.messages, m)
		c.index[m.ID] = struct{}{}
	}
	if n := len(initial); n > 0 {
		c.lastID = initial[n-1].ID
	}
	return c
}

// LastID returns the current cut line.
func (c *Conversation) LastID() string { return c.lastID }

// Messages returns the messages currently in the container, in order.
func (c *Conversation) Messages() []models.Message {
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Reconcile merges a freshly fetched fragment into the container.
// Messages past the cut line are appended in fragment order, each at
// most once; identifiers already present are never duplicated. The
// returned slice holds exactly what was appended, and the caller should
// scroll to the bottom only when it is non-empty.
func (c *Conversation) Reconcile(fetched []models.Message) []models.Message {
	n := len(fetched)
	if n == 0 {
		return nil
	}
	lastFetched := fetched[n-1].ID
	if lastFetched == c.lastID {
		return nil
	}

	var appended []models.Message
	foundNew := false
	for _, m := range fetched {
		if !foundNew && CompareIDs(m.ID, c.lastID) <= 0 {
			continue
		}
		foundNew = true
		if _, dup := c.index[m.ID]; dup {
			continue
		}
		c.messages = append(c.messages, m)
		c.index[m.ID] = struct{}{}
		appended = append(appended, m)
	}

	c.lastID = lastFetched
	return appended
}

// ExtractRegion pulls the inner HTML of the element with the given id out
// of a full page. Returns false when the page has no such region.
func ExtractRegion(page []byte, id string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		return "", false
	}
	sel := doc.Find("#" + id).First()
	if sel.Length() == 0 {
		return "", false
	}
	html, err := sel.Html()
	if err != nil {
		return "", false
	}
	return html, true
}
