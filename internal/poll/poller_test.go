package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhubhq/workhub-cli/internal/models"
)

func TestPollerFiresOnInterval(t *testing.T) {
	var ticks atomic.Int32
	p := New(10*time.Millisecond, false, func(context.Context) {
		ticks.Add(1)
	})

	p.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	p.Stop()

	got := ticks.Load()
	assert.Greater(t, got, int32(2))
	assert.Less(t, got, int32(20))
}

func TestPollerImmediateFiresOnStart(t *testing.T) {
	fired := make(chan struct{})
	p := New(time.Hour, true, func(context.Context) {
		close(fired)
	})

	p.Start(context.Background())
	defer p.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("immediate poller never ticked")
	}
}

func TestPollerSkipsTickWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Int32
	p := New(5*time.Millisecond, true, func(context.Context) {
		started.Add(1)
		<-release
	})

	p.Start(context.Background())
	// Many intervals elapse while the first tick blocks; none of them may
	// start an overlapping tick.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), started.Load())

	close(release)
	time.Sleep(40 * time.Millisecond)
	p.Stop()

	assert.Greater(t, started.Load(), int32(1))
}

func TestPollerSuspendResume(t *testing.T) {
	var ticks atomic.Int32
	p := New(5*time.Millisecond, false, func(context.Context) {
		ticks.Add(1)
	})
	p.Suspend()
	p.Start(context.Background())
	defer p.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), ticks.Load(), "suspended poller must not tick")

	p.Resume()
	require.Eventually(t, func() bool {
		return ticks.Load() > 0
	}, 2*time.Second, 5*time.Millisecond, "resumed poller never ticked")
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := New(5*time.Millisecond, false, func(context.Context) {})
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	var ticks atomic.Int32
	// A stopped poller must refuse to start again.
	p.tick = func(context.Context) { ticks.Add(1) }
	p.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), ticks.Load())
}

func TestPollerStopNeverStarted(t *testing.T) {
	p := New(time.Second, false, func(context.Context) {})
	assert.NotPanics(t, p.Stop)
}

func TestPollerStopCancelsTickContext(t *testing.T) {
	canceled := make(chan struct{})
	p := New(time.Hour, true, func(ctx context.Context) {
		<-ctx.Done()
		close(canceled)
	})

	p.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	p.Stop()

	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("tick context not canceled on Stop")
	}
}

func TestNewUnreadPollerReportsCounts(t *testing.T) {
	var got atomic.Int32
	p := NewUnreadPoller(5*time.Millisecond, func(context.Context) (int, error) {
		return 7, nil
	}, func(n int) {
		got.Store(int32(n))
	})

	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool {
		return got.Load() == 7
	}, 2*time.Second, 5*time.Millisecond)
}

func TestNewConversationPollerAppendsNewMessages(t *testing.T) {
	conv := NewConversation(msgs("1", "2"))
	appended := make(chan []string, 8)

	p := NewConversationPoller(5*time.Millisecond, func(context.Context) ([]byte, error) {
		return fragment("1", "2", "3"), nil
	}, conv, func(ms []models.Message) {
		appended <- appendedIDs(ms)
	})

	p.Start(context.Background())
	defer p.Stop()

	select {
	case ids := <-appended:
		assert.Equal(t, []string{"3"}, ids)
	case <-time.After(2 * time.Second):
		t.Fatal("conversation poller never appended")
	}

	// Subsequent identical fragments must not fire the callback again.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, appended)
}

func TestNewInboxPollerReplacesOnChange(t *testing.T) {
	var page atomic.Value
	page.Store(`<div id="conversations-list">old</div>`)
	replaced := make(chan string, 8)

	p := NewInboxPoller(5*time.Millisecond, func(context.Context) ([]byte, error) {
		return []byte(page.Load().(string)), nil
	}, "conversations-list", "old", func(region string) {
		replaced <- region
	})

	p.Start(context.Background())
	defer p.Stop()

	// Unchanged region content stays quiet.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, replaced)

	page.Store(`<div id="conversations-list">new</div>`)
	select {
	case region := <-replaced:
		assert.Equal(t, "new", region)
	case <-time.After(2 * time.Second):
		t.Fatal("inbox poller never replaced the region")
	}
}
