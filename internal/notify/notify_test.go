package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietNotifier() *Notifier {
	n := NewNotifier()
	n.SetRenderer(nil)
	return n
}

func activeTitles(n *Notifier) []string {
	var titles []string
	for _, t := range n.Active() {
		titles = append(titles, t.Title)
	}
	return titles
}

func TestToastsStackInsteadOfReplacing(t *testing.T) {
	n := quietNotifier()

	n.Error("Network Error", "Unable to connect to the server. Please try again.")
	n.Success("Success", "Application accepted successfully!")

	assert.Equal(t, []string{"Network Error", "Success"}, activeTitles(n))
}

func TestDismissRemovesOnlyThatToast(t *testing.T) {
	n := quietNotifier()

	first := n.Error("Error", "first")
	n.Warning("Warning", "second")
	third := n.Info("Info", "third")

	n.Dismiss(first)
	assert.Equal(t, []string{"Warning", "Info"}, activeTitles(n))

	n.Dismiss(third)
	assert.Equal(t, []string{"Warning"}, activeTitles(n))
}

func TestDismissUnknownIDIsIgnored(t *testing.T) {
	n := quietNotifier()
	n.Success("Success", "still here")

	n.Dismiss(999)
	assert.Len(t, n.Active(), 1)
}

func TestToastsExpireIndependently(t *testing.T) {
	n := quietNotifier()

	n.ShowFor(Error, "short", "", 20*time.Millisecond)
	n.ShowFor(Success, "long", "", 10*time.Second)

	require.Eventually(t, func() bool {
		return len(n.Active()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"long"}, activeTitles(n))
}

func TestDismissStopsExpiryTimer(t *testing.T) {
	n := quietNotifier()

	id := n.ShowFor(Error, "gone", "", 20*time.Millisecond)
	n.Dismiss(id)
	n.Success("kept", "")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"kept"}, activeTitles(n))
}

func TestClearDismissesEverything(t *testing.T) {
	n := quietNotifier()
	n.Error("a", "")
	n.Warning("b", "")

	n.Clear()
	assert.Empty(t, n.Active())
}

func TestShowCallsRenderer(t *testing.T) {
	n := NewNotifier()
	var rendered []Toast
	n.SetRenderer(func(t Toast) { rendered = append(rendered, t) })

	n.Success("Account Created!", "Please select your role to continue.")

	require.Len(t, rendered, 1)
	assert.Equal(t, Success, rendered[0].Kind)
	assert.Equal(t, "Account Created!", rendered[0].Title)
	assert.Equal(t, "Please select your role to continue.", rendered[0].Message)
	assert.Equal(t, DefaultDuration, rendered[0].Duration)
}

func TestBadgeDotTracksCount(t *testing.T) {
	b := NewBadge(nil)

	b.Update(3)
	assert.Equal(t, 3, b.Count())
	assert.True(t, b.HasDot())
	assert.Equal(t, "danger", b.Style())

	b.Update(0)
	assert.Equal(t, 0, b.Count())
	assert.False(t, b.HasDot())
	assert.Equal(t, "primary", b.Style())
}

func TestBadgeUpdateIsIdempotent(t *testing.T) {
	var fired int
	b := NewBadge(func(int, bool) { fired++ })

	b.Update(2)
	b.Update(2)
	b.Update(2)
	assert.Equal(t, 1, fired)

	b.Update(5)
	assert.Equal(t, 2, fired)
}

func TestBadgeNegativeCountClampsToZero(t *testing.T) {
	b := NewBadge(nil)
	b.Update(4)
	b.Update(-1)

	assert.Equal(t, 0, b.Count())
	assert.False(t, b.HasDot())
}
