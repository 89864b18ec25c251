package notify

import "sync"

// Badge tracks the unread indicator: a numeric count plus the navbar
// presence dot that exists exactly when the count is positive. Update is
// idempotent; repeated calls with the same count leave the state alone.
type Badge struct {
	mu       sync.Mutex
	count    int
	dot      bool
	onChange func(count int, dot bool)
}

// NewBadge creates a badge. onChange fires whenever the visible state
// actually changes; nil is allowed.
func NewBadge(onChange func(count int, dot bool)) *Badge {
	return &Badge{onChange: onChange}
}

// Update applies a fresh unread count. The dot is created when the count
// goes positive and removed when it reaches zero; there is never more
// than one dot.
func (b *Badge) Update(count int) {
	if count < 0 {
		count = 0
	}
	b.mu.Lock()
	dot := count > 0
	changed := count != b.count || dot != b.dot
	b.count = count
	b.dot = dot
	fire := b.onChange
	b.mu.Unlock()

	if changed && fire != nil {
		fire(count, dot)
	}
}

// Count returns the last applied unread count.
func (b *Badge) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// HasDot reports whether the navbar dot is present.
func (b *Badge) HasDot() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dot
}

// Style returns the badge styling class for the inbox counter: danger
// while anything is unread, primary otherwise.
func (b *Badge) Style() string {
	if b.HasDot() {
		return "danger"
	}
	return "primary"
}
