// Package notify is the in-process notification center: stacked,
// auto-expiring, individually dismissible toasts, plus the unread badge
// state for the navbar.
package notify

import (
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// Toast kinds, each with its own iconography.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

// DefaultDuration is how long a toast stays up unless dismissed.
const DefaultDuration = 5 * time.Second

// Toast is one visible notification.
type Toast struct {
	ID       int
	Kind     Kind
	Title    string
	Message  string
	Duration time.Duration
}

type entry struct {
	toast Toast
	timer *time.Timer
}

// Notifier manages the toast stack. Concurrent toasts stack rather than
// replace; each expires on its own schedule and can be dismissed at any
// time. Renderers are called outside the lock.
type Notifier struct {
	mu     sync.Mutex
	seq    int
	active map[int]*entry
	order  []int
	render func(Toast)
}

// NewNotifier creates a notifier rendering through pterm.
func NewNotifier() *Notifier {
	return &Notifier{
		active: make(map[int]*entry),
		render: renderPterm,
	}
}

// SetRenderer replaces the render hook. A nil renderer silences output.
func (n *Notifier) SetRenderer(render func(Toast)) {
	n.mu.Lock()
	n.render = render
	n.mu.Unlock()
}

func renderPterm(t Toast) {
	line := t.Title
	if t.Message != "" {
		line += ": " + t.Message
	}
	switch t.Kind {
	case Success:
		pterm.Success.Println(line)
	case Error:
		pterm.Error.Println(line)
	case Warning:
		pterm.Warning.Println(line)
	default:
		pterm.Info.Println(line)
	}
}

// Show adds a toast with the default duration and returns its id.
func (n *Notifier) Show(kind Kind, title, message string) int {
	return n.ShowFor(kind, title, message, DefaultDuration)
}

// ShowFor adds a toast that auto-expires after the given duration.
func (n *Notifier) ShowFor(kind Kind, title, message string, duration time.Duration) int {
	if duration <= 0 {
		duration = DefaultDuration
	}

	n.mu.Lock()
	n.seq++
	id := n.seq
	t := Toast{ID: id, Kind: kind, Title: title, Message: message, Duration: duration}
	e := &entry{toast: t}
	e.timer = time.AfterFunc(duration, func() { n.Dismiss(id) })
	n.active[id] = e
	n.order = append(n.order, id)
	render := n.render
	n.mu.Unlock()

	if render != nil {
		render(t)
	}
	return id
}

// Success shows a success toast.
func (n *Notifier) Success(title, message string) int { return n.Show(Success, title, message) }

// Error shows an error toast.
func (n *Notifier) Error(title, message string) int { return n.Show(Error, title, message) }

// Warning shows a warning toast.
func (n *Notifier) Warning(title, message string) int { return n.Show(Warning, title, message) }

// Info shows an info toast.
func (n *Notifier) Info(title, message string) int { return n.Show(Info, title, message) }

// Dismiss removes one toast, cancelling its expiry timer. Unknown ids
// are ignored.
func (n *Notifier) Dismiss(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	e, ok := n.active[id]
	if !ok {
		return
	}
	e.timer.Stop()
	delete(n.active, id)
	for i, v := range n.order {
		if v == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// Clear dismisses every active toast. Used where a module explicitly
// replaces prior toasts before showing a new one.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, e := range n.active {
		e.timer.Stop()
		delete(n.active, id)
	}
	n.order = nil
}

// Active returns the visible toasts in display order.
func (n *Notifier) Active() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Toast, 0, len(n.order))
	for _, id := range n.order {
		if e, ok := n.active[id]; ok {
			out = append(out, e.toast)
		}
	}
	return out
}
