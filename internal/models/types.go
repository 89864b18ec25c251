package models

// JobDetail represents a single job fetched from the detail endpoint.
// It is read-only and discarded when the detail panel is closed.
type JobDetail struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsOwner     bool   `json:"is_owner"`
	HasApplied  bool   `json:"has_applied"`
}

// ApplicationAction describes an accept/decline decision extracted from a
// listing row at the moment the action is triggered. Never cached.
type ApplicationAction struct {
	ApplicationID int
	Action        string // "accept" or "decline"
	Freelancer    string
	Amount        string
	JobTitle      string
}

// StatusUpdateResult is the server's answer to an application status change.
type StatusUpdateResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
	Error             string `json:"error,omitempty"`
	InsufficientFunds bool   `json:"insufficient_funds,omitempty"`
}

// SubmitResult is the server's answer to a work submission.
type SubmitResult struct {
	Success         bool     `json:"success"`
	PaymentReleased string   `json:"payment_released,omitempty"`
	Files           []string `json:"files,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// ReleaseResult is the server's answer to a payment release request.
type ReleaseResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AccountResult covers both the registration and role-selection responses.
// A refreshed CSRF token may ride along after registration rotates the
// session.
type AccountResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
	CSRFToken string `json:"csrfToken,omitempty"`
}

// Message is one message in a conversation. The ID is an opaque string
// taken from the fragment's data-message-id attribute; HTML holds the
// server-rendered markup for the message node.
type Message struct {
	ID   string
	HTML string
}
