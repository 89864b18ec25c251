// Package review implements the pre-submit gate for peer reviews. The
// server stays authoritative; this only blocks requests that would be
// rejected anyway.
package review

import (
	"strings"
	"unicode/utf8"
)

// Feedback length bounds. Exactly MaxFeedbackLen characters is accepted;
// the user-facing copy says "under 1000" but the implemented boundary is
// inclusive and is preserved here.
const (
	MinFeedbackLen = 10
	MaxFeedbackLen = 1000
)

// ValidationError names the blocked condition the way the notifier shows
// it: a short title and an actionable message.
type ValidationError struct {
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Title + ": " + e.Message
}

// Validate checks a review before the form is allowed to submit. Rating
// must be a committed 1-5 star value; feedback is trimmed before its
// length is checked.
func Validate(rating int, feedback string) error {
	if rating < 1 || rating > 5 {
		return &ValidationError{
			Title:   "Rating Required",
			Message: "Please select a star rating before submitting your review.",
		}
	}
	// Character counts, not bytes: accented text must not slip past the
	// minimum or get cut short of the maximum.
	trimmed := strings.TrimSpace(feedback)
	length := utf8.RuneCountInString(trimmed)
	if length < MinFeedbackLen {
		return &ValidationError{
			Title:   "Review Too Short",
			Message: "Please provide a more detailed review (at least 10 characters).",
		}
	}
	if length > MaxFeedbackLen {
		return &ValidationError{
			Title:   "Review Too Long",
			Message: "Please keep your review under 1000 characters.",
		}
	}
	return nil
}

// CountZone classifies the live character count for the counter styling.
func CountZone(count int) string {
	switch {
	case count > MaxFeedbackLen:
		return "danger"
	case count > 900:
		return "warning"
	default:
		return ""
	}
}

var ratingTexts = []string{"", "Poor", "Fair", "Good", "Very Good", "Excellent"}

// RatingText returns the label for a 1-5 rating, empty otherwise.
func RatingText(rating int) string {
	if rating < 1 || rating > 5 {
		return ""
	}
	return ratingTexts[rating]
}

// StarWidget models the rating input: hovering previews a value without
// committing it, and leaving the widget reverts the preview to the
// committed rating or to unselected.
type StarWidget struct {
	committed int
	hover     int
}

// Commit selects a rating. Values outside 1-5 are ignored.
func (w *StarWidget) Commit(rating int) {
	if rating >= 1 && rating <= 5 {
		w.committed = rating
	}
}

// Hover previews a rating without committing it.
func (w *StarWidget) Hover(rating int) {
	if rating >= 1 && rating <= 5 {
		w.hover = rating
	}
}

// Leave ends the hover preview.
func (w *StarWidget) Leave() {
	w.hover = 0
}

// Display returns the rating currently shown: the hover preview when one
// is active, else the committed rating, else 0 for unselected.
func (w *StarWidget) Display() int {
	if w.hover != 0 {
		return w.hover
	}
	return w.committed
}

// Rating returns the committed rating, 0 when none is selected.
func (w *StarWidget) Rating() int { return w.committed }
