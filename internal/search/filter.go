// Package search implements the client-side filter over an
// already-rendered job listing. Filtering is pure and synchronous: the
// same term and category always produce the same visible set.
package search

import (
	"fmt"
	"strings"
)

// Card is one job card as rendered in the listing.
type Card struct {
	ID            int
	Title         string
	Description   string
	CategoryText  string // displayed category name
	CategoryValue string // category slug attribute
}

// Query is the active search state.
type Query struct {
	Term         string // free-text term, matched case-insensitively
	Category     string // category slug, empty for all
	CategoryName string // display name of the selected category, for the summary line
}

// Result is the deterministic outcome of applying a Query to a card list.
type Result struct {
	Visible      []Card
	VisibleCount int
	ActiveSearch bool // a term or category is in effect
	NoResults    bool // active search matched nothing
	Summary      string
}

// categoryAliases maps category slugs to display-name substrings that
// still count as a match when a card's slug attribute disagrees with the
// selected value. Matching is case-insensitive.
var categoryAliases = map[string][]string{
	"web-development":    {"web development", "web dev"},
	"mobile-development": {"mobile development", "mobile dev", "mobile app"},
	"design":             {"design", "graphic design", "ui/ux"},
	"writing":            {"writing", "content writing", "copywriting"},
	"marketing":          {"marketing", "digital marketing"},
	"data-entry":         {"data entry", "data processing"},
	"other":              {"other", "miscellaneous"},
}

// textMatch reports whether the card's title, description, or category
// text contains the lowercased term. An empty term matches everything.
func textMatch(c Card, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), term) ||
		strings.Contains(strings.ToLower(c.Description), term) ||
		strings.Contains(strings.ToLower(c.CategoryText), term)
}

// categoryMatch reports whether the card belongs to the selected category,
// either by exact slug or through the alias table fallback.
func categoryMatch(c Card, category string) bool {
	if category == "" {
		return true
	}
	if c.CategoryValue == category {
		return true
	}
	display := strings.ToLower(c.CategoryText)
	for _, alias := range categoryAliases[category] {
		if strings.Contains(display, alias) {
			return true
		}
	}
	return false
}

// Filter applies q to cards, preserving listing order. The visible set is
// exactly the cards satisfying textMatch AND categoryMatch, and the count
// always equals its size.
func Filter(cards []Card, q Query) Result {
	term := strings.ToLower(strings.TrimSpace(q.Term))

	var visible []Card
	for _, c := range cards {
		if textMatch(c, term) && categoryMatch(c, q.Category) {
			visible = append(visible, c)
		}
	}

	active := term != "" || q.Category != ""
	return Result{
		Visible:      visible,
		VisibleCount: len(visible),
		ActiveSearch: active,
		NoResults:    active && len(visible) == 0,
		Summary:      summary(term, q),
	}
}

func summary(term string, q Query) string {
	name := q.CategoryName
	if name == "" {
		name = q.Category
	}
	switch {
	case term != "" && q.Category != "":
		return fmt.Sprintf(" for %q in category %q", term, name)
	case term != "":
		return fmt.Sprintf(" for %q", term)
	case q.Category != "":
		return fmt.Sprintf(" in category %q", name)
	}
	return ""
}
