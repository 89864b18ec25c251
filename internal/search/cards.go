package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseCards extracts the job cards from a rendered listing page. Cards
// missing an id are skipped; the rest keep their document order.
func ParseCards(page []byte) ([]Card, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %v", err)
	}

	var cards []Card
	doc.Find(".job-card").Each(func(i int, s *goquery.Selection) {
		rawID, _ := s.Attr("data-job-id")
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return
		}
		category, _ := s.Attr("data-category")
		cards = append(cards, Card{
			ID:            id,
			Title:         strings.TrimSpace(s.Find(".job-title").First().Text()),
			Description:   strings.TrimSpace(s.Find(".job-description").First().Text()),
			CategoryText:  strings.TrimSpace(s.Find(".job-category").First().Text()),
			CategoryValue: category,
		})
	})
	return cards, nil
}
