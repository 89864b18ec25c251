package ui

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/workhubhq/workhub-cli/internal/models"
)

// EscapeHTML escapes text destined for a rendered fragment. Job titles
// and descriptions come from other users and are never trusted.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// RenderDetailHTML builds the job detail panel fragment: escaped title
// and description (newlines become <br>) and the action button variant
// for the viewer's relationship to the job.
func RenderDetailHTML(job *models.JobDetail) string {
	var action string
	switch {
	case job.IsOwner:
		action = ""
	case job.HasApplied:
		action = `<button class="btn btn-secondary" disabled>Already Applied</button>`
	default:
		action = fmt.Sprintf(`<a href="/apply/%d/" class="btn btn-success">Apply Now</a>`, job.ID)
	}

	var b strings.Builder
	b.WriteString(`<div class="fade-in">`)
	b.WriteString(fmt.Sprintf(`<h5 class="mb-3">%s</h5>`, EscapeHTML(job.Title)))
	b.WriteString(fmt.Sprintf(`<p class="text-muted">%s</p>`,
		strings.ReplaceAll(EscapeHTML(job.Description), "\n", "<br>")))
	b.WriteString(fmt.Sprintf(`<div class="d-grid">%s</div>`, action))
	if job.IsOwner {
		b.WriteString(`<small class="text-muted">This is your job posting</small>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// PrintDetail renders the job detail panel to the terminal.
func PrintDetail(job *models.JobDetail) {
	pterm.DefaultSection.Println(job.Title)
	fmt.Println(job.Description)
	fmt.Println()
	switch {
	case job.IsOwner:
		pterm.Info.Println("This is your job posting")
	case job.HasApplied:
		pterm.Warning.Println("Already Applied")
	default:
		pterm.Success.Printf("Apply Now: /apply/%d/\n", job.ID)
	}
}

// FormatAmount renders a payment amount with a dollar sign and thousands
// separators when the raw value is numeric; otherwise it passes the
// server's string through.
func FormatAmount(amount string) string {
	raw := strings.TrimPrefix(strings.TrimSpace(amount), "$")
	if n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
		if n == float64(int64(n)) {
			return "$" + humanize.Comma(int64(n))
		}
		return "$" + humanize.CommafWithDigits(n, 2)
	}
	return amount
}

// ColorizeAmount colors a formatted amount for terminal output.
func ColorizeAmount(amount string) string {
	formatted := FormatAmount(amount)
	if formatted == "" {
		return pterm.Red("Not Available")
	}
	return pterm.Green(formatted)
}
