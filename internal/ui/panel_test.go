package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workhubhq/workhub-cli/internal/models"
)

func TestRenderDetailHTMLEscapesUserContent(t *testing.T) {
	job := &models.JobDetail{
		ID:          3,
		Title:       `<script>alert("x")</script>`,
		Description: "Line one\nLine two & more",
	}

	out := RenderDetailHTML(job)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Line one<br>Line two &amp; more")
	assert.Contains(t, out, `href="/apply/3/"`)
	assert.Contains(t, out, "Apply Now")
}

func TestRenderDetailHTMLButtonVariants(t *testing.T) {
	applied := RenderDetailHTML(&models.JobDetail{ID: 1, Title: "t", HasApplied: true})
	assert.Contains(t, applied, "Already Applied")
	assert.NotContains(t, applied, "Apply Now")

	owner := RenderDetailHTML(&models.JobDetail{ID: 1, Title: "t", IsOwner: true})
	assert.Contains(t, owner, "This is your job posting")
	assert.NotContains(t, owner, "Apply Now")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,500", FormatAmount("1500"))
	assert.Equal(t, "$1,500", FormatAmount("$1,500"))
	assert.Equal(t, "$2,499.99", FormatAmount("2499.99"))
	// Non-numeric server strings pass through unchanged.
	assert.Equal(t, "on request", FormatAmount("on request"))
}

func TestFormatURL(t *testing.T) {
	assert.Equal(t, "https://x.example/wallet/",
		FormatURL("https://x.example/wallet/", "Wallet", false))

	link := FormatURL("https://x.example/wallet/", "Wallet", true)
	assert.Contains(t, link, "\033]8;;https://x.example/wallet/")
	assert.Contains(t, link, "Wallet")
}
