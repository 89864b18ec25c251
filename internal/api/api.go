package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/workhubhq/workhub-cli/internal/client"
	"github.com/workhubhq/workhub-cli/internal/models"
)

// Application status values the server accepts. The pending -> accepted or
// declined transition is computed server-side; the client only requests it.
const (
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Endpoints holds the paths the client talks to. The defaults match the
// server's URL layout; UpdateStatus and the messaging URLs can be
// overridden per deployment, mirroring the page-supplied values.
type Endpoints struct {
	JobList        string `yaml:"job_list"`
	JobDetail      string `yaml:"job_detail"`
	SubmitWork     string `yaml:"submit_work"`
	UpdateStatus   string `yaml:"update_status"`
	UnreadCount    string `yaml:"unread_count"`
	ReleasePayment string `yaml:"release_payment"`
	Register       string `yaml:"register"`
	SelectRole     string `yaml:"select_role"`
	ReviewWrite    string `yaml:"review_write"`
	Conversation   string `yaml:"conversation"`
	CheckMessages  string `yaml:"check_messages"`
	Inbox          string `yaml:"inbox"`
	Wallet         string `yaml:"wallet"`
}

// DefaultEndpoints returns the server's standard URL layout.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		JobList:        "/jobs/",
		JobDetail:      "/job/%d/",
		SubmitWork:     "/submit-work/",
		UpdateStatus:   "/update-application-status/",
		UnreadCount:    "/api/unread-count/",
		ReleasePayment: "/release-payment",
		Register:       "/register/",
		SelectRole:     "/save-role/",
		ReviewWrite:    "/write/%d/",
		Conversation:   "/conversation/%d/",
		Inbox:          "/inbox/",
		Wallet:         "/wallet/",
	}
}

// Client binds a session to the marketplace endpoints.
type Client struct {
	sess *client.Session
	eps  Endpoints
}

// New creates an API client. Zero-valued endpoint fields fall back to the
// defaults.
func New(sess *client.Session, eps Endpoints) *Client {
	defs := DefaultEndpoints()
	if eps.JobList == "" {
		eps.JobList = defs.JobList
	}
	if eps.JobDetail == "" {
		eps.JobDetail = defs.JobDetail
	}
	if eps.SubmitWork == "" {
		eps.SubmitWork = defs.SubmitWork
	}
	if eps.UpdateStatus == "" {
		eps.UpdateStatus = defs.UpdateStatus
	}
	if eps.UnreadCount == "" {
		eps.UnreadCount = defs.UnreadCount
	}
	if eps.ReleasePayment == "" {
		eps.ReleasePayment = defs.ReleasePayment
	}
	if eps.Register == "" {
		eps.Register = defs.Register
	}
	if eps.SelectRole == "" {
		eps.SelectRole = defs.SelectRole
	}
	if eps.ReviewWrite == "" {
		eps.ReviewWrite = defs.ReviewWrite
	}
	if eps.Conversation == "" {
		eps.Conversation = defs.Conversation
	}
	if eps.Inbox == "" {
		eps.Inbox = defs.Inbox
	}
	if eps.Wallet == "" {
		eps.Wallet = defs.Wallet
	}
	return &Client{sess: sess, eps: eps}
}

// Session exposes the underlying session, mainly so callers can prime the
// CSRF token before the first mutating request.
func (c *Client) Session() *client.Session { return c.sess }

// Endpoints returns the resolved endpoint set.
func (c *Client) Endpoints() Endpoints { return c.eps }

// JobDetail fetches one job for the detail panel.
func (c *Client) JobDetail(ctx context.Context, id int) (*models.JobDetail, error) {
	body, err := c.sess.Fetch(ctx, fmt.Sprintf(c.eps.JobDetail, id))
	if err != nil {
		return nil, netErr("failed to load job details", err)
	}
	var job models.JobDetail
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, httpErr("unexpected non-JSON job detail response")
	}
	return &job, nil
}

// UpdateApplicationStatus posts an accept/decline decision. The server
// answers with JSON even on rejection statuses (insufficient funds comes
// back as a 4xx with a JSON body), so the body is decoded whenever it is
// valid JSON and only transport or non-JSON responses become errors.
func (c *Client) UpdateApplicationStatus(ctx context.Context, applicationID int, status string) (*models.StatusUpdateResult, error) {
	if status != StatusAccepted && status != StatusDeclined {
		return nil, &Error{Kind: KindValidation, Msg: fmt.Sprintf("invalid status %q", status)}
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"application_id": applicationID,
		"status":         status,
	})
	body, err := c.postJSON(ctx, c.eps.UpdateStatus, payload)
	if err != nil {
		return nil, err
	}
	var result models.StatusUpdateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, httpErr("unexpected non-JSON status update response")
	}
	if !result.Success && !result.InsufficientFunds {
		msg := result.Error
		if msg == "" {
			msg = "Unknown error occurred."
		}
		return &result, &Error{Kind: KindApplication, Msg: msg}
	}
	return &result, nil
}

// ReleasePayment asks the server to release the escrowed payment for a
// completed job.
func (c *Client) ReleasePayment(ctx context.Context, jobID int) (*models.ReleaseResult, error) {
	payload, _ := json.Marshal(map[string]interface{}{"job_id": jobID})
	body, err := c.postJSON(ctx, c.eps.ReleasePayment, payload)
	if err != nil {
		return nil, err
	}
	var result models.ReleaseResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, httpErr("unexpected non-JSON release payment response")
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "Unknown error occurred."
		}
		return &result, &Error{Kind: KindApplication, Msg: msg}
	}
	return &result, nil
}

// UnreadCount fetches the unread message count. Callers in ambient pollers
// swallow the error.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	body, err := c.sess.Fetch(ctx, c.eps.UnreadCount)
	if err != nil {
		return 0, netErr("failed to check unread count", err)
	}
	count := gjson.GetBytes(body, "unread_count")
	if !count.Exists() {
		return 0, httpErr("unread count missing from response")
	}
	return int(count.Int()), nil
}

// SubmitWork posts a multipart work submission built by the caller. Like
// the status update, rejection statuses still carry a JSON body.
func (c *Client) SubmitWork(ctx context.Context, body io.Reader, contentType string) (*models.SubmitResult, error) {
	req, err := c.sess.NewRequest(ctx, http.MethodPost, c.eps.SubmitWork, body)
	if err != nil {
		return nil, netErr("failed to build submission request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.sess.Do(req)
	if err != nil {
		return nil, netErr("failed to submit work", err)
	}
	defer resp.Body.Close()

	raw, err := client.ReadResponseBody(resp)
	if err != nil {
		return nil, netErr("failed to read submission response", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, httpErr(fmt.Sprintf("unexpected response (status %d)", resp.StatusCode))
	}
	var result models.SubmitResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, httpErr("unexpected submission response shape")
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "Failed to submit work"
		}
		return &result, &Error{Kind: KindApplication, Msg: msg}
	}
	return &result, nil
}

// Register posts the registration form. A non-JSON answer means the server
// fell over rendering an error page and is reported as a server error.
func (c *Client) Register(ctx context.Context, form url.Values) (*models.AccountResult, error) {
	return c.postAccountForm(ctx, c.eps.Register, form)
}

// SelectRole posts the chosen role after registration.
func (c *Client) SelectRole(ctx context.Context, role string) (*models.AccountResult, error) {
	if role == "" {
		return nil, &Error{Kind: KindValidation, Msg: "no role selected"}
	}
	form := url.Values{}
	form.Set("role", role)
	return c.postAccountForm(ctx, c.eps.SelectRole, form)
}

func (c *Client) postAccountForm(ctx context.Context, ref string, form url.Values) (*models.AccountResult, error) {
	req, err := c.sess.NewRequest(ctx, http.MethodPost, ref, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, netErr("failed to build account request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.sess.Do(req)
	if err != nil {
		return nil, netErr("failed to reach server", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return nil, httpErr("An unexpected error occurred. Please check the logs.")
	}
	raw, err := client.ReadResponseBody(resp)
	if err != nil {
		return nil, netErr("failed to read account response", err)
	}
	var result models.AccountResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, httpErr("unexpected account response shape")
	}
	// Registration can rotate the session; the server hands the new CSRF
	// token back so the follow-up role post does not 403.
	if result.CSRFToken != "" {
		c.sess.SetToken(result.CSRFToken)
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "Please check your information and try again."
		}
		return &result, &Error{Kind: KindApplication, Msg: msg}
	}
	return &result, nil
}

// JobListing fetches the rendered job listing page for client-side
// filtering.
func (c *Client) JobListing(ctx context.Context) ([]byte, error) {
	body, err := c.sess.Fetch(ctx, c.eps.JobList)
	if err != nil {
		return nil, netErr("failed to load job listing", err)
	}
	return body, nil
}

// SubmitReview posts the review form the way the browser form does:
// plain form encoding, success signalled by the final status after
// redirects. Validation happens before this is called.
func (c *Client) SubmitReview(ctx context.Context, jobID, rating int, feedback string) error {
	form := url.Values{}
	form.Set("rating", fmt.Sprintf("%d", rating))
	form.Set("feedback", feedback)

	req, err := c.sess.NewRequest(ctx, http.MethodPost, fmt.Sprintf(c.eps.ReviewWrite, jobID), strings.NewReader(form.Encode()))
	if err != nil {
		return netErr("failed to build review request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.sess.Do(req)
	if err != nil {
		return netErr("failed to submit review", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpErr(fmt.Sprintf("review rejected with status %d", resp.StatusCode))
	}
	return nil
}

// SendMessage posts a chat message to the conversation page the way the
// message form does: multipart content plus an optional attachment, with
// success signalled by the final status after redirects. A message with
// neither content nor an attachment is never sent.
func (c *Client) SendMessage(ctx context.Context, conversationID int, content, attachmentName string, attachment io.Reader) error {
	content = strings.TrimSpace(content)
	if content == "" && attachment == nil {
		return &Error{Kind: KindValidation, Msg: "nothing to send"}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("content", content); err != nil {
		return netErr("failed to build message form", err)
	}
	if attachment != nil {
		part, err := w.CreateFormFile("attachment", attachmentName)
		if err != nil {
			return netErr("failed to attach file", err)
		}
		if _, err := io.Copy(part, attachment); err != nil {
			return netErr("failed to read attachment", err)
		}
	}
	if err := w.Close(); err != nil {
		return netErr("failed to finalize message form", err)
	}

	req, err := c.sess.NewRequest(ctx, http.MethodPost, fmt.Sprintf(c.eps.Conversation, conversationID), &buf)
	if err != nil {
		return netErr("failed to build message request", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.sess.Do(req)
	if err != nil {
		return netErr("failed to send message", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpErr(fmt.Sprintf("message rejected with status %d", resp.StatusCode))
	}
	return nil
}

// ConversationURL builds the conversation page URL for an id, which also
// serves as the check-new-messages endpoint when fetched with the AJAX
// marker. A configured CheckMessages URL wins.
func (c *Client) ConversationURL(id int) string {
	if c.eps.CheckMessages != "" {
		return c.eps.CheckMessages
	}
	return fmt.Sprintf(c.eps.Conversation, id)
}

// FetchFragment fetches a page-supplied URL (conversation check endpoint or
// the inbox page) and returns the raw HTML.
func (c *Client) FetchFragment(ctx context.Context, ref string) ([]byte, error) {
	body, err := c.sess.Fetch(ctx, ref)
	if err != nil {
		return nil, netErr("failed to fetch fragment", err)
	}
	return body, nil
}

func (c *Client) postJSON(ctx context.Context, ref string, payload []byte) ([]byte, error) {
	req, err := c.sess.NewRequest(ctx, http.MethodPost, ref, bytes.NewReader(payload))
	if err != nil {
		return nil, netErr("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.sess.Do(req)
	if err != nil {
		return nil, netErr("request failed", err)
	}
	defer resp.Body.Close()

	raw, err := client.ReadResponseBody(resp)
	if err != nil {
		return nil, netErr("failed to read response", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, httpErr(fmt.Sprintf("unexpected response (status %d)", resp.StatusCode))
	}
	return raw, nil
}
