package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhubhq/workhub-cli/internal/client"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess, err := client.NewSession(srv.URL)
	require.NoError(t, err)
	return New(sess, Endpoints{}), srv
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestDefaultEndpointsFillEmptyFields(t *testing.T) {
	c := New(nil, Endpoints{UpdateStatus: "/custom-status/"})

	eps := c.Endpoints()
	assert.Equal(t, "/custom-status/", eps.UpdateStatus)
	assert.Equal(t, "/jobs/", eps.JobList)
	assert.Equal(t, "/job/%d/", eps.JobDetail)
	assert.Equal(t, "/api/unread-count/", eps.UnreadCount)
}

func TestJobDetail(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/job/42/", r.URL.Path)
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":          42,
			"title":       "Build a landing page",
			"description": "Single page, responsive.",
			"is_owner":    false,
			"has_applied": true,
		})
	}))

	job, err := c.JobDetail(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, job.ID)
	assert.Equal(t, "Build a landing page", job.Title)
	assert.False(t, job.IsOwner)
	assert.True(t, job.HasApplied)
}

func TestJobDetailNon2xxIsNetworkError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := c.JobDetail(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, IsNetworkOrHTTP(err))
	assert.Equal(t, "An error occurred. Please check your connection and try again.", UserMessage(err))
}

func TestUpdateApplicationStatusAccept(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/update-application-status/", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var payload struct {
			ApplicationID int    `json:"application_id"`
			Status        string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, 5, payload.ApplicationID)
		assert.Equal(t, StatusAccepted, payload.Status)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Application accepted successfully!",
		})
	}))

	result, err := c.UpdateApplicationStatus(context.Background(), 5, StatusAccepted)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Application accepted successfully!", result.Message)
}

func TestUpdateApplicationStatusInsufficientFunds(t *testing.T) {
	// Insufficient funds arrives as a 4xx with a JSON body; it is a
	// result, not an error, so the caller can route to the wallet.
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":            false,
			"insufficient_funds": true,
			"error":              "Insufficient wallet balance.",
		})
	}))

	result, err := c.UpdateApplicationStatus(context.Background(), 5, StatusAccepted)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, result.InsufficientFunds)
	assert.Equal(t, "Insufficient wallet balance.", result.Error)
}

func TestUpdateApplicationStatusServerRejection(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   "Application is no longer pending.",
		})
	}))

	result, err := c.UpdateApplicationStatus(context.Background(), 5, StatusDeclined)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, IsNetworkOrHTTP(err))
	assert.Equal(t, "Application is no longer pending.", UserMessage(err))
}

func TestUpdateApplicationStatusRejectsUnknownStatus(t *testing.T) {
	c := New(nil, Endpoints{})
	_, err := c.UpdateApplicationStatus(context.Background(), 5, "maybe")
	require.Error(t, err)
	e, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindValidation, e.Kind)
}

func TestUpdateApplicationStatusNonJSONBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "<html>Server Error</html>")
	}))

	_, err := c.UpdateApplicationStatus(context.Background(), 5, StatusAccepted)
	require.Error(t, err)
	assert.True(t, IsNetworkOrHTTP(err))
}

func TestReleasePayment(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/release-payment", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}))

	result, err := c.ReleasePayment(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestUnreadCount(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/unread-count/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{"unread_count": 12})
	}))

	n, err := c.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestUnreadCountMissingField(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	}))

	_, err := c.UnreadCount(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetworkOrHTTP(err))
}

func TestSubmitWorkSuccess(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submit-work/", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":          true,
			"payment_released": "1,500.00",
			"files":            []string{"mockups.pdf", "assets.zip"},
		})
	}))

	result, err := c.SubmitWork(context.Background(),
		strings.NewReader("multipart body"), "multipart/form-data; boundary=xyz")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "1,500.00", result.PaymentReleased)
	assert.Equal(t, []string{"mockups.pdf", "assets.zip"}, result.Files)
}

func TestSubmitWorkFailureCarriesServerMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Work has already been submitted for this job.",
		})
	}))

	result, err := c.SubmitWork(context.Background(), nil, "multipart/form-data; boundary=xyz")
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Work has already been submitted for this job.", UserMessage(err))
}

func TestRegisterSuccessRefreshesCSRFToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/register/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alex", r.PostForm.Get("username"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   "Account created.",
			"csrfToken": "rotated-token",
		})
	}))

	form := url.Values{}
	form.Set("username", "alex")
	form.Set("email", "alex@example.com")
	form.Set("password1", "hunter22")
	form.Set("password2", "hunter22")

	result, err := c.Register(context.Background(), form)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "rotated-token", c.Session().Token())
}

func TestRegisterNonJSONResponse(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html>500</html>")
	}))

	_, err := c.Register(context.Background(), url.Values{})
	require.Error(t, err)
	assert.True(t, IsNetworkOrHTTP(err))
}

func TestRegisterFailureUsesServerMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": "Username already taken.",
		})
	}))

	result, err := c.Register(context.Background(), url.Values{})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Username already taken.", UserMessage(err))
}

func TestSelectRole(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/save-role/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "freelancer", r.PostForm.Get("role"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"redirect": "/dashboard/",
		})
	}))

	result, err := c.SelectRole(context.Background(), "freelancer")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/", result.Redirect)
}

func TestSelectRoleRequiresRole(t *testing.T) {
	c := New(nil, Endpoints{})
	_, err := c.SelectRole(context.Background(), "")
	require.Error(t, err)
	e, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindValidation, e.Kind)
}

func TestSubmitReview(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/write/3/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "4", r.PostForm.Get("rating"))
		assert.Equal(t, "Professional and fast turnaround.", r.PostForm.Get("feedback"))
		w.WriteHeader(http.StatusOK)
	}))

	err := c.SubmitReview(context.Background(), 3, 4, "Professional and fast turnaround.")
	assert.NoError(t, err)
}

func TestSendMessageWithAttachment(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/conversation/7/", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Here is the draft.", r.PostFormValue("content"))

		file, header, err := r.FormFile("attachment")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "draft.pdf", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "pdf-bytes", string(data))

		w.WriteHeader(http.StatusOK)
	}))

	err := c.SendMessage(context.Background(), 7, "Here is the draft.", "draft.pdf", strings.NewReader("pdf-bytes"))
	assert.NoError(t, err)
}

func TestSendMessageContentOnly(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "On my way.", r.PostFormValue("content"))

		_, _, err := r.FormFile("attachment")
		assert.Error(t, err, "no attachment part expected")

		w.WriteHeader(http.StatusOK)
	}))

	err := c.SendMessage(context.Background(), 7, "On my way.", "", nil)
	assert.NoError(t, err)
}

func TestSendMessageRequiresContentOrAttachment(t *testing.T) {
	// Blocked client-side; nothing reaches the network.
	c := New(nil, Endpoints{})

	err := c.SendMessage(context.Background(), 7, "   ", "", nil)
	require.Error(t, err)
	e, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindValidation, e.Kind)
}

func TestSendMessageRejectionIsNetworkError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	err := c.SendMessage(context.Background(), 7, "hello", "", nil)
	require.Error(t, err)
	assert.True(t, IsNetworkOrHTTP(err))
}

func TestSendMessageAttachesCSRFToken(t *testing.T) {
	var gotToken string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-CSRFToken")
		w.WriteHeader(http.StatusOK)
	}))
	c.Session().SetToken("page-token")

	require.NoError(t, c.SendMessage(context.Background(), 7, "hello", "", nil))
	assert.Equal(t, "page-token", gotToken)
}

func TestConversationURL(t *testing.T) {
	c := New(nil, Endpoints{})
	assert.Equal(t, "/conversation/8/", c.ConversationURL(8))

	c = New(nil, Endpoints{CheckMessages: "/conversation/8/check/"})
	assert.Equal(t, "/conversation/8/check/", c.ConversationURL(8))
}

func TestCSRFTokenAttachedToMutatingRequests(t *testing.T) {
	var gotToken string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-CSRFToken")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}))
	c.Session().SetToken("page-token")

	_, err := c.ReleasePayment(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "page-token", gotToken)
}
