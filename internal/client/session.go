package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// DefaultCSRFCookie is the cookie the server sets alongside the session.
const DefaultCSRFCookie = "csrftoken"

// Session wraps an HTTP client with the base URL of the marketplace and
// the CSRF token required on every mutating request.
type Session struct {
	base       *url.URL
	hc         *http.Client
	csrfCookie string

	mu    sync.Mutex
	token string
}

// NewSession creates a session against baseURL. The URL must be absolute.
func NewSession(baseURL string) (*Session, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %v", baseURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("base URL %q is not absolute", baseURL)
	}
	return &Session{
		base:       u,
		hc:         NewHTTPClient(),
		csrfCookie: DefaultCSRFCookie,
	}, nil
}

// Resolve turns a path or page-supplied URL into an absolute URL against
// the session base.
func (s *Session) Resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %v", ref, err)
	}
	return s.base.ResolveReference(u).String(), nil
}

// SetCookie seeds a cookie on the session base, typically the session id
// issued at login.
func (s *Session) SetCookie(name, value string) {
	if s.hc.Jar == nil {
		return
	}
	s.hc.Jar.SetCookies(s.base, []*http.Cookie{{Name: name, Value: value}})
}

// SetToken overrides the cached CSRF token. Used when the server hands a
// refreshed token back in a response body after rotating the session.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Token returns the CSRF token for the session, sourced in priority order:
// the token extracted from the last fetched page (hidden form field, then
// meta tag), then the CSRF cookie. Empty when none is available.
func (s *Session) Token() string {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token != "" {
		return token
	}
	return s.cookieToken()
}

func (s *Session) cookieToken() string {
	if s.hc.Jar == nil {
		return ""
	}
	for _, c := range s.hc.Jar.Cookies(s.base) {
		if c.Name == s.csrfCookie {
			return c.Value
		}
	}
	return ""
}

// TokenFromDocument extracts a CSRF token from a rendered page: the hidden
// csrfmiddlewaretoken form field wins over the csrf-token meta tag.
func TokenFromDocument(doc *goquery.Document) string {
	if v, ok := doc.Find(`input[name="csrfmiddlewaretoken"]`).First().Attr("value"); ok && v != "" {
		return v
	}
	if v, ok := doc.Find(`meta[name="csrf-token"]`).First().Attr("content"); ok && v != "" {
		return v
	}
	return ""
}

// Prime fetches a page and caches whatever CSRF token it carries. The
// session cookie jar picks up the server's cookies as a side effect.
func (s *Session) Prime(ctx context.Context, ref string) error {
	doc, err := s.FetchDocument(ctx, ref)
	if err != nil {
		return err
	}
	if token := TokenFromDocument(doc); token != "" {
		s.SetToken(token)
	}
	return nil
}

// NewRequest builds a request with the default header set. Mutating
// methods get the CSRF token attached.
func (s *Session) NewRequest(ctx context.Context, method, ref string, body io.Reader) (*http.Request, error) {
	target, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	for key, values := range DefaultHeaders() {
		req.Header[key] = values
	}
	if method != http.MethodGet && method != http.MethodHead {
		if token := s.Token(); token != "" {
			req.Header.Set("X-CSRFToken", token)
		}
	}
	return req, nil
}

// Do executes the request on the session client.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	return s.hc.Do(req)
}

// Fetch issues a GET and returns the raw body. Non-2xx statuses are
// reported as errors with the body discarded.
func (s *Session) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := s.NewRequest(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %v", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("received non-2xx status code %d from %s", resp.StatusCode, ref)
	}
	return ReadResponseBody(resp)
}

// FetchDocument issues a GET and parses the body as HTML.
func (s *Session) FetchDocument(ctx context.Context, ref string) (*goquery.Document, error) {
	body, err := s.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %v", ref, err)
	}
	return doc, nil
}
