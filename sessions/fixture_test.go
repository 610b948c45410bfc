package sessions_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-token-gateway/upstream"
)

const thirtyDays = 2592000

type testConfig struct {
	baseURL string
	timeout time.Duration
}

func (c testConfig) GetUpstreamBaseURL() string           { return c.baseURL }
func (c testConfig) GetUpstreamTimeout() time.Duration    { return c.timeout }
func (c testConfig) GetUpstreamRefreshCookieName() string { return "upstream_rt" }

func (testConfig) GetRefreshCookieName() string     { return "refresh_token" }
func (testConfig) GetCartCookieName() string        { return "cart_token" }
func (testConfig) GetAccessCookieName() string      { return "access_token" }
func (testConfig) GetCookieSameSite() http.SameSite { return http.SameSiteLaxMode }
func (testConfig) GetCookieSecure() bool            { return true }

// recordedCall is what the stub upstream saw.
type recordedCall struct {
	Path   string
	Cookie string
	Auth   string
	Body   map[string]string
}

// stubUpstream is an httptest server that counts calls and answers with a fixed status/body.
type stubUpstream struct {
	*httptest.Server
	calls   atomic.Int32
	mu      sync.Mutex
	last    recordedCall
	status  int
	body    string
	release chan struct{} // when set, requests block until it is closed
}

func newStubUpstream(t *testing.T, status int, body string) *stubUpstream {
	t.Helper()
	return startStub(t, &stubUpstream{status: status, body: body})
}

// newBlockingStub holds every request until the returned stub's release channel is closed.
func newBlockingStub(t *testing.T, status int, body string) *stubUpstream {
	t.Helper()
	return startStub(t, &stubUpstream{status: status, body: body, release: make(chan struct{})})
}

func startStub(t *testing.T, s *stubUpstream) *stubUpstream {
	t.Helper()
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *stubUpstream) handle(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)

	call := recordedCall{Path: r.URL.Path, Cookie: r.Header.Get("Cookie"), Auth: r.Header.Get("Authorization")}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &call.Body)
	}
	s.mu.Lock()
	s.last = call
	s.mu.Unlock()

	if s.release != nil {
		select {
		case <-s.release:
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_, _ = w.Write([]byte(s.body))
}

func (s *stubUpstream) lastCall() recordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *stubUpstream) config() testConfig {
	return testConfig{baseURL: s.URL, timeout: time.Second}
}

func (s *stubUpstream) client() *upstream.Client {
	return upstream.NewClient(s.config())
}

// unreachableConfig points at a closed server.
func unreachableConfig(t *testing.T) testConfig {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	return testConfig{baseURL: srv.URL, timeout: time.Second}
}
