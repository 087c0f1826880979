package crawler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/nao1215/frenscrape/internal/fetch"
)

// fakeSite serves fixed pages and remembers the request paths in order.
type fakeSite struct {
	server *httptest.Server
	mu     sync.Mutex
	paths  []string
}

// newFakeSite starts a server answering the given path -> body map.
// Unknown paths get 404.
func newFakeSite(t *testing.T, pages map[string]string) *fakeSite {
	t.Helper()

	site := &fakeSite{}
	site.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.paths = append(site.paths, r.URL.RequestURI())
		site.mu.Unlock()

		body, ok := pages[r.URL.RequestURI()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(site.server.Close)
	return site
}

// requested returns a copy of the request paths seen so far.
func (s *fakeSite) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

// baseURL returns the site's root URL.
func (s *fakeSite) baseURL(t *testing.T) *url.URL {
	t.Helper()

	u, err := url.Parse(s.server.URL + "/")
	if err != nil {
		t.Fatalf("failed to parse server URL: %v", err)
	}
	return u
}

// client returns a fetch client bound to the test server.
func (s *fakeSite) client() *fetch.Client {
	return fetch.NewClient(fetch.WithHTTPClient(s.server.Client()))
}
