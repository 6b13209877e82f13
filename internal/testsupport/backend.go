package testsupport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// BackendRequest is one request seen by a Backend.
type BackendRequest struct {
	Method string
	Path   string
	Body   string
	Form   map[string][]string
}

type backendReply struct {
	status int
	body   string
}

// Backend is a scripted pitch backend. Each route ("METHOD /path") serves its
// queued replies in order and repeats the last one once the queue drains.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	routes   map[string][]backendReply
	requests []BackendRequest
}

// NewBackend starts a backend and registers its shutdown with t.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{routes: make(map[string][]backendReply)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend base URL.
func (b *Backend) URL() string {
	return b.Server.URL
}

// On queues a 200 reply for route.
func (b *Backend) On(route, body string) *Backend {
	return b.OnStatus(route, http.StatusOK, body)
}

// OnStatus queues a reply with an explicit status for route.
func (b *Backend) OnStatus(route string, status int, body string) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = append(b.routes[route], backendReply{status: status, body: body})
	return b
}

// Requests returns a copy of every request served so far.
func (b *Backend) Requests() []BackendRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]BackendRequest(nil), b.requests...)
}

// Count returns how many times route was requested.
func (b *Backend) Count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, req := range b.requests {
		if req.Method+" "+req.Path == route {
			n++
		}
	}
	return n
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	entry := BackendRequest{Method: r.Method, Path: r.URL.EscapedPath()}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(8 << 20); err == nil {
			entry.Form = r.MultipartForm.Value
			if file, header, err := r.FormFile("file"); err == nil {
				data, _ := io.ReadAll(file)
				file.Close()
				entry.Form["file"] = []string{header.Filename + ":" + string(data)}
			}
		}
	} else {
		data, _ := io.ReadAll(r.Body)
		entry.Body = string(data)
	}

	route := entry.Method + " " + entry.Path
	b.mu.Lock()
	b.requests = append(b.requests, entry)
	queue := b.routes[route]
	var reply backendReply
	found := len(queue) > 0
	if found {
		reply = queue[0]
		if len(queue) > 1 {
			b.routes[route] = queue[1:]
		}
	}
	b.mu.Unlock()

	if !found {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.status)
	_, _ = io.WriteString(w, reply.body)
}
