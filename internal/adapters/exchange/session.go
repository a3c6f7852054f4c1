package exchange

import (
	"net/http"
	"time"
)

// Session owns the network resources for a single gateway call. Each call
// gets its own transport so no connection state outlives the call; Close
// must run on every exit path.
type Session struct {
	client    *http.Client
	transport *http.Transport
}

func newSession(timeout time.Duration) *Session {
	transport := &http.Transport{}
	return &Session{
		transport: transport,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Do executes the request on this session's connection.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	return s.client.Do(req)
}

// Close releases the session's network resources.
func (s *Session) Close() {
	s.transport.CloseIdleConnections()
}
