// Package querytest provides an in-memory NetworkService for tests of the
// query layer and everything built on it.
package querytest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"omc/internal/external"
	"omc/internal/types"
)

// Network is an in-memory NetworkService keyed by "METHOD uri". Unknown
// URIs answer 404.
type Network struct {
	mu        sync.Mutex
	responses map[string]external.Response
	errs      map[string]error
	calls     map[string]int
	bodies    map[string][]byte
	clients   map[string]types.ClientType
	delays    map[string]time.Duration

	// Delay is applied to every call; used to widen race windows.
	Delay time.Duration
}

// NewNetwork creates an empty Network.
func NewNetwork() *Network {
	return &Network{
		responses: make(map[string]external.Response),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
		bodies:    make(map[string][]byte),
		clients:   make(map[string]types.ClientType),
		delays:    make(map[string]time.Duration),
	}
}

// OnGet registers the answer to a GET of uri. body is sent as-is when it is
// a string and JSON encoded otherwise.
func (n *Network) OnGet(uri string, status int, body any) {
	n.on(http.MethodGet, uri, status, body)
}

// OnPost registers the answer to a POST to uri.
func (n *Network) OnPost(uri string, status int, body any) {
	n.on(http.MethodPost, uri, status, body)
}

func (n *Network) on(method, uri string, status int, body any) {
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		raw, _ = json.Marshal(b)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.responses[method+" "+uri] = external.Response{StatusCode: status, Body: raw}
}

// FailGet makes a GET of uri return err instead of a response.
func (n *Network) FailGet(uri string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs[http.MethodGet+" "+uri] = err
}

// FailPost makes a POST to uri return err instead of a response.
func (n *Network) FailPost(uri string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs[http.MethodPost+" "+uri] = err
}

// DelayGet holds every GET of uri for d, on top of Delay.
func (n *Network) DelayGet(uri string, d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delays[http.MethodGet+" "+uri] = d
}

// Calls returns how often method was issued against uri.
func (n *Network) Calls(method, uri string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method+" "+uri]
}

// CallCounts returns a copy of all call counts.
func (n *Network) CallCounts() map[string]int {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string]int, len(n.calls))
	for k, v := range n.calls {
		out[k] = v
	}
	return out
}

// Total returns the number of calls issued.
func (n *Network) Total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, c := range n.calls {
		total += c
	}
	return total
}

// Body returns the last body posted to uri.
func (n *Network) Body(uri string) []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.bodies[http.MethodPost+" "+uri]
}

// Client returns the client type of the last call of method against uri.
func (n *Network) Client(method, uri string) types.ClientType {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clients[method+" "+uri]
}

func (n *Network) serve(ctx context.Context, method string, client types.ClientType, uri string, body []byte) (external.Response, error) {
	key := method + " " + uri
	n.mu.Lock()
	n.calls[key]++
	n.clients[key] = client
	if body != nil {
		n.bodies[key] = body
	}
	resp, ok := n.responses[key]
	err := n.errs[key]
	delay := n.Delay + n.delays[key]
	n.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return external.Response{}, types.NewAppError(types.ErrCodeUpstreamUnavailable, "request timed out", ctx.Err())
		}
	}
	if err != nil {
		return external.Response{}, err
	}
	if !ok {
		return external.Response{StatusCode: http.StatusNotFound, Body: []byte(`{"detail":"Niet gevonden."}`)}, nil
	}
	return resp, nil
}

// Get implements external.NetworkService.
func (n *Network) Get(ctx context.Context, client types.ClientType, uri string) (external.Response, error) {
	return n.serve(ctx, http.MethodGet, client, uri, nil)
}

// Post implements external.NetworkService.
func (n *Network) Post(ctx context.Context, client types.ClientType, uri string, body []byte) (external.Response, error) {
	return n.serve(ctx, http.MethodPost, client, uri, body)
}

var _ external.NetworkService = (*Network)(nil)
