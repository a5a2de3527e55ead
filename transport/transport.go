// Package transport provides the authenticated HTTP transport to the EMS API.
//
// The transport is the only component that talks to the network. It:
//   - Acquires a bearer token with the password grant on first use
//   - Re-authenticates silently, a bounded number of times, when a request
//     fails with a network error or an expired session (HTTP 401)
//   - Returns certificate verification failures immediately, without retrying
//   - Decodes gzip-compressed responses transparently
//
// Callers depend on the Requester interface so that tests can substitute a
// scripted fake.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Requester sends a single API call and returns the decoded response.
type Requester interface {
	Request(ctx context.Context, call Call) (*Response, error)
}

// Call describes one API request.
type Call struct {
	// Method is the HTTP method (GET, POST, DELETE).
	Method string

	// Route selects the URL template.
	Route Route

	// Args fill the route's path placeholders in order.
	Args []any

	// Query is appended to the URL as a query string. Optional.
	Query url.Values

	// Body is encoded as JSON when non-nil.
	Body any
}

// Response holds the headers and the decompressed body of a successful call.
type Response struct {
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
// Numbers are kept as json.Number so integer codes survive untouched.
func (r *Response) Decode(v any) error {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get is shorthand for a GET call.
func Get(route Route, args ...any) Call {
	return Call{Method: http.MethodGet, Route: route, Args: args}
}

// Post is shorthand for a POST call with a JSON body.
func Post(route Route, body any, args ...any) Call {
	return Call{Method: http.MethodPost, Route: route, Args: args, Body: body}
}

// Delete is shorthand for a DELETE call.
func Delete(route Route, args ...any) Call {
	return Call{Method: http.MethodDelete, Route: route, Args: args}
}
