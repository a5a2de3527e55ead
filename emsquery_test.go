package emsquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/emsquery/catalog"
	"github.com/hugr-lab/emsquery/transport"
)

// wireField mirrors the field endpoints' JSON.
type wireField struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Type           catalog.FieldType `json:"type"`
	DiscreteValues map[string]string `json:"discreteValues,omitempty"`
}

var testFields = []wireField{
	{ID: "f-alt", Name: "Pressure Altitude", Type: catalog.TypeNumber},
	{ID: "f-apt", Name: "Takeoff Airport", Type: catalog.TypeDiscrete, DiscreteValues: map[string]string{"1": "KSEA", "2": "KPDX"}},
	{ID: "f-date", Name: "Flight Date", Type: catalog.TypeDateTime},
	{ID: "f-valid", Name: "Takeoff Valid", Type: catalog.TypeBoolean},
}

// fakeAPI is a scripted transport. Field endpoints are served from
// testFields; query routes are delegated to handle.
type fakeAPI struct {
	calls  []transport.Call
	handle func(call transport.Call) (any, error)
}

func (f *fakeAPI) Request(ctx context.Context, call transport.Call) (*transport.Response, error) {
	f.calls = append(f.calls, call)

	var (
		v   any
		err error
	)
	switch call.Route {
	case transport.RouteFieldSearch:
		kw := strings.ToLower(call.Query.Get("search"))
		matches := []wireField{}
		for _, fld := range testFields {
			if strings.Contains(strings.ToLower(fld.Name), kw) {
				matches = append(matches, fld)
			}
		}
		v = matches
	case transport.RouteField:
		for _, fld := range testFields {
			if fld.ID == call.Args[2] {
				v = fld
			}
		}
		if v == nil {
			err = &transport.RemoteRequestError{Method: call.Method, Status: http.StatusNotFound}
		}
	default:
		if f.handle == nil {
			return nil, fmt.Errorf("unexpected call %s", call.Route)
		}
		v, err = f.handle(call)
	}
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &transport.Response{Header: http.Header{}, Body: data}, nil
}

// routeCalls returns the calls made to route.
func (f *fakeAPI) routeCalls(route transport.Route) []transport.Call {
	var out []transport.Call
	for _, c := range f.calls {
		if c.Route == route {
			out = append(out, c)
		}
	}
	return out
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	c, err := NewClientWithRequester(ClientConfig{SystemID: "1"}, api)
	require.NoError(t, err)
	return c
}

var errBoom = errors.New("boom")
