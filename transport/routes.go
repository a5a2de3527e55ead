package transport

import (
	"fmt"
	"net/url"
	"strings"
)

// Route names an EMS API endpoint as "<group>/<name>".
type Route string

const (
	RouteAuth        Route = "sys/auth"
	RouteSystems     Route = "sys/ems_sys"
	RouteQuery       Route = "database/query"
	RouteOpenAsync   Route = "database/open_asyncq"
	RouteReadAsync   Route = "database/get_asyncq"
	RouteCloseAsync  Route = "database/close_asyncq"
	RouteField       Route = "database/field"
	RouteFieldSearch Route = "database/field_search"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://ems.efoqa.com/api"

var routeTemplates = map[Route]string{
	RouteAuth:        "/token",
	RouteSystems:     "/v2/ems-systems",
	RouteQuery:       "/v2/ems-systems/%v/databases/%v/query",
	RouteOpenAsync:   "/v2/ems-systems/%v/databases/%v/async-query",
	RouteReadAsync:   "/v2/ems-systems/%v/databases/%v/async-query/read/%v/%v/%v",
	RouteCloseAsync:  "/v2/ems-systems/%v/databases/%v/async-query/%v",
	RouteField:       "/v2/ems-systems/%v/databases/%v/fields/%v",
	RouteFieldSearch: "/v2/ems-systems/%v/databases/%v/fields",
}

// Path renders the route with its arguments. String arguments are path-escaped;
// other values are formatted as-is.
func (r Route) Path(args ...any) (string, error) {
	tmpl, ok := routeTemplates[r]
	if !ok {
		return "", fmt.Errorf("unknown route %q", r)
	}
	if n := strings.Count(tmpl, "%v"); n != len(args) {
		return "", fmt.Errorf("route %s expects %d arguments, got %d", r, n, len(args))
	}

	escaped := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			escaped[i] = url.PathEscape(s)
			continue
		}
		escaped[i] = a
	}
	return fmt.Sprintf(tmpl, escaped...), nil
}
