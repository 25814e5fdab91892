// Package routes builds the service multiplexer from registered routes.
package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	pkgroutes "github.com/JaimeStill/document-center/pkg/routes"
)

type routes struct {
	routes []pkgroutes.Route
	groups []pkgroutes.Group
	logger *slog.Logger
}

// New creates a route system with the specified logger.
func New(logger *slog.Logger) pkgroutes.System {
	return &routes{logger: logger.With("system", "routes")}
}

func (r *routes) RegisterRoute(route pkgroutes.Route) {
	r.routes = append(r.routes, route)
}

func (r *routes) RegisterGroup(group pkgroutes.Group) {
	r.groups = append(r.groups, group)
}

func (r *routes) Table() []pkgroutes.Route {
	table := make([]pkgroutes.Route, 0, len(r.routes))
	table = append(table, r.routes...)
	for _, group := range r.groups {
		table = flatten(table, "", group)
	}
	return table
}

// Build registers the route table on a ServeMux using method-qualified
// patterns.
func (r *routes) Build() (http.Handler, error) {
	mux := http.NewServeMux()
	seen := make(map[string]struct{})

	for _, route := range r.Table() {
		key := route.Key()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate route %q", key)
		}
		seen[key] = struct{}{}

		mux.HandleFunc(key, route.Handler)
		r.logger.Debug("route registered", "method", route.Method, "pattern", route.Pattern)
	}

	r.logger.Info("routes built", "count", len(seen))
	return mux, nil
}

func flatten(table []pkgroutes.Route, parentPrefix string, group pkgroutes.Group) []pkgroutes.Route {
	prefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		route.Pattern = prefix + route.Pattern
		table = append(table, route)
	}
	for _, child := range group.Children {
		table = flatten(table, prefix, child)
	}
	return table
}
