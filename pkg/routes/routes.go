// Package routes defines route and group descriptors shared by handlers and
// the route builder.
package routes

import "net/http"

// Route represents an HTTP route with method, pattern, and handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
type Group struct {
	Prefix      string
	Description string
	Routes      []Route
	Children    []Group
}

// Key returns the method-qualified ServeMux pattern for the route.
func (r Route) Key() string {
	return r.Method + " " + r.Pattern
}

// System collects routes and groups and builds the service handler.
type System interface {
	RegisterGroup(group Group)
	RegisterRoute(route Route)
	// Table lists every registered route with group prefixes applied, in
	// registration order.
	Table() []Route
	// Build fails when two routes share a method and full pattern.
	Build() (http.Handler, error)
}
