package client

import (
	"fmt"
	"strings"
)

// Route is a navigable view with its access metadata. RequiresAuth and
// RequiresGuest are mutually exclusive per route.
type Route struct {
	Path          string
	Name          string
	RequiresAuth  bool
	RequiresGuest bool
}

// RouteTable holds the static route metadata the navigation guard
// consults. Path segments starting with ':' match any single segment.
type RouteTable struct {
	routes []Route
}

// NewRouteTable validates and assembles a route table.
func NewRouteTable(routes ...Route) (*RouteTable, error) {
	for _, r := range routes {
		if r.Path == "" || !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("client: route %q must have an absolute path", r.Name)
		}
		if r.RequiresAuth && r.RequiresGuest {
			return nil, fmt.Errorf("client: route %q cannot require both auth and guest", r.Name)
		}
	}

	return &RouteTable{routes: routes}, nil
}

// Find matches path against the table. Any query string is ignored.
func (t *RouteTable) Find(path string) (Route, bool) {
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}

	for _, r := range t.routes {
		if matchPath(r.Path, path) {
			return r, true
		}
	}

	return Route{}, false
}

// DefaultRoutes mirrors the forum's route table.
func DefaultRoutes() *RouteTable {
	table, err := NewRouteTable(
		Route{Path: "/", Name: "Home"},
		Route{Path: "/forum", Name: "Forum"},
		Route{Path: "/forum/topics/:id", Name: "TopicDetail"},
		Route{Path: "/login", Name: "Login", RequiresGuest: true},
		Route{Path: "/register", Name: "Register", RequiresGuest: true},
		Route{Path: "/posts/create", Name: "CreatePost", RequiresAuth: true},
		Route{Path: "/posts/:id", Name: "PostDetail"},
		Route{Path: "/posts/:id/edit", Name: "EditPost", RequiresAuth: true},
		Route{Path: "/profile", Name: "Profile", RequiresAuth: true},
		Route{Path: "/tags/:id", Name: "TagPosts"},
	)
	if err != nil {
		panic(err)
	}
	return table
}

func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	patSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSegs := strings.Split(strings.Trim(path, "/"), "/")
	if len(patSegs) != len(pathSegs) {
		return false
	}

	for i, seg := range patSegs {
		if strings.HasPrefix(seg, ":") {
			if pathSegs[i] == "" {
				return false
			}
			continue
		}
		if seg != pathSegs[i] {
			return false
		}
	}

	return true
}
