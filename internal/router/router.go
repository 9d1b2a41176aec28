// Package router holds the AskIt front-end route table: path to view
// resolution, redirects, and the page title set on every navigation.
package router

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	// DefaultTitle is used when a route carries no title.
	DefaultTitle = "AskIt"
	// TitleTemplate renders the document title from a route title.
	TitleTemplate = "%s - 企业知识库"
)

var (
	ErrNoRoute      = errors.New("no route matches path")
	ErrRedirectLoop = errors.New("redirect loop")
)

// Meta is per-route metadata.
type Meta struct {
	Title string
}

// Route maps a path to a view or redirects to another path.
type Route struct {
	Path     string
	Name     string
	View     string
	Redirect string
	Meta     Meta
}

// Navigation describes a resolved navigation.
type Navigation struct {
	From  string
	Path  string
	Route Route
	Title string
}

// Hook runs before every navigation is committed. Returning an error aborts it.
type Hook func(nav *Navigation) error

// Option configures a Router.
type Option func(*Router)

// WithBeforeEach registers a hook run after the title hook.
func WithBeforeEach(hook Hook) Option {
	return func(r *Router) {
		r.hooks = append(r.hooks, hook)
	}
}

// Router resolves paths against a fixed route table.
type Router struct {
	routes map[string]Route
	titles map[string]string
	hooks  []Hook

	mu      sync.RWMutex
	current string
	title   string
}

// DefaultRoutes returns the AskIt route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Redirect: "/knowledge"},
		{Path: "/knowledge", Name: "Knowledge", View: "KnowledgeView", Meta: Meta{Title: "知识库查询"}},
		{Path: "/admin", Name: "Admin", View: "AdminView", Meta: Meta{Title: "管理后台"}},
	}
}

// Default creates a router over DefaultRoutes.
func Default(opts ...Option) *Router {
	return New(DefaultRoutes(), opts...)
}

// New creates a router. When two routes share a path the first one wins.
func New(routes []Route, opts ...Option) *Router {
	r := &Router{
		routes: make(map[string]Route, len(routes)),
		titles: make(map[string]string, len(routes)),
		title:  FormatTitle(""),
	}
	for _, route := range routes {
		path := normalize(route.Path)
		if _, exists := r.routes[path]; exists {
			continue
		}
		route.Path = path
		r.routes[path] = route
		if route.Meta.Title != "" {
			r.titles[path] = route.Meta.Title
		}
	}

	r.hooks = append(r.hooks, r.setTitle)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FormatTitle renders a document title, falling back to DefaultTitle.
func FormatTitle(title string) string {
	if title == "" {
		title = DefaultTitle
	}
	return fmt.Sprintf(TitleTemplate, title)
}

// Resolve follows redirects from path and returns the target route.
func (r *Router) Resolve(path string) (Route, error) {
	path = normalize(path)
	visited := make(map[string]bool)

	for {
		route, ok := r.routes[path]
		if !ok {
			return Route{}, errors.Wrapf(ErrNoRoute, "%q", path)
		}
		if route.Redirect == "" {
			return route, nil
		}
		if visited[path] {
			return Route{}, errors.Wrapf(ErrRedirectLoop, "at %q", path)
		}
		visited[path] = true
		path = normalize(route.Redirect)
	}
}

// Navigate resolves path, runs the before-each hooks and commits the
// navigation. A failed hook leaves the current location unchanged.
func (r *Router) Navigate(path string) (*Navigation, error) {
	route, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}

	nav := &Navigation{
		From:  r.Current(),
		Path:  route.Path,
		Route: route,
	}
	for _, hook := range r.hooks {
		if err := hook(nav); err != nil {
			return nil, errors.Wrapf(err, "navigating to %q", route.Path)
		}
	}

	r.mu.Lock()
	r.current = nav.Path
	r.title = nav.Title
	r.mu.Unlock()

	return nav, nil
}

// Current returns the last committed path, empty before any navigation.
func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Title returns the document title of the last committed navigation.
func (r *Router) Title() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.title
}

// Routes returns the route table sorted by path.
func (r *Router) Routes() []Route {
	out := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, route)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (r *Router) setTitle(nav *Navigation) error {
	nav.Title = FormatTitle(r.titles[nav.Path])
	return nil
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
