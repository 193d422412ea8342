// Package router maps dashboard paths to views.
package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

// View identifies the screen a route renders.
type View int

const (
	ViewNotFound View = iota
	ViewMonitor
	ViewBigScreen
)

func (v View) String() string {
	switch v {
	case ViewMonitor:
		return "monitor"
	case ViewBigScreen:
		return "big screen"
	default:
		return "not found"
	}
}

// Well-known paths.
const (
	HomePath      = "/"
	DefaultPath   = "/monitor/0"
	NotFoundPath  = "/404"
	BigScreenPath = "/big_screen"
	ShowPath      = "/show/show"
)

const maxRedirects = 5

// ErrRedirectLoop is returned when redirects do not settle on a view.
var ErrRedirectLoop = errors.New("too many redirects")

// Route is a resolved path.
type Route struct {
	Name   string
	Path   string
	Title  string
	View   View
	Params map[string]string
}

// UID returns the monitored user id of a monitor route.
func (r Route) UID() string {
	return r.Params["userId"]
}

// Navigation is the outcome of asking to go somewhere.
type Navigation struct {
	// To is the destination; zero when Cancelled.
	To Route
	// Cancelled means the current route stays in place.
	Cancelled bool
	// Popup is a view to open on top of the current one, if any.
	Popup *Route
}

// Guard runs before every navigation and may redirect it into a popup or
// cancel it. Returning nil lets navigation proceed.
type Guard func(path string) *Navigation

type entry struct {
	title    string
	view     View
	redirect string
}

// Router is the dashboard route table.
type Router struct {
	mux     *mux.Router
	entries map[string]entry
	guards  []Guard
}

// New builds the route table with the big-screen guard installed.
func New() *Router {
	r := &Router{mux: mux.NewRouter(), entries: make(map[string]entry)}

	r.add("monitor", "/monitor/{userId}", entry{title: "Monitor", view: ViewMonitor})
	r.add("notFound", NotFoundPath, entry{title: "Not found", view: ViewNotFound})
	r.add("bigScreen", BigScreenPath, entry{title: "Big screen", view: ViewBigScreen})
	r.add("home", HomePath, entry{redirect: DefaultPath})
	r.mux.PathPrefix("/").Name("catchAll")
	r.entries["catchAll"] = entry{redirect: NotFoundPath}

	r.Use(bigScreenGuard(r))
	return r
}

func (r *Router) add(name, tpl string, e entry) {
	r.mux.Path(tpl).Name(name)
	r.entries[name] = e
}

// Use appends a guard. Guards run in order; the first non-nil result wins.
func (r *Router) Use(g Guard) {
	r.guards = append(r.guards, g)
}

// Navigate runs the guards for path and then resolves it.
func (r *Router) Navigate(path string) (Navigation, error) {
	path = Clean(path)
	for _, g := range r.guards {
		if nav := g(path); nav != nil {
			return *nav, nil
		}
	}
	to, err := r.Resolve(path)
	if err != nil {
		return Navigation{}, err
	}
	return Navigation{To: to}, nil
}

// Resolve matches path, following redirects, without running guards.
func (r *Router) Resolve(path string) (Route, error) {
	path = Clean(path)
	for hop := 0; hop <= maxRedirects; hop++ {
		req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: path}}
		var match mux.RouteMatch
		if !r.mux.Match(req, &match) {
			return Route{}, fmt.Errorf("no route for %q", path)
		}
		name := match.Route.GetName()
		e := r.entries[name]
		if e.redirect != "" {
			path = e.redirect
			continue
		}
		return Route{Name: name, Path: path, Title: e.title, View: e.view, Params: unescapeVars(match.Vars)}, nil
	}
	return Route{}, fmt.Errorf("resolve %q: %w", path, ErrRedirectLoop)
}

// unescapeVars decodes path parameters. Matching runs on the escaped path so
// an encoded slash stays inside its segment.
func unescapeVars(vars map[string]string) map[string]string {
	for k, v := range vars {
		if u, err := url.PathUnescape(v); err == nil {
			vars[k] = u
		}
	}
	return vars
}

// Monitor returns the path of the monitor view for uid.
func Monitor(uid string) string {
	return "/monitor/" + url.PathEscape(uid)
}

// Clean trims whitespace, drops any query or fragment and ensures a leading slash.
func Clean(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// bigScreenGuard cancels navigation to ShowPath and opens the big screen on
// top of whatever is showing.
func bigScreenGuard(r *Router) Guard {
	return func(path string) *Navigation {
		if path != ShowPath {
			return nil
		}
		popup, err := r.Resolve(BigScreenPath)
		if err != nil {
			return &Navigation{Cancelled: true}
		}
		return &Navigation{Cancelled: true, Popup: &popup}
	}
}
