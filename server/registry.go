package server

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
)

var ErrDuplicateRoute = errors.New("route already registered")

// Registry serves registered actions by exact path. Anything else falls
// through to a ServeMux for auxiliary endpoints.
type Registry struct {
	baseURL string
	mux     *http.ServeMux
	mutex   sync.RWMutex
	routes  map[string]models.Action
}

func NewRegistry(baseURL string) *Registry {
	return &Registry{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		mux:     http.NewServeMux(),
		routes:  make(map[string]models.Action),
	}
}

func (r *Registry) Register(action models.Action) error {
	if !strings.HasPrefix(action.Path, "/") {
		return fmt.Errorf("action path %q must start with /", action.Path)
	}
	if action.Handler == nil {
		return fmt.Errorf("action %s has no handler", action.Path)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.routes[action.Path]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, action.Path)
	}
	r.routes[action.Path] = action
	return nil
}

// URL makes path absolute against the configured base URL, if any.
func (r *Registry) URL(path string) string {
	if r.baseURL == "" {
		return path
	}
	return r.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// Handle mounts an auxiliary handler on the fallback mux.
func (r *Registry) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// Routes lists registered actions sorted by path.
func (r *Registry) Routes() []models.Action {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	routes := make([]models.Action, 0, len(r.routes))
	for _, action := range r.routes {
		routes = append(routes, action)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes
}

func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mutex.RLock()
	action, ok := r.routes[req.URL.Path]
	r.mutex.RUnlock()
	if !ok {
		r.mux.ServeHTTP(w, req)
		return
	}

	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	action.Handler(w, req)
}
