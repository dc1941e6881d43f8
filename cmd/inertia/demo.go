package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vango-dev/inertia"
	"github.com/vango-dev/inertia/pkg/assets"
	"github.com/vango-dev/inertia/pkg/props"
)

// user is the demo resource.
type user struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// userStore is an in-memory user table.
type userStore struct {
	mu     sync.RWMutex
	users  map[int]user
	nextID int
}

func newUserStore() *userStore {
	s := &userStore{users: make(map[int]user), nextID: 1}
	s.create("Ada Lovelace", "ada@example.com")
	s.create("Grace Hopper", "grace@example.com")
	s.create("Ken Thompson", "ken@example.com")
	return s
}

func (s *userStore) create(name, email string) user {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user{ID: s.nextID, Name: name, Email: email}
	s.users[u.ID] = u
	s.nextID++
	return u
}

func (s *userStore) get(id int) (user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *userStore) update(u user) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return false
	}
	s.users[u.ID] = u
	return true
}

func (s *userStore) delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

// page returns users ordered by ID, size per page.
func (s *userStore) page(n, size int) []user {
	s.mu.RLock()
	all := make([]user, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b user) int { return a.ID - b.ID })
	if size < 1 {
		return all
	}
	// Compare page numbers before multiplying; n comes from the query.
	if n < 1 || n > (len(all)+size-1)/size {
		return []user{}
	}
	start := (n - 1) * size
	return all[start:min(start+size, len(all))]
}

func (s *userStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

const usersPerPage = 2

// entrySource is the client entry in the Vite manifest.
const entrySource = "src/main.ts"

// mountDemo registers the demo pages on r. Built asset URLs come from
// resolver, which may be nil.
func mountDemo(r chi.Router, app *inertia.Inertia, store *userStore, resolver assets.Resolver) {
	if resolver == nil {
		resolver = assets.NewPassthroughResolver("/")
	}
	r.Use(chimw.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inertia.Share(r.Context(), "requestId", chimw.GetReqID(r.Context()))
			inertia.Share(r.Context(), "entry", resolver.Asset(entrySource))
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		app.Render(w, r, "Home", map[string]any{
			"greeting": "Hello from Go",
			"server": props.Func(func(ctx context.Context) (any, error) {
				return map[string]any{
					"go":         runtime.Version(),
					"goroutines": runtime.NumGoroutine(),
					"time":       time.Now().UTC().Format(time.RFC3339),
				}, nil
			}),
		})
	})

	r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if n < 1 {
			n = 1
		}
		app.Render(w, r, "Users/Index", usersIndexProps(store, n))
	})

	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		u, ok := lookup(r, store)
		if !ok {
			http.NotFound(w, r)
			return
		}
		app.Render(w, r, "Users/Show", map[string]any{"user": u})
	})

	r.Post("/users", func(w http.ResponseWriter, r *http.Request) {
		name, email, errs, err := userForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(errs) > 0 {
			app.Render(w, r, "Users/Create", map[string]any{"errors": errs, "name": name, "email": email},
				inertia.WithStatus(http.StatusUnprocessableEntity))
			return
		}
		u := store.create(name, email)
		app.Redirect(w, r, "/users/"+strconv.Itoa(u.ID))
	})

	r.Put("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		u, ok := lookup(r, store)
		if !ok {
			http.NotFound(w, r)
			return
		}
		name, email, errs, err := userForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(errs) > 0 {
			app.Render(w, r, "Users/Edit", map[string]any{"errors": errs, "user": u},
				inertia.WithStatus(http.StatusUnprocessableEntity))
			return
		}
		u.Name, u.Email = name, email
		store.update(u)
		// Plain 302; the adapter middleware turns it into a 303.
		http.Redirect(w, r, "/users/"+strconv.Itoa(u.ID), http.StatusFound)
	})

	r.Delete("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		u, ok := lookup(r, store)
		if !ok || !store.delete(u.ID) {
			http.NotFound(w, r)
			return
		}
		// History flags only reach a page rendered for this request, so the
		// list is rendered here rather than behind a redirect.
		app.Render(w, r, "Users/Index", usersIndexProps(store, 1), inertia.WithClearHistory())
	})

	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		app.Location(w, r, "https://inertiajs.com")
	})
}

func usersIndexProps(store *userStore, n int) map[string]any {
	return map[string]any{
		"page":  n,
		"users": props.Merge(store.page(n, usersPerPage)),
		"stats": props.Defer(func(ctx context.Context) (any, error) {
			return map[string]any{"total": store.count()}, nil
		}, "sidebar"),
		"export": props.Optional(func(ctx context.Context) (any, error) {
			return store.page(1, store.count()), nil
		}),
	}
}

func lookup(r *http.Request, store *userStore) (user, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return user{}, false
	}
	return store.get(id)
}

// userForm reads and validates the user form. The client runtime posts
// JSON; plain HTML forms post url-encoded fields. err is set only for a
// body that cannot be decoded.
func userForm(r *http.Request) (name, email string, errs map[string]string, err error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
			return "", "", nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		name, email = body.Name, body.Email
	} else {
		name, email = r.FormValue("name"), r.FormValue("email")
	}
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	errs = make(map[string]string)
	if name == "" {
		errs["name"] = "The name field is required."
	}
	if !strings.Contains(email, "@") {
		errs["email"] = "The email must be a valid email address."
	}
	return name, email, errs, nil
}
