package app

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	handlers "socialhub/internal/handler"
	"socialhub/internal/metrics"
	"socialhub/internal/middleware"
)

// NewRouter builds the route table. Every page except signup, login,
// health and metrics requires a session.
func NewRouter(h *handlers.Handlers, m *metrics.Metrics, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = addSlash(router)
	router.Use(m.Middleware, mux.MiddlewareFunc(middleware.LoggingMiddleware(logger)))

	protected := func(f http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(f)
	}

	router.Handle("/health", http.HandlerFunc(h.Health)).Methods(http.MethodGet).Name("health")
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet).Name("metrics")

	// accounts
	router.HandleFunc("/signup/", h.SignupPage).Methods(http.MethodGet).Name("signup")
	router.HandleFunc("/signup/", h.Signup).Methods(http.MethodPost)
	for _, path := range []string{"/login/", "/accounts/login/"} {
		router.HandleFunc(path, h.LoginPage).Methods(http.MethodGet).Name("login:" + path)
		router.HandleFunc(path, h.Login).Methods(http.MethodPost)
	}
	router.Handle("/logout/", protected(h.Logout)).Methods(http.MethodGet).Name("logout")

	// feed and posts; /post/create/ is registered before /post/{postId}/
	router.Handle("/", protected(h.Feed)).Methods(http.MethodGet).Name("feed")
	router.Handle("/post/create/", protected(h.CreatePostPage)).Methods(http.MethodGet).Name("post_create")
	router.Handle("/post/create/", protected(h.CreatePost)).Methods(http.MethodPost)
	router.Handle("/post/{postId}/", protected(h.GetPost)).Methods(http.MethodGet).Name("post_detail")
	router.Handle("/post/{postId}/", protected(h.AddComment)).Methods(http.MethodPost)
	router.Handle("/post/{postId}/like/", protected(h.ToggleLike)).Methods(http.MethodPost).Name("like_post")

	// users
	router.Handle("/profile/{username}/", protected(h.GetProfile)).Methods(http.MethodGet).Name("profile")
	router.Handle("/profile/{username}/edit/", protected(h.EditProfilePage)).Methods(http.MethodGet).Name("edit_profile")
	router.Handle("/profile/{username}/edit/", protected(h.EditProfile)).Methods(http.MethodPost)
	router.Handle("/user/{username}/follow/", protected(h.ToggleFollow)).Methods(http.MethodPost).Name("follow_user")
	router.Handle("/search/", protected(h.Search)).Methods(http.MethodGet).Name("search")

	return router
}

// addSlash redirects a path that only lacks its trailing slash. Form posts
// get 308 so the method and body survive the redirect.
func addSlash(router *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}

		target := *r.URL
		target.Path += "/"
		if target.RawPath != "" {
			target.RawPath += "/"
		}

		candidate := r.Clone(r.Context())
		candidate.URL = &target

		var match mux.RouteMatch
		if !router.Match(candidate, &match) || match.MatchErr != nil {
			http.NotFound(w, r)
			return
		}

		status := http.StatusPermanentRedirect
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			status = http.StatusMovedPermanently
		}
		http.Redirect(w, r, target.String(), status)
	})
}
