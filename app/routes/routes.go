package routes

import (
	"net/http"

	"quill/app/controllers"
	"quill/app/middleware"
	"quill/app/repositories"
	"quill/app/services"

	"github.com/gorilla/mux"
)

// Options tunes the HTTP surface. Zero values fall back to defaults.
type Options struct {
	// LikeLimiter throttles the like endpoint per client. Nil disables it.
	LikeLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	MaxImageBytes  int64
	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64
}

// DefaultMaxBodyBytes applies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 1 << 20

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(store repositories.Store, opts Options) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	postService := services.NewPostService(store)
	commentService := services.NewCommentService(store)

	postController := controllers.NewPostController(postService, opts.MaxImageBytes)
	commentController := controllers.NewCommentController(commentService)
	healthController := controllers.NewHealthController(store)

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	limitBody := middleware.LimitBody(maxBody)

	router.HandleFunc("/health", healthController.Check).Methods("GET")

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)

	// Posts API endpoints
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.Handle("", limitBody(http.HandlerFunc(postController.Create))).Methods("POST")
	posts.HandleFunc("/{id:[0-9]+}", postController.Show).Methods("GET")
	posts.Handle("/{id:[0-9]+}", limitBody(http.HandlerFunc(postController.Edit))).Methods("PUT")
	posts.HandleFunc("/{id:[0-9]+}", postController.Delete).Methods("DELETE")
	posts.HandleFunc("/{id:[0-9]+}/image", postController.UploadImage).Methods("PUT")
	posts.HandleFunc("/{id:[0-9]+}/image", postController.ShowImage).Methods("GET")

	var like http.Handler = http.HandlerFunc(postController.Like)
	if opts.LikeLimiter != nil {
		like = opts.LikeLimiter.Middleware(like)
	}
	posts.Handle("/{id:[0-9]+}/likes", like).Methods("POST")

	// Comments API endpoints
	posts.HandleFunc("/{id:[0-9]+}/comments", commentController.Index).Methods("GET")
	posts.Handle("/{id:[0-9]+}/comments", limitBody(http.HandlerFunc(commentController.Create))).Methods("POST")
	posts.HandleFunc("/{id:[0-9]+}/comments/{commentId:[0-9]+}", commentController.Show).Methods("GET")
	posts.Handle("/{id:[0-9]+}/comments/{commentId:[0-9]+}", limitBody(http.HandlerFunc(commentController.Edit))).Methods("PUT")
	posts.HandleFunc("/{id:[0-9]+}/comments/{commentId:[0-9]+}", commentController.Delete).Methods("DELETE")

	return router
}

// NewHandler wraps the router with CORS handling, which has to see
// preflight requests before route matching.
func NewHandler(store repositories.Store, opts Options) http.Handler {
	return middleware.CORS(opts.AllowedOrigins)(SetupRoutes(store, opts))
}
