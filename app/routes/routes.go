package routes

import (
	"net/http"

	"postsapi/app/controllers"
	"postsapi/app/metrics"
	"postsapi/app/middleware"
	"postsapi/app/response"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// StatusMessage is the liveness body served at the root.
const StatusMessage = "Posts & Comments API is running"

// Dependencies is everything the router needs, built once at startup.
type Dependencies struct {
	Posts       *controllers.ResourceController
	Comments    *controllers.ResourceController
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	CORSOrigins []string
}

// SetupRoutes defines the application's routes and wraps them in the global
// middleware chain.
func SetupRoutes(deps Dependencies) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Instrument(deps.Metrics))

	router.HandleFunc("/", status).Methods(http.MethodGet)
	router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)

	registerResource(router, "/post", deps.Posts)
	registerResource(router, "/comment", deps.Comments)

	router.NotFoundHandler = middleware.Instrument(deps.Metrics)(http.HandlerFunc(notFound))
	router.MethodNotAllowedHandler = middleware.Instrument(deps.Metrics)(http.HandlerFunc(methodNotAllowed))

	var handler http.Handler = router
	handler = middleware.ContentTypeJSON(handler)
	handler = middleware.CORS(deps.CORSOrigins)(handler)
	handler = middleware.Recoverer(handler)
	handler = middleware.Logger(deps.Logger)(handler)
	handler = middleware.RequestID(handler)
	return handler
}

func registerResource(router *mux.Router, path string, controller *controllers.ResourceController) {
	router.HandleFunc(path, controller.List).Methods(http.MethodGet)
	router.HandleFunc(path, controller.Create).Methods(http.MethodPost)
	router.HandleFunc(path+"/{id}", controller.Show).Methods(http.MethodGet)
	router.HandleFunc(path+"/{id}", controller.Update).Methods(http.MethodPut)
	router.HandleFunc(path+"/{id}", controller.Delete).Methods(http.MethodDelete)
}

func status(w http.ResponseWriter, r *http.Request) {
	response.Message(w, http.StatusOK, StatusMessage)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	response.Error(w, http.StatusNotFound, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
