package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/corray333/storefront-order/docs"
	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/corray333/storefront-order/internal/service/services/ordersvc"
	createorder "github.com/corray333/storefront-order/internal/transport/http/create_order"
	getorder "github.com/corray333/storefront-order/internal/transport/http/get_order"
	listorders "github.com/corray333/storefront-order/internal/transport/http/list_orders"
	orderstatus "github.com/corray333/storefront-order/internal/transport/http/order_status"
	"github.com/corray333/storefront-order/pkg/http/middleware/auth"
	"github.com/corray333/storefront-order/pkg/http/middleware/trace"
	"github.com/corray333/storefront-order/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type service interface {
	CreateOrder(ctx context.Context, a actor.Actor, cmd ordersvc.CreateOrderCommand) (order.Order, bool, error)
	ListOrders(ctx context.Context, a actor.Actor, page ordersvc.Page) ([]order.Order, error)
	ListAllOrders(ctx context.Context, a actor.Actor, page ordersvc.Page) ([]order.Order, error)
	GetOrder(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	GetLastOrder(ctx context.Context, a actor.Actor) (order.Order, error)
	GetOrderDetails(ctx context.Context, a actor.Actor, id string) (order.Details, error)
	Confirm(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	Cancel(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	Pay(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	PayAsAdmin(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	Complete(ctx context.Context, a actor.Actor, id string) (order.Order, error)
}

// uploads stores payment proof images and exposes the directory they live in.
type uploads interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Dir() string
}

// HTTPTransport serves the order REST API.
type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	service  service
	verifier *auth.Verifier
	uploads  uploads
}

// NewHTTPTransport creates a new HTTP transport. Routes are added by RegisterRoutes.
func NewHTTPTransport(service service, verifier *auth.Verifier, uploads uploads) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:   server,
		router:   router,
		service:  service,
		verifier: verifier,
		uploads:  uploads,
	}
}

// Handler returns the root handler, mainly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// Run starts listening. It returns http.ErrServerClosed after Shutdown.
func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests until ctx expires.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if h.uploads != nil {
		images := http.StripPrefix("/Images/", http.FileServer(http.Dir(h.uploads.Dir())))
		h.router.Handle("/Images/*", images)
	}

	h.router.Route("/api/order", func(r chi.Router) {
		r.Use(h.verifier.Middleware)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Get("/", h.listAllOrders)
			r.Get("/{id}", h.getOrderDetails)
			r.Put("/confirm/{id}", h.confirm)
			r.Put("/cancel/{id}", h.cancel)
			r.Post("/pay/{id}", h.payAsAdmin)
		})

		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/last", h.getLastOrder)
		r.Get("/{id}", h.getOrder)
		r.Post("/pay/{id}", h.pay)
		r.Put("/complete/{id}", h.complete)
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service, h.uploads)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) listAllOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListAllOrders(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) getLastOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetLastOrder(w, r, h.service)
}

func (h *HTTPTransport) getOrderDetails(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrderDetails(w, r, h.service)
}

func (h *HTTPTransport) pay(w http.ResponseWriter, r *http.Request) {
	orderstatus.Pay(w, r, h.service)
}

func (h *HTTPTransport) complete(w http.ResponseWriter, r *http.Request) {
	orderstatus.Complete(w, r, h.service)
}

func (h *HTTPTransport) confirm(w http.ResponseWriter, r *http.Request) {
	orderstatus.Confirm(w, r, h.service)
}

func (h *HTTPTransport) cancel(w http.ResponseWriter, r *http.Request) {
	orderstatus.Cancel(w, r, h.service)
}

func (h *HTTPTransport) payAsAdmin(w http.ResponseWriter, r *http.Request) {
	orderstatus.PayAsAdmin(w, r, h.service)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)
	router.Use(middleware.Recoverer)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	port := viper.GetString("server.http.port")
	if port == "" {
		port = "8080"
	}

	return &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
