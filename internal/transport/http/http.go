package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/clouddelivery/backend/internal/service/models/claims"
	"github.com/clouddelivery/backend/internal/service/models/order"
	"github.com/clouddelivery/backend/internal/service/models/product"
	"github.com/clouddelivery/backend/internal/service/models/role"
	"github.com/clouddelivery/backend/internal/service/models/user"
	"github.com/clouddelivery/backend/internal/service/services/catalogsvc"
	"github.com/clouddelivery/backend/internal/transport/http/authroutes"
	authmw "github.com/clouddelivery/backend/internal/transport/http/middleware/auth"
	"github.com/clouddelivery/backend/internal/transport/http/orderroutes"
	"github.com/clouddelivery/backend/internal/transport/http/productroutes"
	"github.com/clouddelivery/backend/internal/transport/http/userroutes"
	"github.com/clouddelivery/backend/pkg/http/middleware/trace"
	"github.com/clouddelivery/backend/pkg/logger"
)

type authService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (string, *user.User, error)
	VerifyToken(token string) (*claims.Claims, error)
}

type orderService interface {
	Create(ctx context.Context, userID int64, items []order.NewItem, paymentMethod string) (*order.Order, error)
	GetByID(ctx context.Context, orderID int64) (*order.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]order.Order, error)
	ListAll(ctx context.Context) ([]order.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, rawStatus string) (*order.Order, error)
}

type catalogService interface {
	List(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
	GetByID(ctx context.Context, id int64) (*product.Product, error)
	Create(ctx context.Context, p product.Product, img *catalogsvc.ImageUpload) (*product.Product, error)
	Update(ctx context.Context, id int64, p product.Product, img *catalogsvc.ImageUpload) (*product.Product, error)
	Delete(ctx context.Context, id int64) error
}

type userService interface {
	ListCustomers(ctx context.Context) ([]user.User, error)
	Delete(ctx context.Context, id int64) error
}

type HTTPTransport struct {
	server     *http.Server
	router     *chi.Mux
	authSvc    authService
	orderSvc   orderService
	catalogSvc catalogService
	userSvc    userService
	guard      func(http.Handler) http.Handler
}

func NewHTTPTransport(authSvc authService, orderSvc orderService, catalogSvc catalogService, userSvc userService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:     server,
		router:     router,
		authSvc:    authSvc,
		orderSvc:   orderSvc,
		catalogSvc: catalogSvc,
		userSvc:    userSvc,
		guard:      authmw.NewAuthMiddleware(authSvc),
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Group(func(r chi.Router) {
				r.Use(h.guard)
				r.Get("/profile", h.profile)
				r.Get("/customers", h.listCustomers)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Get("/{id}", h.getProduct)
			r.Group(func(r chi.Router) {
				r.Use(h.guard, authmw.RequireRole(role.RoleAdmin))
				r.Post("/", h.createProduct)
				r.Put("/{id}", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(h.guard)
			r.Post("/", h.createOrder)
			r.Get("/", h.listOrders)
			r.Get("/my-orders", h.myOrders)
			r.With(authmw.RequireRole(role.RoleAdmin)).Get("/admin/all", h.listAllOrders)
			r.Get("/{id}", h.getOrder)
			r.Patch("/{id}/status", h.updateStatus)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.guard, authmw.RequireRole(role.RoleAdmin))
			r.Delete("/{id}", h.deleteUser)
		})
	})

	uploadsDir := viper.GetString("uploads.dir")
	h.router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
}

func (h *HTTPTransport) register(w http.ResponseWriter, r *http.Request) {
	authroutes.Register(w, r, h.authSvc)
}

func (h *HTTPTransport) login(w http.ResponseWriter, r *http.Request) {
	authroutes.Login(w, r, h.authSvc)
}

func (h *HTTPTransport) profile(w http.ResponseWriter, r *http.Request) {
	authroutes.Profile(w, r)
}

func (h *HTTPTransport) listCustomers(w http.ResponseWriter, r *http.Request) {
	authroutes.ListCustomers(w, r, h.userSvc)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	productroutes.ListProducts(w, r, h.catalogSvc)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	productroutes.GetProduct(w, r, h.catalogSvc)
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	productroutes.CreateProduct(w, r, h.catalogSvc)
}

func (h *HTTPTransport) updateProduct(w http.ResponseWriter, r *http.Request) {
	productroutes.UpdateProduct(w, r, h.catalogSvc)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	productroutes.DeleteProduct(w, r, h.catalogSvc)
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	orderroutes.CreateOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	orderroutes.GetOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	orderroutes.ListOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) listAllOrders(w http.ResponseWriter, r *http.Request) {
	orderroutes.ListAllOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) myOrders(w http.ResponseWriter, r *http.Request) {
	orderroutes.MyOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderroutes.UpdateStatus(w, r, h.orderSvc)
}

func (h *HTTPTransport) deleteUser(w http.ResponseWriter, r *http.Request) {
	userroutes.DeleteUser(w, r, h.userSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

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
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
