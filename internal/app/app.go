package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/clouddelivery/backend/internal/dal/postgres"
	"github.com/clouddelivery/backend/internal/dal/rabbitmq"
	outboxrepo "github.com/clouddelivery/backend/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/clouddelivery/backend/internal/dal/repositories/product/postgres"
	userrepo "github.com/clouddelivery/backend/internal/dal/repositories/user/postgres"
	"github.com/clouddelivery/backend/internal/otel"
	"github.com/clouddelivery/backend/internal/service/services/authsvc"
	"github.com/clouddelivery/backend/internal/service/services/catalogsvc"
	"github.com/clouddelivery/backend/internal/service/services/ordersvc"
	"github.com/clouddelivery/backend/internal/service/services/usersvc"
	httptransport "github.com/clouddelivery/backend/internal/transport/http"
	outboxworker "github.com/clouddelivery/backend/internal/worker/outbox"
)

// App represents the application.
type App struct {
	authSvc        *authsvc.AuthService
	orderSvc       *ordersvc.OrderService
	catalogSvc     *catalogsvc.CatalogService
	userSvc        *usersvc.UserService
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	userRepository := userrepo.NewPostgresUserRepository(postgresClient.Pool())
	productRepository := productrepo.NewPostgresProductRepository(postgresClient.Pool())
	outboxRepository := outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool())

	authSvc := authsvc.MustNewAuthService(
		authsvc.WithUserRepository(userRepository),
		authsvc.WithSecret([]byte(os.Getenv("JWT_SECRET"))),
	)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)

	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithProductRepository(productRepository),
		catalogsvc.WithUploadsDir(viper.GetString("uploads.dir")),
	)

	userSvc := usersvc.MustNewUserService(
		usersvc.WithUserRepository(userRepository),
	)

	transport := httptransport.NewHTTPTransport(authSvc, orderSvc, catalogSvc, userSvc)
	transport.RegisterRoutes()

	outboxWorker := outboxworker.NewWorker(outboxRepository, rabbitMqClient)

	return &App{
		authSvc:        authSvc,
		orderSvc:       orderSvc,
		catalogSvc:     catalogSvc,
		userSvc:        userSvc,
		transport:      transport,
		outboxWorker:   outboxWorker,
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting outbox worker")
		a.outboxWorker.Start(ctx)
	}()

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown shuts down components sequentially: outbox worker,
// HTTP server, RabbitMQ, PostgreSQL, and OpenTelemetry.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.outboxWorker.Stop()
	slog.Info("Outbox worker stopped gracefully")

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}

	slog.Info("Application shutdown complete")
}
