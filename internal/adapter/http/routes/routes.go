package routes

import (
	"context"
	"log"
	"time"

	_ "loja_pix/docs"
	"loja_pix/internal/adapter/http/handlers"
	"loja_pix/internal/adapter/http/middleware"
	"loja_pix/internal/adapter/persistence/repository"
	"loja_pix/internal/infrastructure/database"
	"loja_pix/internal/infrastructure/messaging"
	"loja_pix/internal/infrastructure/payments"
	"loja_pix/internal/usecase"
	"loja_pix/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

// Run will start the server
func Run() {
	cfg := LoadConfig()
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	closeDeps := getRoutes(cfg)
	defer closeDeps()

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes(cfg Config) func() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ddb, err := database.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to DynamoDB: %v", err)
	}
	if err := database.CheckTables(ctx, ddb, repository.RequiredTables()...); err != nil {
		log.Printf("[routes] dynamodb check failed, continuing: %v", err)
	}

	paymentRepo := repository.NewPaymentDynamoRepository(ddb)
	userRepo := repository.NewUserDynamoRepository(ddb)
	itemRepo := repository.NewItemDynamoRepository(ddb)
	settingsRepo := repository.NewSettingsDynamoRepository(ddb)

	events, closeEvents := newEventPublisher(cfg.RabbitMQURL)

	paymentUseCase := usecase.NewPaymentUseCase(
		paymentRepo,
		userRepo,
		itemRepo,
		payments.NewPixProviderRouter(settingsRepo),
		payments.NewFallbackPixGenerator(),
		events,
		cfg.PaymentUseCase,
	)
	entitlementUseCase := usecase.NewEntitlementUseCase(userRepo, itemRepo, paymentRepo)

	paymentHandler := handlers.NewPaymentHandler(paymentUseCase)
	entitlementHandler := handlers.NewEntitlementHandler(entitlementUseCase)

	if cfg.JWTSecret == "" {
		log.Printf("[routes] JWT_SECRET is empty; authenticated routes will reject every request")
	}

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addPaymentRoutes(v1, routeDeps{
		payments:     paymentHandler,
		entitlements: entitlementHandler,
		auth:         middleware.JWTAuth(cfg.JWTSecret),
		webhookLimit: middleware.RateLimit(middleware.NewIPRateLimiter(cfg.WebhookRPS, cfg.WebhookBurst)),
	})

	return closeEvents
}

// newEventPublisher connects to RabbitMQ when configured. The checkout keeps
// working without a broker; events are then only logged.
func newEventPublisher(url string) (interfaces.IPaymentEventPublisher, func()) {
	if url == "" {
		log.Printf("[routes] RABBITMQ_URL not set; payment events will only be logged")
		return messaging.NoopPublisher{}, func() {}
	}
	client, err := messaging.NewRabbitMQClient(url)
	if err != nil {
		log.Printf("[routes] RabbitMQ unavailable, payment events will only be logged: %v", err)
		return messaging.NoopPublisher{}, func() {}
	}
	return client, func() { _ = client.Close() }
}

func setMiddlewares() {
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
