package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mkravets/brewcart/internal/cart"
	cartrepo "github.com/mkravets/brewcart/internal/cart/repository"
	"github.com/mkravets/brewcart/internal/catalog"
	"github.com/mkravets/brewcart/internal/catalog/cache"
	catalogsvc "github.com/mkravets/brewcart/internal/catalog/service"
	"github.com/mkravets/brewcart/internal/catalog/store"
	"github.com/mkravets/brewcart/internal/checkout"
	"github.com/mkravets/brewcart/internal/httpapi"
	"github.com/mkravets/brewcart/internal/orders"
	"github.com/mkravets/brewcart/internal/orders/publisher"
	ordersrepo "github.com/mkravets/brewcart/internal/orders/repository"
	"github.com/mkravets/brewcart/internal/payment"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	SQLitePath            string
	CatalogMigrationsPath string
	CatalogURL            string
	RedisAddr             string
	MongoURI              string
	MongoDatabase         string

	PostgresHost         string
	PostgresPort         int
	PostgresUser         string
	PostgresPassword     string
	PostgresDB           string
	OrdersMigrationsPath string

	KafkaBrokers string
	PaymentURL   string

	ShippingFee decimal.Decimal
	TaxRate     decimal.Decimal
}

func loadConfig() *Config {
	pricing := checkout.DefaultPricing()

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		SQLitePath:            getEnv("SQLITE_PATH", "brewcart.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "internal/catalog/store/migrations"),
		CatalogURL:            os.Getenv("CATALOG_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		MongoURI:              os.Getenv("MONGO_URI"),
		MongoDatabase:         getEnv("MONGO_DATABASE", "brewcart"),

		PostgresHost:         os.Getenv("POSTGRES_HOST"),
		PostgresPort:         getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:         getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:     getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:           getEnv("POSTGRES_DB", "brewcart"),
		OrdersMigrationsPath: getEnv("ORDERS_MIGRATIONS_PATH", "internal/orders/repository/migrations"),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		PaymentURL:   os.Getenv("PAYMENT_URL"),

		ShippingFee: getEnvDecimal("SHIPPING_FEE", pricing.ShippingFee),
		TaxRate:     getEnvDecimal("TAX_RATE", pricing.TaxRate),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return d
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Catalog system of record.
	catalogStore, err := store.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open catalog store: %v", err)
	}
	defer catalogStore.Close()

	if err := catalogStore.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("failed to run catalog migrations: %v", err)
	}
	if err := catalogStore.SeedIfEmpty(ctx, catalog.DefaultEntries()); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	// The storefront reads from an upstream products API when one is
	// configured, otherwise straight from the local store.
	var fetcher catalog.Fetcher = catalogStore
	if cfg.CatalogURL != "" {
		fetcher = catalog.NewHTTPFetcher(cfg.CatalogURL)
		log.Printf("using upstream catalog at %s", cfg.CatalogURL)
	}

	var catalogCache cache.CatalogCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to ping redis: %v", err)
		}
		defer redisClient.Close()
		catalogCache = cache.NewRedisCache(redisClient)
		log.Printf("catalog cache enabled at %s", cfg.RedisAddr)
	}

	catalogService := catalogsvc.NewService(fetcher, catalogCache)

	// Cart persistence is optional; without mongo carts are process-local.
	var cartRepository cart.Repository
	if cfg.MongoURI != "" {
		mongoDB, err := cartrepo.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("failed to connect to mongodb: %v", err)
		}
		mongoRepo := cartrepo.NewMongoRepository(mongoDB)
		if err := mongoRepo.CreateIndexes(ctx); err != nil {
			log.Fatalf("failed to create cart indexes: %v", err)
		}
		cartRepository = mongoRepo
		log.Printf("cart persistence enabled")
	}
	cartService := cart.NewService(cartRepository)

	// Order history: postgres when configured, in-memory otherwise.
	var orderStore orders.Store = orders.NewMemoryStore()
	if cfg.PostgresHost != "" {
		cred := &ordersrepo.Credentials{
			Host:              cfg.PostgresHost,
			Port:              cfg.PostgresPort,
			User:              cfg.PostgresUser,
			Password:          cfg.PostgresPassword,
			DBName:            cfg.PostgresDB,
			MigrationsDirPath: cfg.OrdersMigrationsPath,
		}
		repo, err := ordersrepo.NewRepository(cred)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		if err := repo.RunMigrations(cred); err != nil {
			log.Fatalf("failed to run order migrations: %v", err)
		}
		orderStore = repo
		log.Printf("order history backed by postgres")
	}

	var events checkout.EventSink
	if cfg.KafkaBrokers != "" {
		pub := publisher.NewPublisher(splitBrokers(cfg.KafkaBrokers)...)
		defer pub.Close()
		events = pub
		log.Printf("order events published to %s", cfg.KafkaBrokers)
	}

	// Payments go through the remote processor when one is configured,
	// otherwise the local simulator approves most charges.
	var gateway checkout.Gateway = payment.NewSimulator(time.Now().UnixNano())
	if cfg.PaymentURL != "" {
		gateway = payment.NewClient(cfg.PaymentURL)
		log.Printf("using payment processor at %s", cfg.PaymentURL)
	}

	pricing := checkout.Pricing{ShippingFee: cfg.ShippingFee, TaxRate: cfg.TaxRate}

	server := httpapi.NewServer(
		cartService,
		catalogService,
		catalogStore,
		orderStore,
		gateway,
		pricing,
		events,
		cfg.RequestTimeout,
	)

	handler := otelhttp.NewHandler(server.Routes(), "brewcart")

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("brewcart starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
