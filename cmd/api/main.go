package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/martminds/martminds-backend/internal/modules/auth"
	"github.com/martminds/martminds-backend/internal/modules/catalog"
	"github.com/martminds/martminds-backend/internal/modules/driver"
	"github.com/martminds/martminds-backend/internal/modules/mysterybox"
	"github.com/martminds/martminds-backend/internal/modules/order"
	"github.com/martminds/martminds-backend/internal/modules/payment"
	"github.com/martminds/martminds-backend/internal/modules/store"
	"github.com/martminds/martminds-backend/internal/modules/user"
	"github.com/martminds/martminds-backend/internal/platform/events"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	secret := []byte(os.Getenv("JWT_SECRET"))
	if len(secret) == 0 {
		log.Fatal("JWT_SECRET must be set")
	}

	// ── Storage ─────────────────────────────────────────────
	// Without DATABASE_URL everything runs on in-memory repositories,
	// which is enough for local development.
	var db *sql.DB
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		var err error
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatal(err)
		}
		log.Println("connected to postgres")
	} else {
		log.Println("DATABASE_URL not set, using in-memory repositories")
	}

	var (
		userRepo    user.Repository
		storeRepo   store.Repository
		catalogRepo catalog.Repository
		orderRepo   order.Repository
		paymentRepo payment.Repository
		boxRepo     mysterybox.Repository
	)
	if db != nil {
		userRepo = user.NewPostgresRepository(db)
		storeRepo = store.NewPostgresRepository(db)
		catalogRepo = catalog.NewPostgresRepository(db)
		orderRepo = order.NewPostgresRepository(db)
		paymentRepo = payment.NewPostgresRepository(db)
		boxRepo = mysterybox.NewPostgresRepository(db)
	} else {
		userRepo = user.NewMemoryRepository()
		storeRepo = store.NewMemoryRepository()
		catalogRepo = catalog.NewMemoryRepository()
		orderRepo = order.NewMemoryRepository()
		paymentRepo = payment.NewMemoryRepository()
		boxRepo = mysterybox.NewMemoryRepository()
	}

	// ── Cache ───────────────────────────────────────────────
	var productCache *catalog.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Printf("redis unreachable, product cache disabled: %v", err)
		} else {
			productCache = catalog.NewCache(client, 5*time.Minute)
			log.Println("product cache enabled")
		}
	}

	// ── Events ──────────────────────────────────────────────
	var publisher events.Publisher = events.NopPublisher{}
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		conn, ch, err := events.SetupConn(url)
		if err != nil {
			log.Printf("rabbitmq unreachable, events disabled: %v", err)
		} else {
			defer conn.Close()
			defer ch.Close()
			publisher = events.NewRabbitPublisher(ch)
			log.Println("event publishing enabled")
		}
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(auth.NewMiddleware(secret).Authenticate)

	// ── Modules ─────────────────────────────────────────────
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo, secret)
	auth.NewHandler(authService).RegisterRoutes(router)

	storeService := store.NewService(storeRepo)
	store.NewHandler(storeService).RegisterRoutes(router)

	catalogService := catalog.NewService(catalogRepo, productCache)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	orderService := order.NewService(orderRepo, catalogService, userService, publisher, order.Config{
		RestockOnCancel: os.Getenv("RESTOCK_ON_CANCEL") == "true",
	})
	order.NewHandler(orderService).RegisterRoutes(router)

	registry := payment.NewRegistry(
		payment.NewCashProcessor(),
		payment.NewCardProcessor(),
		payment.NewEWalletProcessor(userService),
	)
	paymentService := payment.NewService(paymentRepo, orderRepo, registry, publisher)
	payment.NewHandler(paymentService).RegisterRoutes(router)

	driverService := driver.NewService(userRepo, orderService)
	driver.NewHandler(driverService).RegisterRoutes(router)

	boxService := mysterybox.NewService(boxRepo, catalogService)
	mysterybox.NewHandler(boxService).RegisterRoutes(router)

	// ── Serve ───────────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
