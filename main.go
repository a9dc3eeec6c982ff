package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/audit"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/auth"
	billingapp "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/application"
	billingrepo "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/infrastructure/postgres"
	billinghttp "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/interfaces"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/observability/metrics"
	profileapp "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/profiles/application"
	profilerepo "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/profiles/infrastructure/postgres"
	profilehttp "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/profiles/interfaces/http"
	residentapp "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/application"
	residentrepo "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/infrastructure/postgres"
	residenthttp "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	residentRepo := residentrepo.NewRepository(db)
	paymentRepo := billingrepo.NewPaymentRepository(db)
	settingsRepo := billingrepo.NewSettingsRepository(db)
	profileRepo := profilerepo.NewRepository(db)

	billingPolicy, err := billingapp.LoadPolicy()
	if err != nil {
		logger.Fatalf("billing policy error: %v", err)
	}

	residentService, err := residentapp.NewService(residentRepo, residentapp.SystemClock{})
	if err != nil {
		logger.Fatalf("resident service error: %v", err)
	}
	billingService, err := billingapp.NewService(paymentRepo, settingsRepo, residentRepo, billingPolicy, billingapp.SystemClock{})
	if err != nil {
		logger.Fatalf("billing service error: %v", err)
	}
	profileService, err := profileapp.NewService(profileRepo, []byte(cfg.JWTSecret), cfg.SessionTTL)
	if err != nil {
		logger.Fatalf("profile service error: %v", err)
	}

	billingHandler, err := billinghttp.NewHandler(billingService, auditRepo)
	if err != nil {
		logger.Fatalf("billing handler error: %v", err)
	}
	residentHandler, err := residenthttp.NewHandler(residentService, billingHandler, auditRepo)
	if err != nil {
		logger.Fatalf("resident handler error: %v", err)
	}
	profileHandler, err := profilehttp.NewHandler(profileService, auditRepo)
	if err != nil {
		logger.Fatalf("profile handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/v1/login"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/login", profileHandler)
	mux.Handle("/api/v1/profiles", profileHandler)
	mux.Handle("/api/v1/profiles/", profileHandler)
	mux.Handle("/api/v1/imports/profiles", profileHandler)
	mux.Handle("/api/v1/residents", residentHandler)
	mux.Handle("/api/v1/residents/", residentHandler)
	mux.Handle("/api/v1/stats", residentHandler)
	mux.Handle("/api/v1/exports/residents.xlsx", residentHandler)
	mux.Handle("/api/v1/imports/residents", residentHandler)
	mux.Handle("/api/v1/billing/settings", billingHandler)
	mux.Handle("/api/v1/payments", billingHandler)
	mux.Handle("/api/v1/exports/payments.xlsx", billingHandler)
	mux.Handle("/api/v1/exports/payments.csv", billingHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
	SessionTTL  time.Duration
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		SessionTTL:  getenvDuration("SESSION_TTL", 12*time.Hour),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
