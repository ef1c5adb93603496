package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/rajik786786-oss/kgf-billing/internal/billing"
	"github.com/rajik786786-oss/kgf-billing/internal/checkout"
	"github.com/rajik786786-oss/kgf-billing/internal/common"
	"github.com/rajik786786-oss/kgf-billing/internal/config"
	"github.com/rajik786786-oss/kgf-billing/internal/customer"
	"github.com/rajik786786-oss/kgf-billing/internal/db"
	"github.com/rajik786786-oss/kgf-billing/internal/events"
	"github.com/rajik786786-oss/kgf-billing/internal/health"
	"github.com/rajik786786-oss/kgf-billing/internal/inventory"
	"github.com/rajik786786-oss/kgf-billing/internal/invoice"
	"github.com/rajik786786-oss/kgf-billing/internal/notify"
	"github.com/rajik786786-oss/kgf-billing/internal/obs"
	"github.com/rajik786786-oss/kgf-billing/internal/report"
	"github.com/rajik786786-oss/kgf-billing/internal/scan"
	"github.com/rajik786786-oss/kgf-billing/internal/vendor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "pos")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "kgf-billing-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
			Terminal:      envOrDefault("POS_TERMINAL_ID", ""),
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "kgf-billing-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	store := db.NewStore(pool)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if tracingEnabled {
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	taskRedis, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse task redis uri")
	}
	taskClient := asynq.NewClient(taskRedis)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	validate := validator.New()

	var notifiers []events.Notifier
	if cfg.ReceiptSMS {
		notifiers = append(notifiers, &notify.ReceiptNotifier{Client: taskClient, Log: logger})
	}
	bus := &events.Bus{Store: store, Notifiers: notifiers}

	inventorySvc, err := inventory.NewService(inventory.ServiceConfig{
		Store:             store,
		Cache:             inventory.NewCache(redisClient, cfg.InventoryCacheTTL),
		Bus:               bus,
		Logger:            logger,
		LowStockThreshold: cfg.LowStockThreshold,
		DefaultTaxPercent: cfg.DefaultTaxPercent,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise inventory service")
	}
	inventoryHandler := inventory.NewHandler(inventorySvc, validate)

	customerSvc, err := customer.NewService(store, bus, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise customer service")
	}
	customerHandler := customer.NewHandler(customerSvc, validate)

	vendorSvc, err := vendor.NewService(store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise vendor service")
	}
	vendorHandler := vendor.NewHandler(vendorSvc, validate)

	billStore := billing.NewSessionStore(cfg.CartTTL)
	billHandler := billing.NewHandler(billStore, validate)

	invoiceStore := invoice.NewStore(store)
	renderer, err := invoice.NewHTMLRenderer(envOrDefault("POS_SHOP_NAME", "KGF Store"))
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise receipt renderer")
	}
	invoiceHandler := invoice.NewHandler(invoiceStore, renderer)

	builder := invoice.NewBuilder(cfg.CurrencyCode)
	builder.GSTDisabled = !cfg.GSTEnabled

	checkoutSvc, err := checkout.NewService(checkout.ServiceConfig{
		Bills:   billStore,
		Stock:   inventorySvc,
		Sales:   store,
		Builder: builder,
		Bus:     bus,
		Loyalty: customerSvc,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise checkout service")
	}
	checkoutHandler := checkout.NewHandler(checkoutSvc)

	scanSvc, err := scan.NewService(inventorySvc)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise scan service")
	}
	scanHandler := scan.NewHandler(scan.NewHub(cfg.ScanInterKeyGap), scanSvc)

	reportSvc := &report.Service{
		Q:            store,
		R:            redisClient,
		TTL:          cfg.ReportCacheTTL,
		DefaultRange: cfg.ReportRangeDays,
	}
	reportHandler := &report.Handler{Svc: reportSvc}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	var rateMiddleware func(http.Handler) http.Handler
	if rate, err := limiter.NewRateFromFormatted(cfg.RateLimitFormat); err == nil {
		limiterStore, err := limiterredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "pos_rate"})
		if err != nil {
			logger.Error().Err(err).Msg("initialise rate limiter store")
		} else {
			rateMiddleware = mhttp.NewMiddleware(limiter.New(limiterStore, rate)).Handler
		}
	} else {
		logger.Error().Err(err).Str("format", cfg.RateLimitFormat).Msg("parse rate limit")
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	if rateMiddleware != nil {
		r.Use(rateMiddleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", true) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      health.Pinger{Pool: pool, Redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Route("/inventory", inventoryHandler.Routes)
		v.Route("/customers", customerHandler.Routes)
		v.Route("/vendors", vendorHandler.Routes)
		v.Route("/bills", billHandler.Routes)
		v.Route("/scan", scanHandler.Routes)
		v.Route("/invoices", invoiceHandler.Routes)

		v.With(idem.Middleware).Post("/checkout", checkoutHandler.Checkout)

		v.Route("/reports", func(rep chi.Router) {
			rep.Get("/sales", reportHandler.Sales)
			rep.Get("/top-items", reportHandler.TopItems)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	health.SetReady(false)
	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/block", pprof.Handler("block"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	mux.Handle("/threadcreate", pprof.Handler("threadcreate"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
