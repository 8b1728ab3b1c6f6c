package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chillzone/chillzone-pos/cmd/chillzone/cli"
	"github.com/chillzone/chillzone-pos/internal/app"
	"github.com/chillzone/chillzone-pos/internal/auth"
	"github.com/chillzone/chillzone-pos/internal/backend"
	"github.com/chillzone/chillzone-pos/internal/catalog"
	"github.com/chillzone/chillzone-pos/internal/observability"
	"github.com/chillzone/chillzone-pos/internal/platform/cache"
	"github.com/chillzone/chillzone-pos/internal/pos"
	"github.com/chillzone/chillzone-pos/internal/reports"
	"github.com/chillzone/chillzone-pos/internal/reports/export"
	reportshttp "github.com/chillzone/chillzone-pos/internal/reports/http"
	"github.com/chillzone/chillzone-pos/internal/sales"
	"github.com/chillzone/chillzone-pos/internal/shared"
	"github.com/chillzone/chillzone-pos/jobs"
	"github.com/chillzone/chillzone-pos/report"
)

const sessionCookie = "chillzone_session"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 {
		os.Exit(runCommand(ctx, cfg, logger, os.Args[1], os.Args[2:]))
	}
	if err := serve(ctx, stop, cfg, logger); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, cfg *app.Config, logger *slog.Logger, name string, args []string) int {
	switch name {
	case "report":
		opts, err := cli.ParseReportFlags(args, os.Stderr)
		if err != nil {
			return 2
		}
		loc, _ := cfg.Location()
		api := backend.NewClient(cfg.APIURL, cfg.APITimeout, logger)
		rcfg := reportsConfig(cfg, loc)
		if opts.Top > 0 {
			rcfg.TopN = opts.Top
		}
		svc := reports.NewService(api, nil, rcfg)
		reportCLI, err := cli.NewReportCLI(svc, loc)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return reportCLI.SummaryCommand(ctx, opts)
	case "jobs":
		return runJobs(ctx, cfg, args)
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command %q (expected report or jobs)\n", name)
		return 2
	}
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
	defer func() { _ = jobsCLI.Close() }()

	if len(args) == 0 {
		args = []string{"inspect"}
	}
	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			_, _ = fmt.Fprintln(os.Stderr, "jobs trigger: job name required")
			return 2
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs trigger: %v\n", err)
			return 1
		}
		_, _ = fmt.Printf("enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
	case "inspect":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs inspect: %v\n", err)
			return 1
		}
		_, _ = fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d failed=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Failed)
		scheduled, err := jobsCLI.ListScheduled(ctx, 10)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs inspect: %v\n", err)
			return 1
		}
		for _, t := range scheduled {
			_, _ = fmt.Printf(" - %s %s at %s\n", t.ID, t.Type, t.NextProcessAt.Format(time.RFC3339))
		}
	default:
		_, _ = fmt.Fprintf(os.Stderr, "jobs: unknown subcommand %q\n", args[0])
		return 2
	}
	return 0
}

func reportsConfig(cfg *app.Config, loc *time.Location) reports.Config {
	return reports.Config{
		StartYear: cfg.ReportStartYear,
		YearSpan:  cfg.ReportYearSpan,
		TopN:      cfg.ReportTopN,
		Location:  loc,
	}
}

func serve(ctx context.Context, stop context.CancelFunc, cfg *app.Config, logger *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, sessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	api := backend.NewClient(cfg.APIURL, cfg.APITimeout, logger)

	authService := auth.NewService(api)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	catalogService := catalog.NewService(api, catalog.NewStockCache(), cfg.CatalogMaxAge)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	salesService := sales.NewService(api, cfg.APIURL)
	salesHandler := sales.NewHandler(logger, salesService, loc)

	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(api, reportsCache, reportsConfig(cfg, loc))

	pdfClient := report.NewClient(cfg.GotenbergURL, 0)
	var pdfService reportshttp.PDFService
	if pdfClient.Configured() {
		pdfService = &export.PDFExporter{Renderer: pdfClient, StoreName: cfg.StoreName}
	}
	reportsHandler := reportshttp.NewHandler(logger, reportsService, pdfService, cfg.ExportLimit)

	posService := pos.NewService(logger, pos.Deps{
		Store:    pos.NewCartStore(redisClient, cfg.CartTTL),
		Catalog:  catalogService,
		Creator:  api,
		Stock:    catalogService.Cache(),
		Reports:  reportsService,
		Locker:   shared.NewLocker(redisClient),
		Observer: metrics,
	}, pos.Config{LockTTL: cfg.CheckoutLockTTL})
	posHandler := pos.NewHandler(logger, posService)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient := jobs.NewClient(redisOpts)
	defer func() { _ = jobClient.Close() }()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	// Each sale bumps the reports cache version; rebuild the dashboard in the
	// worker so the next reports page load is warm.
	if err := reportsCache.Listen(ctx, jobs.WarmupOnBump(ctx, jobClient, logger)); err != nil {
		logger.Warn("reports bump listener", slog.Any("error", err))
	}

	readiness := map[string]func(context.Context) error{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}
	if pdfClient.Configured() {
		readiness["gotenberg"] = pdfClient.Ping
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,
		AuthHandler:    authHandler,
		POSHandler:     posHandler,
		CatalogHandler: catalogHandler,
		SalesHandler:   salesHandler,
		ReportsHandler: reportsHandler,
		JobHandler:     jobHandler,
		Readiness:      readiness,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", api.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
