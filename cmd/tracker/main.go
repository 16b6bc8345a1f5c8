package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/goliatone/go-router"
	tracker "github.com/goliatone/go-tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := tracker.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lgr, err := tracker.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx := context.Background()

	db, err := tracker.OpenDB(ctx, cfg.Database, lgr.GetLogger("db"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := tracker.Migrate(ctx, db, cfg.Database, lgr.GetLogger("migrate")); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := tracker.NewMetrics(reg)

	repo := tracker.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := tracker.NewTokenServiceFromConfig(cfg, lgr.GetLogger("auth:tokens"))
	hasher := tracker.NewBcryptHasher(cfg.Auth.BcryptCost)
	activity := tracker.NewLoggerActivitySink(lgr.GetLogger("activity"))

	svcOpts := func(name string) []tracker.ServiceOption {
		return []tracker.ServiceOption{
			tracker.WithServiceLogger(lgr.GetLogger(name)),
			tracker.WithServiceMetrics(metrics),
			tracker.WithActivitySink(activity),
		}
	}

	controller := tracker.NewController(
		tracker.NewAuthService(repo, hasher, tokens, svcOpts("auth:svc")...),
		tracker.NewProjectService(repo.Projects(), svcOpts("projects")...),
		tracker.NewTaskService(repo.Tasks(), repo.Projects(), repo.Users(), svcOpts("tasks")...),
		tracker.NewUserService(repo.Users(), svcOpts("users")...),
		tracker.WithControllerLogger(lgr.GetLogger("http")),
		tracker.WithControllerMetrics(metrics),
	)

	authenticator := tracker.NewAuthenticator(tokens, repo.Users(), cfg.GetPublicPaths()...).
		WithLogger(lgr.GetLogger("auth:pipeline")).
		WithMetrics(metrics)

	httpAuth := tracker.NewHTTPAuthenticator(authenticator, cfg).
		WithLogger(lgr.GetLogger("auth:http"))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		app := router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:           cfg.Server.AppName,
			UnescapePath:      true,
			EnablePrintRoutes: false,
			StrictRouting:     false,
		}))
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
		return app
	})

	srv.Router().WithLogger(lgr.GetLogger("router"))
	srv.Router().Use(httpAuth.Middleware())

	tracker.RegisterRoutes(srv.Router(), controller)

	lgr.Info("tracker listening", "address", cfg.Server.Address)
	go srv.Serve(cfg.Server.Address)

	sig := WaitExitSignal()
	lgr.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lgr.Error("shutdown failed", "error", err)
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
