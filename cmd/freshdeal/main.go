package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/config"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/connections/database"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/logger"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/notify"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/repository"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/scheduler"
)

func main() {
	mode := flag.String("mode", "", "init | decay-scheduler")
	configPath := flag.String("config", "config.yaml", "path to config file")
	interval := flag.Duration("interval", 0, "decay-scheduler: override sweep interval")
	flag.Parse()

	lg := logger.New("bootstrap")
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		lg.Error("config_load_failed", err, nil)
		os.Exit(1)
	}

	switch *mode {
	case "init":
		if err := runInit(ctx, cfg, lg); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	case "decay-scheduler":
		if *interval > 0 {
			cfg.Scheduler.Interval = config.Duration(*interval)
		}
		lg.Info("service_started", map[string]any{
			"service": "decay-scheduler", "interval": cfg.Scheduler.Interval.Std().String(),
		})
		if err := runScheduler(ctx, cfg, lg); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: init | decay-scheduler")
		os.Exit(2)
	}
}

// runInit applies the schema and declares the broker topology so the
// request-serving deployment can assume both exist.
func runInit(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.ApplyMigrations(ctx, pool); err != nil {
		return err
	}
	lg.Info("migrations_applied", nil)

	mq, err := notify.Dial(notify.Config{
		Host: cfg.RabbitMQ.Host, Port: cfg.RabbitMQ.Port,
		User: cfg.RabbitMQ.User, Password: cfg.RabbitMQ.Password,
		VHost: cfg.RabbitMQ.VHost,
	})
	if err != nil {
		return err
	}
	defer mq.Close()
	if err := mq.DeclareTopology(); err != nil {
		return err
	}
	lg.Info("mq_topology_declared", nil)
	return nil
}

func runScheduler(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	pool, err := database.Connect(connectCtx, cfg.Database)
	cancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	store := repository.NewPG(pool)
	return scheduler.New(store, logger.New("decay-scheduler"), cfg.Scheduler.Interval.Std()).Run(ctx)
}
