package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	config "github.com/NordCoder/Fisherman/internal/config/check-component"
	"github.com/NordCoder/Fisherman/internal/domain/checkflow"
	"github.com/NordCoder/Fisherman/internal/obs"
	"github.com/NordCoder/Fisherman/internal/services/checker"
	"github.com/NordCoder/Fisherman/internal/services/registry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "check-component",
	Short: "On-demand provider health checks",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the yaml config")
	rootCmd.AddCommand(serveCmd, checkCmd)
}

// app is what both subcommands share.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	otel      *obs.OTel
	registry  *registry.Registry
	engine    *checker.Engine
	directory *registry.HTTPDirectory
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// logger
	l, err := obs.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	// otel
	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL)
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}

	// check flows
	catalog, err := checkflow.LoadCatalog(cfg.Checker.FlowFile)
	if err != nil {
		l.Fatal("load check flows", zap.String("file", cfg.Checker.FlowFile), zap.Error(err))
	}
	base, err := checkflow.LoadBaseEndpoints(cfg.Checker.BaseEndpointFile)
	if err != nil {
		l.Fatal("load base endpoints", zap.String("file", cfg.Checker.BaseEndpointFile), zap.Error(err))
	}

	// wiring
	httpc := checker.NewHTTPClient(cfg.HTTP)
	reg := registry.New()
	caller := checker.NewCaller(httpc, base, cfg.Checker.CallConfig, l)

	return &app{
		cfg:       cfg,
		log:       l,
		otel:      otelCloser,
		registry:  reg,
		engine:    checker.NewEngine(catalog, caller, reg, cfg.Checker.Parallel, l),
		directory: registry.NewHTTPDirectory(httpc, cfg.Directory),
	}, nil
}

func (a *app) close() {
	_ = a.otel.Shutdown(context.Background())
	_ = a.log.Sync()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
