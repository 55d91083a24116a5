package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/Fisherman/internal/config/fisherman"
	"github.com/NordCoder/Fisherman/internal/domain/checkflow"
	"github.com/NordCoder/Fisherman/internal/domain/report"
	"github.com/NordCoder/Fisherman/internal/obs"
	"github.com/NordCoder/Fisherman/internal/obs/retry"
	"github.com/NordCoder/Fisherman/internal/outbox"
	"github.com/NordCoder/Fisherman/internal/repository/kafka"
	pg "github.com/NordCoder/Fisherman/internal/repository/postgres"
	"github.com/NordCoder/Fisherman/internal/services/checker"
	"github.com/NordCoder/Fisherman/internal/services/fisherman"
	fishermanrepo "github.com/NordCoder/Fisherman/internal/services/fisherman/repo"
	"github.com/NordCoder/Fisherman/internal/services/registry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	configPath string
	noReport   bool
)

var rootCmd = &cobra.Command{
	Use:   "fisherman",
	Short: "Monitors providers and reports the ones that keep failing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("no-report") {
			cfg.Fisherman.NoReport = noReport
		}
		return run(cmd.Context(), cfg)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the yaml config")
	rootCmd.Flags().BoolVar(&noReport, "no-report", false, "log bad providers without submitting reports")
}

func wire(cfg *config.Config, catalog checkflow.Catalog, base checkflow.BaseEndpoints, db *pg.DB, events *kafka.PenaltyEventsKafka, l *zap.Logger) (*outbox.Runner, *fisherman.Runner) {
	outboxRepo := pg.NewOutboxRepo(db)
	dispatch := outbox.MakeGlobalOutboxHandler(events, retry.PublishPolicy(l))
	outboxRunner := outbox.NewOutboxRunner(l, outboxRepo, dispatch, cfg.Outbox)

	httpc := checker.NewHTTPClient(cfg.HTTP)
	reg := registry.New()
	caller := checker.NewCaller(httpc, base, cfg.Checker.CallConfig, l)
	engine := checker.NewEngine(catalog, caller, reg, cfg.Checker.Parallel, l)

	fc := cfg.Fisherman
	reporter := &fishermanrepo.StoreReporter{
		Tx:      pg.NewTransactor(db, l),
		Reports: pg.NewProviderReportRepo(db),
		Outbox:  outboxRepo,
	}

	runner := &fisherman.Runner{
		Log:      l.With(zap.String("component", "fisherman.runner")),
		Registry: reg,
		Refresher: &registry.Refresher{
			Log:       l.With(zap.String("component", "registry.refresher")),
			Directory: registry.NewHTTPDirectory(httpc, cfg.Directory),
			Registry:  reg,
			Status:    fc.ProviderStatus,
			Zone:      fc.Zone,
			Interval:  fc.RefreshInterval,
			Policy:    retry.DirectoryPolicy(l),
		},
		Sampler: fisherman.NewSampler(engine, fisherman.SamplerConfig{
			Tasks:           fc.CheckTasks,
			Samples:         fc.NumberOfSamples,
			Interval:        fc.SampleInterval,
			ResponseTimeKey: fc.ResponseTimeKey,
		}, l),
		Monitor: fisherman.NewMonitor(
			fisherman.NewHistory(fc.HistoryMax),
			report.HealthThresholds{
				NodeSuccessPercent:    fc.NodeSuccessPercentThreshold,
				GatewaySuccessPercent: fc.GatewaySuccessPercentThreshold,
				NodeResponseTimeMs:    fc.NodeResponseTimeThresholdMs,
				GatewayResponseTimeMs: fc.GatewayResponseTimeThresholdMs,
			},
			fisherman.FailureThresholds{Node: fc.NodeFailedCycles, Gateway: fc.GatewayFailedCycles},
		),
		Ping: fisherman.NewPingPong(httpc, fisherman.PingConfig{
			Parallel:     fc.Ping.Parallel,
			Samples:      fc.Ping.Samples,
			SuccessRatio: fc.Ping.SuccessRatio,
			Response:     fc.Ping.Response,
			Timeout:      fc.Ping.Timeout,
			Scheme:       cfg.Checker.Scheme,
			Domain:       cfg.Checker.Domain,
		}, l),
		Submitter: fisherman.NewSubmitter(reporter, fc.NoReport, l),
		Cfg: fisherman.RunnerConfig{
			LogicInterval: fc.CheckLogicInterval,
			PingInterval:  fc.CheckPingInterval,
		},
	}
	return outboxRunner, runner
}

func run(ctx context.Context, cfg *config.Config) error {
	// init
	root, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	l, err := obs.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	// otel
	otelCloser, err := obs.SetupOTel(root, cfg.OTEL)
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// check flows
	catalog, err := checkflow.LoadCatalog(cfg.Checker.FlowFile)
	if err != nil {
		l.Fatal("load check flows", zap.String("file", cfg.Checker.FlowFile), zap.Error(err))
	}
	base, err := checkflow.LoadBaseEndpoints(cfg.Checker.BaseEndpointFile)
	if err != nil {
		l.Fatal("load base endpoints", zap.String("file", cfg.Checker.BaseEndpointFile), zap.Error(err))
	}

	// db
	db, err := pg.New(root, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, db.Ping, l)

	// kafka
	if err := kafka.EnsureTopic(root, cfg.Kafka.Brokers, cfg.Kafka.ReportsTopic, l); err != nil {
		l.Warn("ensure reports topic", zap.Error(err))
	}
	prod := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ReportsTopic.Name, l)
	defer func() { _ = prod.Close() }()
	events := kafka.NewPenaltyEventsKafka(prod)

	cons := kafka.BootstrapConsumer(root, kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.ProjectsGroupID,
		Topic:   cfg.Kafka.ProjectsTopic.Name,
	}, cfg.Kafka.ProjectsTopic, l)
	defer func() { _ = cons.Close() }()

	// wiring
	outboxRunner, runner := wire(cfg, catalog, base, db, events, l)
	projects := fisherman.NewProjectWatcher(l)
	if cfg.Fisherman.NoReport {
		l.Warn("no-report mode: bad providers are logged only")
	}

	// start
	g, gctx := errgroup.WithContext(root)
	g.Go(func() error { return outboxRunner.Run(gctx) })
	g.Go(func() error { return runner.Run(gctx) })
	g.Go(func() error {
		return cons.Consume(gctx, kafka.ProtoHandler(func() *structpb.Struct { return &structpb.Struct{} }, projects.Handle))
	})

	// loop
	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		l.Error("fisherman stopped", zap.Error(err))
	}

	// graceful metrics server shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
