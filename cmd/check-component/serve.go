package main

import (
	"context"
	"errors"
	"time"

	"github.com/NordCoder/Fisherman/internal/obs"
	"github.com/NordCoder/Fisherman/internal/services/benchmark"
	checkapi "github.com/NordCoder/Fisherman/internal/services/check-api"
	"github.com/NordCoder/Fisherman/internal/services/checker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var noBenchmark bool

var serveCmd = &cobra.Command{
	Use:          "serve",
	Short:        "Serve POST /get_status and GET /ping",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return a.serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noBenchmark, "no-benchmark", false, "answer ?benchmark=true without running a load test")
}

func (a *app) serve(ctx context.Context) error {
	// metrics
	ms := obs.BootstrapMetricsServer(a.cfg.MetricsAddr, nil, a.log)

	// directory users back the identity in status_detail
	if d := a.cfg.Directory; d.NodesURL != "" || d.GatewaysURL != "" || d.UsersURL != "" {
		providers, users, err := a.directory.Fetch(ctx)
		if err != nil {
			a.log.Warn("directory fetch failed; continuing without users", zap.Error(err))
		} else {
			a.registry.Replace(providers, users)
		}
	}

	var bench checkapi.Benchmarker
	if !noBenchmark {
		bench = benchmark.NewRunner(checker.NewHTTPClient(a.cfg.HTTP), a.log)
	}
	h := checkapi.NewHandlers(a.engine, bench, a.cfg.API, a.log)
	srv := checkapi.NewServer(a.cfg.Server, h, a.log)

	// loop
	err := checkapi.Serve(ctx, srv, a.log)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error("check api stopped", zap.Error(err))
	}

	// graceful metrics server shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	a.log.Info("bye")
	return err
}
