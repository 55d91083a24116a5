package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/services/registry"
	"github.com/spf13/cobra"
)

var (
	providersFile string
	tasks         []string
	statusFilter  string
)

var checkCmd = &cobra.Command{
	Use:          "check",
	Short:        "Check every provider once and print CheckMk lines",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return a.check(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	checkCmd.Flags().StringVar(&providersFile, "providers", "", "json file with a provider list; the directory is used when empty")
	checkCmd.Flags().StringSliceVar(&tasks, "task", nil, "check task to run (repeatable); defaults to checker.tasks")
	checkCmd.Flags().StringVar(&statusFilter, "status", "", "only check providers with this status")
}

func (a *app) check(ctx context.Context, out io.Writer) error {
	providers, users, err := a.load(ctx)
	if err != nil {
		return err
	}
	providers = registry.Filter(providers, statusFilter, "")
	a.registry.Replace(providers, users)

	run := tasks
	if len(run) == 0 {
		run = a.cfg.Checker.Tasks
	}
	reports := a.engine.CheckAll(ctx, run, providers)

	ids := make([]string, 0, len(reports))
	for id := range reports {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if _, err := fmt.Fprintln(out, reports[id].String()); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) load(ctx context.Context) ([]provider.Provider, []provider.User, error) {
	if providersFile == "" {
		return a.directory.Fetch(ctx)
	}
	b, err := os.ReadFile(providersFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read providers: %w", err)
	}
	var providers []provider.Provider
	if err := json.Unmarshal(b, &providers); err != nil {
		return nil, nil, fmt.Errorf("decode providers %s: %w", providersFile, err)
	}
	return providers, nil, nil
}
