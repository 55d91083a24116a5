package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/NordCoder/Fisherman/internal/repository/kafka"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	brokers    []string
	topics     []string
	partitions int
	rf         int
	wait       time.Duration
)

var rootCmd = &cobra.Command{
	Use:          "kafka-init",
	Short:        "Creates the kafka topics used by the fisherman",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		l, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		specs := make([]kafka.TopicSpec, 0, len(topics))
		for _, t := range topics {
			if t = strings.TrimSpace(t); t != "" {
				specs = append(specs, kafka.TopicSpec{Name: t, NumPartitions: partitions, ReplicationFactor: rf, MaxWait: wait})
			}
		}
		if err := kafka.EnsureTopics(ctx, brokers, specs, l); err != nil {
			return err
		}
		l.Info("kafka-init ok", zap.Strings("topics", topics))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringSliceVar(&brokers, "brokers", []string{"kafka:9092"}, "kafka bootstrap brokers")
	rootCmd.Flags().StringSliceVar(&topics, "topics", []string{"fisherman.provider.reports", "fisherman.project.events"}, "topics to create")
	rootCmd.Flags().IntVar(&partitions, "partitions", 1, "partitions per topic")
	rootCmd.Flags().IntVar(&rf, "replication-factor", 1, "replication factor")
	rootCmd.Flags().DurationVar(&wait, "wait", 30*time.Second, "how long to wait for each topic to become ready")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
