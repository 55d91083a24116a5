package fisherman_config

import (
	"time"

	"github.com/NordCoder/Fisherman/internal/obs"
	"github.com/NordCoder/Fisherman/internal/outbox"
	kafkax "github.com/NordCoder/Fisherman/internal/repository/kafka"
	pginfra "github.com/NordCoder/Fisherman/internal/repository/postgres"
	"github.com/NordCoder/Fisherman/internal/services/checker"
	"github.com/NordCoder/Fisherman/internal/services/registry"
)

type Checker struct {
	checker.CallConfig `mapstructure:",squash"`
	FlowFile           string `mapstructure:"flow_file"`
	BaseEndpointFile   string `mapstructure:"base_endpoint_file"`
	Parallel           int    `mapstructure:"parallel"`
}

type Kafka struct {
	Brokers         []string         `mapstructure:"brokers"`
	ReportsTopic    kafkax.TopicSpec `mapstructure:"reports_topic"`
	ProjectsTopic   kafkax.TopicSpec `mapstructure:"projects_topic"`
	ProjectsGroupID string           `mapstructure:"projects_group_id"`
}

type Ping struct {
	Parallel     int           `mapstructure:"parallel"`
	Samples      int           `mapstructure:"samples"`
	SuccessRatio float64       `mapstructure:"success_ratio"`
	Response     string        `mapstructure:"response"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type Fisherman struct {
	NumberOfSamples                int           `mapstructure:"number_of_samples"`
	SampleInterval                 time.Duration `mapstructure:"sample_interval"`
	ResponseTimeKey                string        `mapstructure:"response_time_key"`
	NodeSuccessPercentThreshold    uint32        `mapstructure:"node_success_percent_threshold"`
	GatewaySuccessPercentThreshold uint32        `mapstructure:"gateway_success_percent_threshold"`
	NodeResponseTimeThresholdMs    uint32        `mapstructure:"node_response_time_threshold_ms"`
	GatewayResponseTimeThresholdMs uint32        `mapstructure:"gateway_response_time_threshold_ms"`
	NodeFailedCycles               int           `mapstructure:"node_failed_cycles"`
	GatewayFailedCycles            int           `mapstructure:"gateway_failed_cycles"`
	HistoryMax                     int           `mapstructure:"history_max"`
	CheckTasks                     []string      `mapstructure:"check_tasks"`
	ProviderStatus                 string        `mapstructure:"provider_status"`
	Zone                           string        `mapstructure:"zone"`
	CheckLogicInterval             time.Duration `mapstructure:"check_logic_interval"`
	CheckPingInterval              time.Duration `mapstructure:"check_ping_interval"`
	RefreshInterval                time.Duration `mapstructure:"refresh_interval"`
	NoReport                       bool          `mapstructure:"no_report"`
	Ping                           Ping          `mapstructure:"ping"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Config struct {
	Log       obs.LogConfig            `mapstructure:"log"`
	OTEL      obs.OTELConfig           `mapstructure:"otel"`
	DB        pginfra.Config           `mapstructure:"db"`
	Kafka     Kafka                    `mapstructure:"kafka"`
	HTTP      checker.HTTPConfig       `mapstructure:"http"`
	Checker   Checker                  `mapstructure:"checker"`
	Directory registry.DirectoryConfig `mapstructure:"directory"`
	Fisherman Fisherman                `mapstructure:"fisherman"`
	Outbox    outbox.Config            `mapstructure:"outbox"`
	Server    Server                   `mapstructure:"server"`
}
