package check_component_config

import (
	"github.com/NordCoder/Fisherman/internal/obs"
	checkapi "github.com/NordCoder/Fisherman/internal/services/check-api"
	"github.com/NordCoder/Fisherman/internal/services/checker"
	"github.com/NordCoder/Fisherman/internal/services/registry"
)

type Checker struct {
	checker.CallConfig `mapstructure:",squash"`
	FlowFile           string   `mapstructure:"flow_file"`
	BaseEndpointFile   string   `mapstructure:"base_endpoint_file"`
	Parallel           int      `mapstructure:"parallel"`
	Tasks              []string `mapstructure:"tasks"`
}

type Config struct {
	Log         obs.LogConfig            `mapstructure:"log"`
	OTEL        obs.OTELConfig           `mapstructure:"otel"`
	HTTP        checker.HTTPConfig       `mapstructure:"http"`
	Checker     Checker                  `mapstructure:"checker"`
	Directory   registry.DirectoryConfig `mapstructure:"directory"`
	API         checkapi.Config          `mapstructure:"api"`
	Server      checkapi.ServerConfig    `mapstructure:"server"`
	MetricsAddr string                   `mapstructure:"metrics_addr"`
}
