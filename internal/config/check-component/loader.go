package check_component_config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.app", "check-component")
	v.SetDefault("log.env", "dev")
	v.SetDefault("log.version", "dev")

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "check-component")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.follow_redirects", false)
	v.SetDefault("http.verify_tls", true)
	v.SetDefault("http.max_idle_conns", 100)

	v.SetDefault("checker.flow_file", "configs/check-flow.json")
	v.SetDefault("checker.base_endpoint_file", "configs/base-endpoint.json")
	v.SetDefault("checker.parallel", 20)
	v.SetDefault("checker.tasks", []string{"RoundTripTime"})
	v.SetDefault("checker.domain", "massbitroute.net")
	v.SetDefault("checker.scheme", "http")
	v.SetDefault("checker.call_timeout", "5s")
	v.SetDefault("checker.user_agent", "Fisherman/1.0")

	v.SetDefault("directory.nodes_url", "")
	v.SetDefault("directory.gateways_url", "")
	v.SetDefault("directory.users_url", "")
	v.SetDefault("directory.token", "")

	v.SetDefault("api.tasks", []string{"RoundTripTime"})
	v.SetDefault("api.domain", "massbitroute.net")
	v.SetDefault("api.scheme", "http")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.benchmark.duration", "15s")
	v.SetDefault("api.benchmark.rate", 50)
	v.SetDefault("api.benchmark.connections", 10)
	v.SetDefault("api.benchmark.timeout", "5s")
	v.SetDefault("api.benchmark.latency_threshold", "500ms")
	v.SetDefault("api.benchmark_thresholds.success_percent", 95)
	v.SetDefault("api.benchmark_thresholds.percent_low_latency", 80)

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("metrics_addr", ":8085")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
