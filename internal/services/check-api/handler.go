package check_api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
	"github.com/NordCoder/Fisherman/internal/obs"
	"github.com/NordCoder/Fisherman/internal/services/benchmark"
	"go.uber.org/zap"
)

type Checker interface {
	Check(ctx context.Context, tasks []string, p provider.Provider) (report.CheckMkReport, bool)
}

type Benchmarker interface {
	Run(ctx context.Context, t benchmark.Target, p benchmark.Params) (report.Benchmark, error)
}

type Config struct {
	Tasks      []string             `mapstructure:"tasks"`
	Domain     string               `mapstructure:"domain"`
	Scheme     string               `mapstructure:"scheme"`
	Timeout    time.Duration        `mapstructure:"timeout"`
	Benchmark  benchmark.Params     `mapstructure:"benchmark"`
	Thresholds benchmark.Thresholds `mapstructure:"benchmark_thresholds"`
}

const maxBody = 1 << 20

type Handlers struct {
	checker Checker
	bench   Benchmarker
	cfg     Config
	log     *zap.Logger
}

// NewHandlers wires the check endpoints. bench may be nil, in which case
// benchmark requests are answered with an Unknown benchmark part.
func NewHandlers(checker Checker, bench Benchmarker, cfg Config, log *zap.Logger) *Handlers {
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Handlers{checker: checker, bench: bench, cfg: cfg, log: log.With(zap.String("component", "checkapi.handlers"))}
}

// Ping handles GET /ping.
func (h *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "pong")
}

// GetStatus handles POST /get_status with one provider as the body.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	var p provider.Provider
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(&p); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid provider: %v", err))
		return
	}
	if p.ID == "" {
		h.writeError(w, http.StatusBadRequest, "invalid provider: id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()
	log := obs.WithTrace(ctx, h.log, zap.String("provider_id", p.ID), zap.Stringer("component", p.ComponentType))

	rep, ok := h.checker.Check(ctx, h.cfg.Tasks, p)
	if !ok {
		rep = report.CheckMkReport{
			Status:       report.Unknown,
			ServiceName:  p.ServiceName(),
			StatusDetail: fmt.Sprintf("no check flow for %s %s", p.Blockchain, p.ComponentType),
		}
	}
	if r.URL.Query().Get("benchmark") == "true" {
		rep = report.Combine(rep, h.benchmark(ctx, p))
	}
	checkStatus.WithLabelValues(rep.Status.String()).Inc()
	log.Debug("status checked", zap.Stringer("status", rep.Status), zap.Bool("success", rep.Success))

	if strings.EqualFold(r.URL.Query().Get("format"), "text") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, rep.String()+"\n")
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) benchmark(ctx context.Context, p provider.Provider) report.CheckMkReport {
	if h.bench == nil {
		return report.CheckMkReport{Status: report.Unknown, ServiceName: p.ServiceName(), StatusDetail: "benchmark disabled"}
	}
	b, err := h.bench.Run(ctx, benchmark.Target{
		URL:   p.URL(h.cfg.Scheme),
		Host:  p.HostHeader(h.cfg.Domain),
		Token: p.Token,
	}, h.cfg.Benchmark)
	if err != nil {
		h.log.Warn("benchmark failed", zap.String("provider_id", p.ID), zap.Error(err))
		return report.CheckMkReport{Status: report.Unknown, ServiceName: p.ServiceName(), StatusDetail: "benchmark failed: " + err.Error()}
	}
	return benchmark.ToCheckMk(b, p.ServiceName(), h.cfg.Thresholds)
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handlers) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, errorBody{Error: msg})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response", zap.Error(err))
	}
}
