package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/checkflow"
	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/obs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrNoBaseEndpoint   = errors.New("no working base endpoint")
	ErrBadStatus        = errors.New("unexpected http status")
	ErrPathNotFound     = errors.New("path not found in response")
	ErrUnsupportedValue = errors.New("unsupported value type")
)

const maxResponseBody = 4 << 20

type CallConfig struct {
	Domain         string        `mapstructure:"domain"`
	Scheme         string        `mapstructure:"scheme"`
	DefaultTimeout time.Duration `mapstructure:"call_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// Caller executes call actions against a provider or its chain's base endpoints.
type Caller struct {
	client *http.Client
	base   checkflow.BaseEndpoints
	cfg    CallConfig
	log    *zap.Logger
}

func NewCaller(client *http.Client, base checkflow.BaseEndpoints, cfg CallConfig, log *zap.Logger) *Caller {
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Caller{client: client, base: base, cfg: cfg, log: log.With(zap.String("component", "checker.call"))}
}

type target struct {
	mode   string
	url    string
	host   string
	apiKey string
}

func (c *Caller) Call(ctx context.Context, action *checkflow.CallAction, returnName string, p provider.Provider, results StepResult) (ActionResponse, error) {
	body, err := Render(action.Body, results)
	if err != nil {
		return ActionResponse{}, fmt.Errorf("render body: %w", err)
	}

	var (
		payload []byte
		elapsed time.Duration
	)
	if action.IsBaseNode {
		payload, elapsed, err = c.failover(ctx, action, body, p.Blockchain)
	} else {
		payload, elapsed, err = c.attempt(ctx, action, body, c.direct(p))
	}
	if err != nil {
		return ActionResponse{}, err
	}

	result, err := extractFields(payload, action.ReturnFields)
	if err != nil {
		return ActionResponse{}, err
	}
	result[ResponseTimeKey] = strconv.FormatInt(elapsed.Milliseconds(), 10)

	return ActionResponse{
		Success:    true,
		ReturnName: returnName,
		Result:     result,
		Message:    fmt.Sprintf("call %s: ok in %dms", returnName, elapsed.Milliseconds()),
	}, nil
}

func (c *Caller) direct(p provider.Provider) target {
	return target{mode: "direct", url: p.URL(c.cfg.Scheme), host: p.HostHeader(c.cfg.Domain), apiKey: p.Token}
}

// failover tries the chain's base endpoints strictly in order and stops at the
// first complete round trip.
func (c *Caller) failover(ctx context.Context, action *checkflow.CallAction, body, chain string) ([]byte, time.Duration, error) {
	endpoints := c.base[chain]
	var errs []error
	for i, ep := range endpoints {
		payload, elapsed, err := c.attempt(ctx, action, body, target{mode: "base", url: ep.URL, apiKey: ep.APIKey})
		if err == nil {
			if i > 0 {
				baseFailovers.WithLabelValues(chain).Add(float64(i))
			}
			return payload, elapsed, nil
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		obs.WithTrace(ctx, c.log).Debug("base endpoint failed",
			zap.String("chain", chain), zap.Int("index", i), zap.String("url", ep.URL), zap.Error(err))
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, 0, fmt.Errorf("%w for chain %s", ErrNoBaseEndpoint, chain)
	}
	return nil, 0, fmt.Errorf("%w for chain %s: %w", ErrNoBaseEndpoint, chain, errors.Join(errs...))
}

func (c *Caller) attempt(ctx context.Context, action *checkflow.CallAction, body string, t target) ([]byte, time.Duration, error) {
	timeout := c.cfg.DefaultTimeout
	if action.TimeOut > 0 {
		timeout = time.Duration(action.TimeOut) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := otel.Tracer("checker.call").Start(ctx, "checker.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("call.mode", t.mode),
			attribute.String("call.url", t.url),
		),
	)
	defer span.End()

	method := strings.ToUpper(action.RequestType)
	if method == "" {
		method = http.MethodPost
	}
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.url, reqBody)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	for k, v := range action.Header {
		req.Header.Set(k, v)
	}
	if t.apiKey != "" {
		req.Header.Set("X-Api-Key", t.apiKey)
	}
	if t.host != "" {
		req.Host = t.host
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		callDuration.WithLabelValues(t.mode, "error").Observe(time.Since(start).Seconds())
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("%s %s: %w", method, t.url, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	elapsed := time.Since(start)
	if err != nil {
		callDuration.WithLabelValues(t.mode, "error").Observe(elapsed.Seconds())
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		callDuration.WithLabelValues(t.mode, "status").Observe(elapsed.Seconds())
		span.SetStatus(codes.Error, resp.Status)
		return nil, 0, fmt.Errorf("%w %d from %s", ErrBadStatus, resp.StatusCode, t.url)
	}
	callDuration.WithLabelValues(t.mode, "ok").Observe(elapsed.Seconds())
	return payload, elapsed, nil
}

func extractFields(payload []byte, fields map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(fields)+1)
	if len(fields) == 0 {
		return out, nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	for name, path := range fields {
		v, err := walk(doc, path)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// walk follows a "/"-separated path through objects and arrays.
func walk(doc any, path string) (string, error) {
	cur := doc
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return "", fmt.Errorf("%w: %s", ErrPathNotFound, seg)
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return "", fmt.Errorf("%w: %s", ErrPathNotFound, seg)
			}
			cur = node[idx]
		default:
			return "", fmt.Errorf("%w: %s", ErrPathNotFound, seg)
		}
	}

	switch v := cur.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("%w %T at %s", ErrUnsupportedValue, cur, path)
	}
}
