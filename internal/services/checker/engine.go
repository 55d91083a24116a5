package checker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/NordCoder/Fisherman/internal/domain/checkflow"
	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
	"github.com/NordCoder/Fisherman/internal/obs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CallExecutor interface {
	Call(ctx context.Context, action *checkflow.CallAction, returnName string, p provider.Provider, results StepResult) (ActionResponse, error)
}

type Engine struct {
	catalog  checkflow.Catalog
	caller   CallExecutor
	users    provider.Users
	parallel int
	log      *zap.Logger
}

// NewEngine builds an engine over an immutable catalog. parallel bounds
// CheckAll fan-out; zero means one goroutine per provider.
func NewEngine(catalog checkflow.Catalog, caller CallExecutor, users provider.Users, parallel int, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		catalog:  catalog,
		caller:   caller,
		users:    users,
		parallel: parallel,
		log:      log.With(zap.String("component", "checker.engine")),
	}
}

// Steps concatenates the flows of tasks, in task order, that match p.
func (e *Engine) Steps(tasks []string, p provider.Provider) []checkflow.Step {
	var steps []checkflow.Step
	for _, task := range tasks {
		s, ok := e.catalog.Steps(task, p.Blockchain, p.ComponentType)
		if !ok {
			e.log.Debug("no check flow",
				zap.String("task", task),
				zap.String("blockchain", p.Blockchain),
				zap.Stringer("component", p.ComponentType))
			continue
		}
		steps = append(steps, s...)
	}
	return steps
}

// Check runs every task for p. It reports false when no flow matched.
func (e *Engine) Check(ctx context.Context, tasks []string, p provider.Provider) (report.CheckMkReport, bool) {
	steps := e.Steps(tasks, p)
	if len(steps) == 0 {
		return report.CheckMkReport{}, false
	}
	return e.Run(ctx, steps, p), true
}

// CheckAll checks providers concurrently and returns reports keyed by provider id.
// Providers without a matching flow are absent from the result.
func (e *Engine) CheckAll(ctx context.Context, tasks []string, providers []provider.Provider) map[string]report.CheckMkReport {
	var (
		mu  sync.Mutex
		out = make(map[string]report.CheckMkReport, len(providers))
	)
	g, gctx := errgroup.WithContext(ctx)
	if e.parallel > 0 {
		g.SetLimit(e.parallel)
	}
	for _, p := range providers {
		g.Go(func() error {
			r, ok := e.Check(gctx, tasks, p)
			if !ok {
				return nil
			}
			mu.Lock()
			out[p.ID] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Run executes steps in order and folds their outcomes into one report.
// Action errors never escape.
func (e *Engine) Run(ctx context.Context, steps []checkflow.Step, p provider.Provider) report.CheckMkReport {
	ctx, span := otel.Tracer("checker.engine").Start(ctx, "checker.flow")
	span.SetAttributes(
		attribute.String("provider.id", p.ID),
		attribute.String("provider.component", p.ComponentType.String()),
		attribute.String("provider.blockchain", p.Blockchain),
		attribute.Int("flow.steps", len(steps)),
	)
	defer span.End()
	log := obs.WithTrace(ctx, e.log, zap.String("provider_id", p.ID))

	var (
		results   = StepResult{}
		metric    = map[string]any{}
		status    = report.Ok
		details   []string
		succeeded int
		failed    int
	)

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			status = report.Worst(status, report.Unknown)
			failed++
			details = append(details, fmt.Sprintf("Aborted before step %s: %v", step.ReturnName, err))
			break
		}

		resp, err := e.execute(ctx, step, p, results)
		if err == nil {
			if v, ok := resp.Result[ResponseTimeKey]; ok {
				if ms, perr := strconv.ParseInt(v, 10, 64); perr == nil {
					metric[step.ReturnName+"_"+ResponseTimeKey] = ms
				}
			}
		}

		if err == nil && resp.Success {
			for k, v := range resp.Result {
				results[step.ReturnName+"_"+k] = v
			}
			succeeded++
			log.Debug("step succeeded", zap.String("step", step.ReturnName), zap.String("message", resp.Message))
			continue
		}

		failed++
		kind := "unknown"
		if step.Action != nil {
			kind = string(step.Action.Kind())
		}
		stepFailures.WithLabelValues(kind).Inc()
		// the latest failing step sets the severity
		status = step.FailedCase.Conclude

		msg := "Failed at step " + step.ReturnName
		switch {
		case err != nil:
			msg += ": " + err.Error()
		case resp.Message != "":
			msg += ": " + resp.Message
		}
		log.Debug("step failed", zap.String("step", step.ReturnName), zap.Bool("critical", step.FailedCase.Critical), zap.Error(err))

		if step.FailedCase.Critical {
			details = append(details, msg+" (critical, stopped)")
			break
		}
		details = append(details, msg)
	}

	details = append(details, fmt.Sprintf("Succeeded %d steps", succeeded))
	if e.users != nil {
		if u, ok := e.users.User(p.UserID); ok {
			details = append(details, u.Identity())
		}
	}

	flowRuns.WithLabelValues(p.ComponentType.String(), status.String()).Inc()
	span.SetAttributes(attribute.String("flow.status", status.String()), attribute.Int("flow.failed", failed))

	return report.CheckMkReport{
		Status:       status,
		ServiceName:  p.ServiceName(),
		Metric:       metric,
		StatusDetail: strings.Join(details, "; "),
		Success:      failed == 0,
	}
}

func (e *Engine) execute(ctx context.Context, step checkflow.Step, p provider.Provider, results StepResult) (resp ActionResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step %s panicked: %v", step.ReturnName, r)
		}
	}()

	switch a := step.Action.(type) {
	case *checkflow.CallAction:
		return e.caller.Call(ctx, a, step.ReturnName, p, results)
	case *checkflow.CompareAction:
		return compare(a, step.ReturnName, results)
	default:
		return ActionResponse{}, fmt.Errorf("%w %T", checkflow.ErrUnknownAction, step.Action)
	}
}
