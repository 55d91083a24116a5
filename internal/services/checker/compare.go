package checker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/NordCoder/Fisherman/internal/domain/checkflow"
	"github.com/NordCoder/Fisherman/internal/domain/report"
)

var (
	ErrMissingKey      = errors.New("missing key in step result")
	ErrUnknownOperator = errors.New("unknown operator")
)

// LiteralPrefix marks an eq item that is taken verbatim instead of looked up.
const LiteralPrefix = "'"

// Evaluate walks the operator tree against the accumulated step results.
func Evaluate(op checkflow.Operator, results StepResult) (bool, error) {
	switch op.Type {
	case checkflow.OpAnd:
		all := true
		for _, child := range op.Operands {
			ok, err := Evaluate(child, results)
			if err != nil {
				return false, err
			}
			all = all && ok
		}
		return all, nil

	case checkflow.OpEq:
		values := make([]string, 0, len(op.Items))
		for _, item := range op.Items {
			if lit, ok := strings.CutPrefix(item, LiteralPrefix); ok {
				values = append(values, lit)
				continue
			}
			v, ok := results[item]
			if !ok {
				return false, fmt.Errorf("%w: %s", ErrMissingKey, item)
			}
			values = append(values, v)
		}
		if len(values) < 2 {
			return false, nil
		}
		for _, v := range values[1:] {
			if v != values[0] {
				return false, nil
			}
		}
		return true, nil

	default:
		return false, fmt.Errorf("%w %q", ErrUnknownOperator, op.Type)
	}
}

func compare(action *checkflow.CompareAction, returnName string, results StepResult) (ActionResponse, error) {
	ok, err := Evaluate(action.Operator, results)
	if err != nil {
		return ActionResponse{}, err
	}
	conclude := report.Ok
	if !ok {
		conclude = report.Unknown
	}
	return ActionResponse{
		Success:    ok,
		Conclude:   conclude,
		ReturnName: returnName,
		// stored as {return_name}_{return_name} once merged into the step results
		Result:     map[string]string{returnName: strconv.FormatBool(ok)},
		Message:    fmt.Sprintf("compare %s: %t", action.Operator.Type, ok),
	}, nil
}
