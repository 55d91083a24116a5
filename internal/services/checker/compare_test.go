package checker

import (
	"testing"

	"github.com/NordCoder/Fisherman/internal/domain/checkflow"
	"github.com/NordCoder/Fisherman/internal/domain/report"
	"github.com/stretchr/testify/require"
)

func eq(items ...string) checkflow.Operator {
	return checkflow.Operator{Type: checkflow.OpEq, Items: items}
}

func and(ops ...checkflow.Operator) checkflow.Operator {
	return checkflow.Operator{Type: checkflow.OpAnd, Operands: ops}
}

func TestEvaluate_Eq(t *testing.T) {
	ok, err := Evaluate(eq("v1", "v2"), StepResult{"v1": "x", "v2": "x"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Evaluate(eq("v1", "v2"), StepResult{"v1": "x", "v2": "y"})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = Evaluate(eq("v1"), StepResult{"v1": "x"})
	require.NoError(t, err)
	require.False(t, ok, "a single value never compares equal")

	ok, err = Evaluate(eq("node_chain", "'0x1"), StepResult{"node_chain": "0x1"})
	require.NoError(t, err)
	require.True(t, ok)

	_, err = Evaluate(eq("v1", "absent"), StepResult{"v1": "x"})
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestEvaluate_And(t *testing.T) {
	res := StepResult{"a": "1", "b": "1", "c": "2"}

	ok, err := Evaluate(and(eq("a", "b"), eq("a", "'1")), res)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Evaluate(and(eq("a", "b"), eq("a", "c")), res)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = Evaluate(and(), res)
	require.NoError(t, err)
	require.True(t, ok, "empty conjunction is vacuously true")

	_, err = Evaluate(and(eq("a", "b"), eq("zz", "a")), res)
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestEvaluate_UnknownOperator(t *testing.T) {
	_, err := Evaluate(checkflow.Operator{Type: "or"}, StepResult{})
	require.ErrorIs(t, err, ErrUnknownOperator)
}

func TestCompareAction(t *testing.T) {
	resp, err := compare(&checkflow.CompareAction{Operator: eq("a", "b")}, "same", StepResult{"a": "1", "b": "1"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, report.Ok, resp.Conclude)
	require.Equal(t, map[string]string{"same": "true"}, resp.Result)

	resp, err = compare(&checkflow.CompareAction{Operator: eq("a", "b")}, "same", StepResult{"a": "1", "b": "2"})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, report.Unknown, resp.Conclude)
}

func TestEngine_CompareOutcomeVisibleToLaterSteps(t *testing.T) {
	e := NewEngine(nil, &fakeCaller{}, nil, 0, nil)
	eqStep := func(name string, items ...string) checkflow.Step {
		return checkflow.Step{
			Action:     &checkflow.CompareAction{Operator: eq(items...)},
			ReturnName: name,
			FailedCase: checkflow.FailedCase{Critical: true, Conclude: report.Critical},
		}
	}

	r := e.Run(t.Context(), []checkflow.Step{
		eqStep("same", "'1", "'1"),
		eqStep("check", "same_same", "'true"),
	}, testNode)
	require.Equal(t, report.Ok, r.Status)
	require.True(t, r.Success)
	require.Contains(t, r.StatusDetail, "Succeeded 2 steps")
}
