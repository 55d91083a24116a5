package checkflow

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
)

const catalogJSON = `{
  "CheckLogic": [{
    "blockchain": "eth",
    "component": "node",
    "check_steps": [
      {
        "action": {
          "action_type": "call",
          "is_base_node": false,
          "request_type": "POST",
          "header": {"content-type": "application/json"},
          "body": "{\"jsonrpc\":\"2.0\",\"method\":\"eth_blockNumber\",\"params\":[],\"id\":1}",
          "time_out": 5,
          "return_fields": {"node_block": "result"}
        },
        "return_name": "node_call",
        "failed_case": {"critical": true}
      },
      {
        "action": {
          "action_type": "compare",
          "operator_items": {
            "operator_type": "and",
            "params": [
              {"operator_type": "eq", "params": ["node_call_node_block", "base_call_base_block"]},
              {"operator_type": "eq", "params": ["'0x1", "node_call_node_block"]}
            ]
          }
        },
        "return_name": "compare_blocks",
        "failed_case": {"critical": false, "conclude": "warning"}
      },
      {
        "action": {"action_type": "compare", "operator_items": {"operator_type": "and"}},
        "return_name": "noop"
      }
    ]
  }]
}`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogJSON))
	require.NoError(t, err)

	steps, ok := c.Steps("CheckLogic", "eth", provider.Node)
	require.True(t, ok)
	require.Len(t, steps, 3)

	call, ok := steps[0].Action.(*CallAction)
	require.True(t, ok)
	assert.Equal(t, KindCall, call.Kind())
	assert.Equal(t, "POST", call.RequestType)
	assert.Equal(t, 5, call.TimeOut)
	assert.Equal(t, map[string]string{"node_block": "result"}, call.ReturnFields)
	assert.Equal(t, "node_call", steps[0].ReturnName)
	assert.Equal(t, FailedCase{Critical: true, Conclude: report.Critical}, steps[0].FailedCase)

	cmp, ok := steps[1].Action.(*CompareAction)
	require.True(t, ok)
	assert.Equal(t, OpAnd, cmp.Operator.Type)
	require.Len(t, cmp.Operator.Operands, 2)
	assert.Equal(t, OpEq, cmp.Operator.Operands[0].Type)
	assert.Equal(t, []string{"node_call_node_block", "base_call_base_block"}, cmp.Operator.Operands[0].Items)
	assert.Equal(t, []string{"'0x1", "node_call_node_block"}, cmp.Operator.Operands[1].Items)
	assert.Equal(t, report.Warning, steps[1].FailedCase.Conclude)

	// no failed_case concludes Warning and is not critical
	assert.Equal(t, FailedCase{Conclude: report.Warning}, steps[2].FailedCase)
	assert.Empty(t, steps[2].Action.(*CompareAction).Operator.Operands)
}

func TestCatalogSteps_NoMatch(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogJSON))
	require.NoError(t, err)

	_, ok := c.Steps("CheckLogic", "eth", provider.Gateway)
	assert.False(t, ok)
	_, ok = c.Steps("CheckLogic", "bsc", provider.Node)
	assert.False(t, ok)
	_, ok = c.Steps("Other", "eth", provider.Node)
	assert.False(t, ok)
}

func TestParseCatalog_UnknownAction(t *testing.T) {
	_, err := ParseCatalog([]byte(`{"t":[{"blockchain":"eth","component":"node","check_steps":[
		{"action":{"action_type":"sleep"},"return_name":"s"}]}]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestParseCatalog_UnknownOperator(t *testing.T) {
	_, err := ParseCatalog([]byte(`{"t":[{"blockchain":"eth","component":"node","check_steps":[
		{"action":{"action_type":"compare","operator_items":{"operator_type":"gt","params":["a","b"]}},"return_name":"c"}]}]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOperator))
}

func TestParseBaseEndpoints(t *testing.T) {
	be, err := ParseBaseEndpoints([]byte(`{
		"eth": "https://eth.example.org/rpc",
		"bsc": [{"url": "https://bsc-1.example.org", "api_key": "k"}, "https://bsc-2.example.org"],
		"sol": {"url": "https://sol.example.org"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, []BaseEndpoint{{URL: "https://eth.example.org/rpc"}}, be["eth"])
	assert.Equal(t, []BaseEndpoint{
		{URL: "https://bsc-1.example.org", APIKey: "k"},
		{URL: "https://bsc-2.example.org"},
	}, be["bsc"])
	assert.Equal(t, []BaseEndpoint{{URL: "https://sol.example.org"}}, be["sol"])
}

func TestParseBaseEndpoints_Invalid(t *testing.T) {
	_, err := ParseBaseEndpoints([]byte(`{"eth": 42}`))
	require.Error(t, err)
	_, err = ParseBaseEndpoints([]byte(`[]`))
	require.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, c["CheckLogic"], 1)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
