package checkflow

import (
	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
)

// Catalog maps a task name to the flows defined for it.
type Catalog map[string][]Flow

type Flow struct {
	Blockchain string                 `json:"blockchain"`
	Component  provider.ComponentType `json:"component"`
	Steps      []Step                 `json:"check_steps"`
}

// Steps returns the first flow of task matching the chain and component type.
func (c Catalog) Steps(task, blockchain string, ct provider.ComponentType) ([]Step, bool) {
	flows, ok := c[task]
	if !ok {
		return nil, false
	}
	for _, f := range flows {
		if f.Blockchain == blockchain && f.Component == ct {
			return f.Steps, true
		}
	}
	return nil, false
}

type Step struct {
	Action     Action
	ReturnName string
	FailedCase FailedCase
}

type FailedCase struct {
	Critical bool
	Conclude report.Status
}

type ActionKind string

const (
	KindCall    ActionKind = "call"
	KindCompare ActionKind = "compare"
)

// Action is either *CallAction or *CompareAction.
type Action interface {
	Kind() ActionKind
	isAction()
}

type CallAction struct {
	IsBaseNode   bool              `json:"is_base_node"`
	RequestType  string            `json:"request_type"`
	Header       map[string]string `json:"header"`
	Body         string            `json:"body"`
	TimeOut      int               `json:"time_out"`
	ReturnFields map[string]string `json:"return_fields"`
}

func (*CallAction) Kind() ActionKind { return KindCall }
func (*CallAction) isAction()        {}

type CompareAction struct {
	Operator Operator `json:"operator_items"`
}

func (*CompareAction) Kind() ActionKind { return KindCompare }
func (*CompareAction) isAction()        {}

type OperatorType string

const (
	OpAnd OperatorType = "and"
	OpEq  OperatorType = "eq"
)

// Operator is a node of the comparison tree. And nodes carry Operands,
// eq nodes carry Items.
type Operator struct {
	Type     OperatorType
	Operands []Operator
	Items    []string
}

// BaseEndpoints lists trusted reference endpoints per blockchain in failover order.
type BaseEndpoints map[string][]BaseEndpoint

type BaseEndpoint struct {
	URL    string `json:"url"`
	APIKey string `json:"api_key,omitempty"`
}
