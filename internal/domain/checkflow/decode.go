package checkflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/NordCoder/Fisherman/internal/domain/report"
)

var (
	ErrUnknownAction   = errors.New("unknown action type")
	ErrUnknownOperator = errors.New("unknown operator type")
)

type stepJSON struct {
	Action     json.RawMessage `json:"action"`
	ReturnName string          `json:"return_name"`
	FailedCase *failedCaseJSON `json:"failed_case"`
}

type failedCaseJSON struct {
	Critical bool           `json:"critical"`
	Conclude *report.Status `json:"conclude"`
}

func (s *Step) UnmarshalJSON(b []byte) error {
	var raw stepJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var head struct {
		ActionType ActionKind `json:"action_type"`
	}
	if err := json.Unmarshal(raw.Action, &head); err != nil {
		return fmt.Errorf("step %q action: %w", raw.ReturnName, err)
	}

	switch head.ActionType {
	case KindCall:
		var a CallAction
		if err := json.Unmarshal(raw.Action, &a); err != nil {
			return fmt.Errorf("step %q call action: %w", raw.ReturnName, err)
		}
		s.Action = &a
	case KindCompare:
		var a CompareAction
		if err := json.Unmarshal(raw.Action, &a); err != nil {
			return fmt.Errorf("step %q compare action: %w", raw.ReturnName, err)
		}
		s.Action = &a
	default:
		return fmt.Errorf("step %q: %w %q", raw.ReturnName, ErrUnknownAction, head.ActionType)
	}

	s.ReturnName = raw.ReturnName
	s.FailedCase = FailedCase{Conclude: report.Warning}
	if raw.FailedCase != nil {
		s.FailedCase.Critical = raw.FailedCase.Critical
		switch {
		case raw.FailedCase.Conclude != nil:
			s.FailedCase.Conclude = *raw.FailedCase.Conclude
		case raw.FailedCase.Critical:
			s.FailedCase.Conclude = report.Critical
		}
	}
	return nil
}

func (o *Operator) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type   OperatorType    `json:"operator_type"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	o.Type = raw.Type
	switch raw.Type {
	case OpAnd:
		if len(raw.Params) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw.Params, &o.Operands); err != nil {
			return fmt.Errorf("and params: %w", err)
		}
	case OpEq:
		if len(raw.Params) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw.Params, &o.Items); err != nil {
			return fmt.Errorf("eq params: %w", err)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownOperator, raw.Type)
	}
	return nil
}

// UnmarshalJSON accepts a bare URL string as well as the object form.
func (e *BaseEndpoint) UnmarshalJSON(b []byte) error {
	var url string
	if err := json.Unmarshal(b, &url); err == nil {
		*e = BaseEndpoint{URL: url}
		return nil
	}
	type plain BaseEndpoint
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = BaseEndpoint(p)
	return nil
}

func ParseCatalog(b []byte) (Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse check flows: %w", err)
	}
	return c, nil
}

func LoadCatalog(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read check flows: %w", err)
	}
	return ParseCatalog(b)
}

func ParseBaseEndpoints(b []byte) (BaseEndpoints, error) {
	var single map[string]json.RawMessage
	if err := json.Unmarshal(b, &single); err != nil {
		return nil, fmt.Errorf("parse base endpoints: %w", err)
	}
	out := make(BaseEndpoints, len(single))
	for chain, raw := range single {
		var list []BaseEndpoint
		if err := json.Unmarshal(raw, &list); err != nil {
			var one BaseEndpoint
			if err := json.Unmarshal(raw, &one); err != nil {
				return nil, fmt.Errorf("parse base endpoints for %s: %w", chain, err)
			}
			list = []BaseEndpoint{one}
		}
		out[chain] = list
	}
	return out, nil
}

func LoadBaseEndpoints(path string) (BaseEndpoints, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read base endpoints: %w", err)
	}
	return ParseBaseEndpoints(b)
}
