package outbox

import (
	"context"
	"strconv"
	"time"
)

// Status mirrors the outbox.status column.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
)

// Kind selects the handler a message is dispatched to. Values are stored,
// never renumber them.
type Kind int

const (
	KindProviderReport Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindProviderReport:
		return "provider_report"
	default:
		return "kind_" + strconv.Itoa(int(k))
	}
}

// Message is one outbox row together with the trace context captured at enqueue.
type Message struct {
	IdempotencyKey string
	Kind           Kind
	Data           []byte
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Traceparent    string
	Tracestate     string
	Baggage        string
}

type Repository interface {
	// Enqueue joins the transaction carried by ctx when there is one.
	Enqueue(ctx context.Context, key string, kind Kind, data []byte) error
	// PickBatch claims up to batch CREATED rows plus IN_PROGRESS rows older
	// than inProgressTTL.
	PickBatch(ctx context.Context, batch int, inProgressTTL time.Duration) ([]Message, error)
	MarkSuccess(ctx context.Context, keys []string) error
}

type KindHandler func(ctx context.Context, data []byte) error

// GlobalHandler resolves the handler for a kind.
type GlobalHandler func(kind Kind) (KindHandler, error)
