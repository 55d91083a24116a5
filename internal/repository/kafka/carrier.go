package kafka

import (
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
)

// headersCarrier adapts kafka message headers to the otel propagator.
// Set replaces an existing key so re-injection never duplicates traceparent.
type headersCarrier struct {
	headers *[]kafka.Header
}

var _ propagation.TextMapCarrier = headersCarrier{}

func carrierFor(headers *[]kafka.Header) headersCarrier {
	return headersCarrier{headers: headers}
}

func (c headersCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headersCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headersCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}
