package fisherman

import (
	"sync"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
)

type Entry struct {
	Provider provider.Provider
	Report   report.ComponentReport
}

// Cycle is one monitoring cycle's aggregation keyed by provider id.
type Cycle map[string]Entry

// History is a fixed-capacity ring of cycles, oldest first.
type History struct {
	mu     sync.RWMutex
	cycles []Cycle
	max    int
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = 1
	}
	return &History{max: max, cycles: make([]Cycle, 0, max)}
}

// Push appends the newest cycle and evicts from the front beyond capacity.
func (h *History) Push(c Cycle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cycles = append(h.cycles, c)
	if over := len(h.cycles) - h.max; over > 0 {
		clear(h.cycles[:over])
		h.cycles = append(h.cycles[:0], h.cycles[over:]...)
	}
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.cycles)
}

// ConsecutiveFailures counts, from the newest cycle backwards, the cycles in
// which id is present and unhealthy.
func (h *History) ConsecutiveFailures(id string, healthy func(Entry) bool) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for i := len(h.cycles) - 1; i >= 0; i-- {
		e, ok := h.cycles[i][id]
		if !ok || healthy(e) {
			break
		}
		count++
	}
	return count
}
