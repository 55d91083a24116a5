package fisherman

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

var ErrBadProjectEvent = errors.New("project event without project_id")

// Project is the latest quota known for a project.
type Project struct {
	ID         string
	Blockchain string
	Quota      float64
}

// ProjectWatcher keeps the quota announced by the project events stream.
type ProjectWatcher struct {
	mu       sync.RWMutex
	projects map[string]Project
	log      *zap.Logger
}

func NewProjectWatcher(log *zap.Logger) *ProjectWatcher {
	return &ProjectWatcher{
		projects: map[string]Project{},
		log:      log.With(zap.String("component", "fisherman.projects")),
	}
}

// Handle applies one event. Events carry project_id, blockchain and quota.
func (w *ProjectWatcher) Handle(_ context.Context, _ []byte, ev *structpb.Struct) error {
	f := ev.GetFields()
	id := f["project_id"].GetStringValue()
	if id == "" {
		return ErrBadProjectEvent
	}
	p := Project{
		ID:         id,
		Blockchain: f["blockchain"].GetStringValue(),
		Quota:      f["quota"].GetNumberValue(),
	}

	w.mu.Lock()
	w.projects[id] = p
	w.mu.Unlock()

	projectQuota.WithLabelValues(p.ID, p.Blockchain).Set(p.Quota)
	w.log.Debug("project quota updated",
		zap.String("project_id", p.ID),
		zap.String("blockchain", p.Blockchain),
		zap.Float64("quota", p.Quota))
	return nil
}

func (w *ProjectWatcher) Project(id string) (Project, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.projects[id]
	return p, ok
}
