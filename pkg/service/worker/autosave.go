package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
)

// DefaultAutoSaveDelay is the idle time after the last edit before a draft is persisted
const DefaultAutoSaveDelay = 15 * time.Minute

// SaveFunc persists the draft of one model definition
type SaveFunc func(ctx context.Context, id model.ModelDefinitionID) error

type pendingSave struct {
	timer *time.Timer
	gen   uint64
}

// AutoSaver persists drafts after a period of inactivity. Each edit pushes
// the deadline of its model out by the full delay.
//
// Architecture assumptions:
// - Single server instance, timers live in process memory
// - A restart loses pending timers but not the drafts' last saved versions
type AutoSaver struct {
	delay time.Duration
	save  SaveFunc

	mu      sync.Mutex
	pending map[model.ModelDefinitionID]pendingSave
	gen     uint64
	stopped bool
	running sync.WaitGroup
}

// NewAutoSaver creates an AutoSaver. A non-positive delay uses DefaultAutoSaveDelay.
func NewAutoSaver(delay time.Duration, save SaveFunc) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{
		delay:   delay,
		save:    save,
		pending: make(map[model.ModelDefinitionID]pendingSave),
	}
}

// Touch (re)arms the timer of id
func (a *AutoSaver) Touch(id model.ModelDefinitionID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}
	if cur, ok := a.pending[id]; ok {
		cur.timer.Stop()
	}

	a.gen++
	gen := a.gen
	a.pending[id] = pendingSave{
		timer: time.AfterFunc(a.delay, func() { a.fire(id, gen) }),
		gen:   gen,
	}
}

// Cancel disarms the timer of id, e.g. after an explicit save or discard
func (a *AutoSaver) Cancel(id model.ModelDefinitionID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cur, ok := a.pending[id]; ok {
		cur.timer.Stop()
		delete(a.pending, id)
	}
}

// Pending reports whether a save is scheduled for id
func (a *AutoSaver) Pending(id model.ModelDefinitionID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[id]
	return ok
}

// Stop clears all timers and waits for saves already running
func (a *AutoSaver) Stop() {
	logging.Default().Info("Auto-saver stopping")

	a.mu.Lock()
	a.stopped = true
	for id, p := range a.pending {
		p.timer.Stop()
		delete(a.pending, id)
	}
	a.mu.Unlock()

	a.running.Wait()
	logging.Default().Info("Auto-saver stopped")
}

func (a *AutoSaver) fire(id model.ModelDefinitionID, gen uint64) {
	a.mu.Lock()
	cur, ok := a.pending[id]
	// A newer Touch or a Cancel superseded this timer
	if a.stopped || !ok || cur.gen != gen {
		a.mu.Unlock()
		return
	}
	delete(a.pending, id)
	a.running.Add(1)
	a.mu.Unlock()

	defer a.running.Done()

	logger := logging.Default().With("model_id", id)
	ctx := logging.With(context.Background(), logger)

	if err := a.save(ctx, id); err != nil {
		// Log error and keep the draft; the next edit re-arms the timer
		logger.Error("Auto-save failed", "error", goerr.Unwrap(err))
		return
	}
	logger.Info("Draft auto-saved")
}
