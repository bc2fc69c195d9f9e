package usecase

import (
	"context"
	"fmt"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/async"
)

// eventPublisher sends change events in the background. A nil notifier drops them.
type eventPublisher struct {
	notifier   interfaces.Notifier
	dispatcher *async.Dispatcher
}

func newEventPublisher(notifier interfaces.Notifier, dispatcher *async.Dispatcher) *eventPublisher {
	if dispatcher == nil {
		dispatcher = async.NewDispatcher()
	}
	return &eventPublisher{
		notifier:   notifier,
		dispatcher: dispatcher,
	}
}

func (p *eventPublisher) publish(ctx context.Context, ev *model.ChangeEvent) {
	if p == nil || p.notifier == nil {
		return
	}
	p.dispatcher.Dispatch(ctx, "notify_"+string(ev.Kind), func(ctx context.Context) error {
		return p.notifier.Notify(ctx, ev)
	})
}

func issueSummary(issues []model.ValidationIssue) string {
	if len(issues) == 0 {
		return ""
	}
	if len(issues) == 1 {
		return issues[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", issues[0].Error(), len(issues)-1)
}
