package interfaces

import (
	"context"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
)

// Notifier delivers model definition change events to people watching them
type Notifier interface {
	Notify(ctx context.Context, ev *model.ChangeEvent) error
}
