package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/errutil"
)

// errBadRequest marks malformed input detected by the controller itself
var errBadRequest = errors.New("bad request")

var statusMap = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		usecase.ErrModelNotFound, usecase.ErrUploadNotFound, model.ErrOverrideNotFound, interfaces.ErrNotFound,
	}},
	{http.StatusConflict, []error{
		usecase.ErrModelLocked, interfaces.ErrVersionConflict, usecase.ErrUploadInProgress,
	}},
	{http.StatusRequestEntityTooLarge, []error{model.ErrFileTooLarge}},
	{http.StatusUnprocessableEntity, []error{usecase.ErrValidationFailed}},
	{http.StatusUnauthorized, []error{usecase.ErrUnauthenticated, usecase.ErrInvalidToken}},
	{http.StatusServiceUnavailable, []error{usecase.ErrStorageNotConfigured}},
	{http.StatusBadRequest, []error{
		errBadRequest,
		model.ErrInvalidPath, model.ErrInvalidOverride,
		model.ErrInvalidFileType, model.ErrInvalidContent,
		model.ErrMissingName, model.ErrInvalidProduct, model.ErrInvalidMeasurement,
		model.ErrUnknownField, model.ErrUnknownLOB, model.ErrDuplicateScope, model.ErrDuplicateEntryID,
	}},
}

// statusOf maps sentinel errors of the lower layers to an HTTP status
func statusOf(err error) int {
	for _, m := range statusMap {
		for _, target := range m.errs {
			if errors.Is(err, target) {
				return m.status
			}
		}
	}
	return http.StatusInternalServerError
}

func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	errutil.HandleHTTP(ctx, w, err, statusOf(err))
}
