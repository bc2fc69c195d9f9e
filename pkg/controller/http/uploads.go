package http

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/safe"
)

const (
	// multipartOverhead covers boundaries and part headers around the file
	multipartOverhead = 1 << 20
	// multipartMemory is the part of a form kept in memory, the rest spills to disk
	multipartMemory = 8 << 20
)

// attachment builds a Content-Disposition value with the file name quoted or
// encoded as needed
func attachment(fileName string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return "attachment"
}

type uploadResponse struct {
	ID                model.UploadID          `json:"id"`
	ModelDefinitionID model.ModelDefinitionID `json:"model_definition_id"`
	FileName          string                  `json:"file_name"`
	Size              int64                   `json:"size"`
	ContentType       string                  `json:"content_type"`
	Status            types.UploadStatus      `json:"status"`
	Error             string                  `json:"error,omitempty"`
	Attempts          int                     `json:"attempts"`
	UploadedBy        string                  `json:"uploaded_by"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

func toUploadResponse(u *model.DataUpload) uploadResponse {
	return uploadResponse{
		ID:                u.ID,
		ModelDefinitionID: u.ModelDefinitionID,
		FileName:          u.FileName,
		Size:              u.Size,
		ContentType:       u.ContentType,
		Status:            u.Status,
		Error:             u.Error,
		Attempts:          u.Attempts,
		UploadedBy:        u.UploadedBy,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func toUploadResponses(uploads []*model.DataUpload) []uploadResponse {
	resp := make([]uploadResponse, 0, len(uploads))
	for _, u := range uploads {
		if u != nil {
			resp = append(resp, toUploadResponse(u))
		}
	}
	return resp
}

type uploadHandler struct {
	uc *usecase.UploadUseCase
}

func uploadID(r *http.Request) model.UploadID {
	return model.UploadID(chi.URLParam(r, "uploadID"))
}

// upload accepts a multipart form with the spreadsheet in the "file" field
func (h *uploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(r.Context(), w, goerr.Wrap(model.ErrFileTooLarge, "request body too large", goerr.V("limit", tooLarge.Limit)))
			return
		}
		handleError(r.Context(), w, goerr.Wrap(errBadRequest, "invalid multipart form", goerr.V("cause", err.Error())))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(r.Context(), w, goerr.Wrap(errBadRequest, "file field is required", goerr.V("cause", err.Error())))
		return
	}
	defer safe.Close(r.Context(), file)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	created, err := h.uc.Upload(r.Context(), modelID(r), header.Filename, header.Size, contentType, file)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusAccepted, toUploadResponse(created))
}

func (h *uploadHandler) listByModel(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.uc.ListByModel(r.Context(), modelID(r))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toUploadResponses(uploads))
}

func (h *uploadHandler) retryFailed(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.uc.RetryFailed(r.Context(), modelID(r))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toUploadResponses(uploads))
}

func (h *uploadHandler) get(w http.ResponseWriter, r *http.Request) {
	u, err := h.uc.Get(r.Context(), uploadID(r))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toUploadResponse(u))
}

func (h *uploadHandler) retry(w http.ResponseWriter, r *http.Request) {
	u, err := h.uc.RetryValidation(r.Context(), uploadID(r))
	if err != nil && u == nil {
		handleError(r.Context(), w, err)
		return
	}
	// A storage failure still yields a FAILED record the client can show
	writeJSON(r.Context(), w, http.StatusOK, toUploadResponse(u))
}

func (h *uploadHandler) download(w http.ResponseWriter, r *http.Request) {
	u, body, err := h.uc.Download(r.Context(), uploadID(r))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	defer safe.Close(r.Context(), body)

	w.Header().Set("Content-Type", u.ContentType)
	w.Header().Set("Content-Disposition", attachment(u.FileName))
	w.Header().Set("Content-Length", strconv.FormatInt(u.Size, 10))
	w.WriteHeader(http.StatusOK)
	safe.Copy(r.Context(), w, body)
}
