package types

import "fmt"

// UploadStatus represents the validation state of an uploaded data file
type UploadStatus string

const (
	UploadStatusUploaded   UploadStatus = "UPLOADED"
	UploadStatusValidating UploadStatus = "VALIDATING"
	UploadStatusValidated  UploadStatus = "VALIDATED"
	UploadStatusFailed     UploadStatus = "FAILED"
)

// IsValid checks if the upload status is valid
func (s UploadStatus) IsValid() bool {
	switch s {
	case UploadStatusUploaded,
		UploadStatusValidating,
		UploadStatusValidated,
		UploadStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether validation has finished for the upload
func (s UploadStatus) IsTerminal() bool {
	return s == UploadStatusValidated || s == UploadStatusFailed
}

func (s UploadStatus) String() string {
	return string(s)
}

// ParseUploadStatus parses a string into an UploadStatus
func ParseUploadStatus(s string) (UploadStatus, error) {
	status := UploadStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid upload status: %s", s)
	}
	return status, nil
}
