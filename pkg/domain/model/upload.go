package model

import (
	"bytes"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

// MaxUploadSize is the largest accepted data file, 50 MiB
const MaxUploadSize int64 = 50 * 1024 * 1024

// SniffLength is the number of leading bytes DetectSpreadsheet needs
const SniffLength = 8

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// UploadID is a time ordered UUID identifying a data upload
type UploadID string

// NewUploadID generates a new UUID v7 UploadID
func NewUploadID() UploadID {
	return UploadID(uuid.Must(uuid.NewV7()).String())
}

func (id UploadID) String() string {
	return string(id)
}

// DataUpload is a spreadsheet submitted as input data for a model definition
type DataUpload struct {
	ID                UploadID
	ModelDefinitionID ModelDefinitionID
	FileName          string
	Size              int64
	ContentType       string
	StorageKey        string
	Status            types.UploadStatus
	Error             string
	Attempts          int
	UploadedBy        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidateUploadFile checks size and extension before a file is accepted
func ValidateUploadFile(name string, size int64) error {
	if size > MaxUploadSize {
		return goerr.Wrap(ErrFileTooLarge, "file is too large",
			goerr.V(FileNameKey, name), goerr.V(FileSizeKey, size), goerr.V("max_size", MaxUploadSize))
	}
	if size <= 0 {
		return goerr.Wrap(ErrInvalidContent, "file is empty", goerr.V(FileNameKey, name))
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return nil
	default:
		return goerr.Wrap(ErrInvalidFileType, "only .xlsx and .xls files are accepted", goerr.V(FileNameKey, name))
	}
}

// DetectSpreadsheet checks that the leading bytes of a file match its extension:
// .xlsx is a zip container and .xls an OLE2 compound document.
func DetectSpreadsheet(name string, head []byte) error {
	var magic []byte
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		magic = zipMagic
	case ".xls":
		magic = oleMagic
	default:
		return goerr.Wrap(ErrInvalidFileType, "unsupported extension", goerr.V(FileNameKey, name))
	}
	if !bytes.HasPrefix(head, magic) {
		return goerr.Wrap(ErrInvalidContent, "file signature does not match extension", goerr.V(FileNameKey, name))
	}
	return nil
}
