// Package storage provides blob storage backends for uploaded data files.
package storage

import (
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
)

// ErrNotFound is returned when a key has no stored object
var ErrNotFound = interfaces.ErrNotFound

var (
	_ interfaces.BlobStorage = &GCS{}
	_ interfaces.BlobStorage = &Memory{}
)
