package config

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/service/storage"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for the uploaded file store
type Storage struct {
	backend string
	bucket  string
	prefix  string
}

func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Upload storage backend (gcs, memory, or none to disable uploads)",
			Value:       "gcs",
			Sources:     cli.EnvVars("IFRS_MODELER_STORAGE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket for uploaded files (required when using gcs backend)",
			Sources:     cli.EnvVars("IFRS_MODELER_GCS_BUCKET"),
			Destination: &s.bucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix inside the bucket",
			Sources:     cli.EnvVars("IFRS_MODELER_GCS_PREFIX"),
			Destination: &s.prefix,
		},
	}
}

func (s *Storage) Backend() string {
	return s.backend
}

// Configure returns the blob storage and a closer. Both are nil when uploads are disabled.
func (s *Storage) Configure(ctx context.Context) (interfaces.BlobStorage, io.Closer, error) {
	switch s.backend {
	case "gcs":
		if s.bucket == "" {
			return nil, nil, goerr.New("gcs-bucket is required when using gcs backend")
		}
		gcs, err := storage.NewGCS(ctx, s.bucket, s.prefix)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize cloud storage")
		}
		logging.Default().Info("Using Cloud Storage for uploads", "bucket", s.bucket, "prefix", s.prefix)
		return gcs, gcs, nil

	case "memory":
		logging.Default().Info("Using in-memory upload storage (development mode)")
		return storage.NewMemory(), nil, nil

	case "none", "":
		logging.Default().Warn("Upload storage disabled, file uploads will be rejected")
		return nil, nil, nil

	default:
		return nil, nil, goerr.New("invalid storage backend", goerr.V("backend", s.backend))
	}
}
