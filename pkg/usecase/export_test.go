package usecase

import "github.com/secmon-lab/ifrs-modeler/pkg/domain/model/config"

// SeedConfiguration is exported for testing
var SeedConfiguration = seedConfiguration

// StorageKey is exported for testing
var StorageKey = storageKey

// RetryConcurrency is exported for testing
const RetryConcurrency = retryConcurrency

// Catalog type alias for testing
type Catalog = config.Catalog
