package usecase

import (
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/config"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/async"
)

type UseCases struct {
	repo       interfaces.Repository
	catalog    *config.Catalog
	storage    interfaces.BlobStorage
	drafts     *DraftStore
	dispatcher *async.Dispatcher
	notifier   interfaces.Notifier
	Model      *ModelDefinitionUseCase
	Upload     *UploadUseCase
	Auth       AuthUseCaseInterface
}

type Option func(*UseCases)

func WithCatalog(catalog *config.Catalog) Option {
	return func(uc *UseCases) {
		uc.catalog = catalog
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func WithStorage(storage interfaces.BlobStorage) Option {
	return func(uc *UseCases) {
		uc.storage = storage
	}
}

// WithDraftStore shares a draft store, e.g. between tests and the server
func WithDraftStore(drafts *DraftStore) Option {
	return func(uc *UseCases) {
		uc.drafts = drafts
	}
}

func WithDispatcher(d *async.Dispatcher) Option {
	return func(uc *UseCases) {
		uc.dispatcher = d
	}
}

// WithNotifier publishes model definition change events
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.Auth == nil {
		uc.Auth = NewNoAuthnUseCase("", "", "")
	}

	if uc.dispatcher == nil {
		uc.dispatcher = async.NewDispatcher()
	}

	events := newEventPublisher(uc.notifier, uc.dispatcher)
	uc.Model = NewModelDefinitionUseCase(repo, uc.catalog, uc.drafts)
	uc.Model.events = events
	uc.Upload = NewUploadUseCase(repo, uc.storage, uc.dispatcher)
	uc.Upload.events = events

	return uc
}

// Wait blocks until background validation and notification jobs have finished
func (uc *UseCases) Wait() {
	uc.dispatcher.Wait()
}
