package usecase

import (
	"sync"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
)

// DraftStore keeps the in-progress edit of each model definition until it is
// saved or discarded. Values are copied on the way in and out.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[model.ModelDefinitionID]*model.ModelDefinition
}

func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[model.ModelDefinitionID]*model.ModelDefinition),
	}
}

func (s *DraftStore) Get(id model.ModelDefinitionID) (*model.ModelDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.drafts[id]
	if !ok {
		return nil, false
	}
	return def.Copy(), true
}

func (s *DraftStore) Put(def *model.ModelDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[def.ID] = def.Copy()
}

// Delete drops the draft and reports whether one existed
func (s *DraftStore) Delete(id model.ModelDefinitionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.drafts[id]
	delete(s.drafts, id)
	return ok
}

func (s *DraftStore) Has(id model.ModelDefinitionID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.drafts[id]
	return ok
}
