package service

import (
	"storyloom.app/api/common/llm"
	"storyloom.app/api/core/config"
	"storyloom.app/api/internal/revision"
	"storyloom.app/api/internal/store"
)

type Services struct {
	stores   *store.Stores
	draftLLM llm.Client
	draftCfg config.LLMConfig
	manager  *RevisionManager
}

func NewServices(stores *store.Stores, revisionLLM, draftLLM llm.Client, events revision.EventSink, draftCfg config.LLMConfig) *Services {
	return &Services{
		stores:   stores,
		draftLLM: draftLLM,
		draftCfg: draftCfg,
		manager:  NewRevisionManager(stores.Chapters(), stores.Revisions(), revisionLLM, events),
	}
}

func (s *Services) Stories() StoryService {
	return NewStoryService(s.stores.Stories())
}

func (s *Services) Chapters() ChapterService {
	return NewChapterService(s.stores.Stories(), s.stores.Chapters(), s.stores.Revisions())
}

func (s *Services) Drafts() DraftService {
	return NewDraftService(s.stores.Stories(), s.stores.Chapters(), s.draftLLM, s.draftCfg)
}

// Revisions returns the shared session manager. Unlike the other accessors
// this is a singleton: sessions carry in-memory conversation state that must
// survive across requests.
func (s *Services) Revisions() *RevisionManager {
	return s.manager
}
