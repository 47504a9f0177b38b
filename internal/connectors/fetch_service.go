package connectors

import (
	"rfpdesk/internal/storage"
)

type FetchService struct {
	db        *storage.DB
	connector MailConnector
	store     *ReplyStoreService
}

type FetchResult struct {
	Fetched int
	Stored  int
	Matched int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		store:     NewReplyStoreService(db, rawMailDir),
	}
}

func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		reply, err := s.store.Store(msg)
		if err != nil {
			return FetchResult{}, err
		}
		result.Stored++
		if reply.SentID != nil {
			result.Matched++
		}
	}

	return result, nil
}
