package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"rfpdesk/internal"
	"rfpdesk/internal/storage"
	"rfpdesk/internal/util"
)

// ReplyStoreService persists fetched vendor mail: raw bytes as an .eml
// file named by content hash, metadata as a reply row. Storing also
// resolves which sent RFP the reply answers, by sender address.
type ReplyStoreService struct {
	db         *storage.DB
	rawMailDir string
}

func NewReplyStoreService(db *storage.DB, rawMailDir string) *ReplyStoreService {
	return &ReplyStoreService{db: db, rawMailDir: rawMailDir}
}

func (s *ReplyStoreService) Store(msg internal.FetchedMailMessage) (internal.ReplyRow, error) {
	hashBytes := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawMailDir, 0o755); err != nil {
		return internal.ReplyRow{}, err
	}

	rawPath := filepath.Join(s.rawMailDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.ReplyRow{}, err
		}
	}

	sentID, err := s.resolveSent(msg.From)
	if err != nil {
		return internal.ReplyRow{}, err
	}

	return s.db.UpsertReply(internal.ReplyRow{
		SentID:     sentID,
		Provider:   msg.Provider,
		MessageID:  msg.MessageID,
		Subject:    msg.Subject,
		Sender:     msg.From,
		ReceivedAt: msg.ReceivedAt,
		Hash:       hash,
		Status:     internal.ReplyStatusFetched,
		RawRef:     rawPath,
	})
}

// resolveSent maps a From header to the vendor's most recent open RFP.
// Unknown senders store with a nil sentId and are skipped downstream.
func (s *ReplyStoreService) resolveSent(from string) (*int64, error) {
	addr := util.BareAddress(from)
	if addr == "" {
		return nil, nil
	}
	vendor, err := s.db.GetVendorByEmail(addr)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, nil
	}
	sent, err := s.db.FindOpenSentForVendor(vendor.ID)
	if err != nil {
		return nil, err
	}
	if sent == nil {
		return nil, nil
	}
	return &sent.ID, nil
}
