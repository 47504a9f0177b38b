package connectors

import (
	"os"
	"path/filepath"
	"testing"

	"rfpdesk/internal"
	"rfpdesk/internal/storage"
	"rfpdesk/internal/util"
)

type fakeConnector struct {
	messages []internal.FetchedMailMessage
}

func (f *fakeConnector) FetchInbox(_ string, _ int) ([]internal.FetchedMailMessage, error) {
	return f.messages, nil
}

func TestFetchAndStore(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	vendor, err := db.UpsertVendor(internal.VendorRecord{
		Name: "Acme Supply", Email: "sales@acme.test",
		OverallRating: 4, OnTimeDeliveryRate: 95,
	})
	if err != nil {
		t.Fatalf("upsert vendor: %v", err)
	}
	template, err := db.CreateTemplate("Laptops", `{}`, nil)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	if _, err := db.RegisterSend(template.ID, vendor.ID, util.StringPtr("m1"), internal.SentStatusSent, "2025-06-01T09:00:00Z"); err != nil {
		t.Fatalf("register send: %v", err)
	}

	rawDir := filepath.Join(dir, "raw")
	connector := &fakeConnector{messages: []internal.FetchedMailMessage{
		{
			Provider:   "imap",
			MessageID:  "<reply-1@acme.test>",
			Subject:    "Re: RFP Laptops",
			From:       "Acme Sales <sales@acme.test>",
			ReceivedAt: "2025-06-01T15:00:00Z",
			Raw:        []byte("From: sales@acme.test\r\n\r\nWe quote 8000 USD."),
		},
		{
			Provider:   "imap",
			MessageID:  "<spam-1@elsewhere.test>",
			Subject:    "Unrelated offer",
			From:       "noreply@elsewhere.test",
			ReceivedAt: "2025-06-01T16:00:00Z",
			Raw:        []byte("From: noreply@elsewhere.test\r\n\r\nBuy now!"),
		},
	}}

	svc := NewFetchService(db, rawDir, connector)
	result, err := svc.FetchAndStore("INBOX", 20)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if result.Fetched != 2 || result.Stored != 2 {
		t.Fatalf("result = %+v", result)
	}
	if result.Matched != 1 {
		t.Fatalf("matched = %d, want 1", result.Matched)
	}

	reply, err := db.GetReplyByProviderMessageID("imap", "<reply-1@acme.test>")
	if err != nil {
		t.Fatalf("get reply: %v", err)
	}
	if reply == nil {
		t.Fatal("reply not stored")
	}
	if reply.SentID == nil {
		t.Fatal("reply not attached to sent rfp")
	}
	if reply.Status != internal.ReplyStatusFetched {
		t.Fatalf("status = %s", reply.Status)
	}
	raw, err := os.ReadFile(reply.RawRef)
	if err != nil {
		t.Fatalf("read raw eml: %v", err)
	}
	if string(raw) != "From: sales@acme.test\r\n\r\nWe quote 8000 USD." {
		t.Fatalf("raw content mismatch: %q", raw)
	}

	// Re-fetching the same inbox is a no-op at the row level.
	if _, err := svc.FetchAndStore("INBOX", 20); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	pending, err := db.ListRepliesByStatus(internal.ReplyStatusFetched, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
}

func TestStoreUnknownSenderKeepsNilSent(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	store := NewReplyStoreService(db, filepath.Join(dir, "raw"))
	reply, err := store.Store(internal.FetchedMailMessage{
		Provider:   "gmail",
		MessageID:  "<x@y>",
		From:       "stranger@nowhere.test",
		ReceivedAt: "2025-06-01T10:00:00Z",
		Raw:        []byte("hello"),
	})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if reply.SentID != nil {
		t.Fatal("expected nil sentId for unknown sender")
	}
}
