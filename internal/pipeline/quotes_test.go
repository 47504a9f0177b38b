package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rfpdesk/internal"
	"rfpdesk/internal/extraction"
	"rfpdesk/internal/storage"
	"rfpdesk/internal/util"
)

type fakeCompleter struct {
	reply string
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.reply, nil
}

type syncFixture struct {
	db     *storage.DB
	sentID int64
}

func newSyncFixture(t *testing.T) (*syncFixture, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	vendor, err := db.UpsertVendor(internal.VendorRecord{
		Name: "Acme Supply", Email: "sales@acme.test",
		OverallRating: 4, OnTimeDeliveryRate: 95,
	})
	if err != nil {
		t.Fatalf("upsert vendor: %v", err)
	}
	budget := decimal.RequireFromString("10000")
	template, err := db.CreateTemplate("Office Laptops", `{}`, &budget)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	sent, err := db.RegisterSend(template.ID, vendor.ID, util.StringPtr("m1"), internal.SentStatusSent, "2025-06-01T09:00:00Z")
	if err != nil {
		t.Fatalf("register send: %v", err)
	}

	return &syncFixture{db: db, sentID: sent.ID}, dir
}

func (fx *syncFixture) storeReply(t *testing.T, dir, messageID string, sentID *int64) internal.ReplyRow {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "sample_reply.eml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	rawPath := filepath.Join(dir, messageID+".eml")
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	reply, err := fx.db.UpsertReply(internal.ReplyRow{
		SentID:     sentID,
		Provider:   "imap",
		MessageID:  messageID,
		Subject:    "Re: RFP: Office Laptops",
		Sender:     "sales@acme.test",
		ReceivedAt: "2025-06-02T10:00:00Z",
		Hash:       "h-" + messageID,
		Status:     internal.ReplyStatusFetched,
		RawRef:     rawPath,
	})
	if err != nil {
		t.Fatalf("upsert reply: %v", err)
	}
	return reply
}

func TestProcessPendingQuotedReply(t *testing.T) {
	fx, dir := newSyncFixture(t)
	reply := fx.storeReply(t, dir, "r1", &fx.sentID)

	fake := &fakeCompleter{reply: `{"quotations":[],"primary_quotation":{"amount":"8000","currency":"USD"}}`}
	svc := NewQuotationSyncService(fx.db, extraction.NewExtractor(fake, time.Second))

	result, err := svc.ProcessPending(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Processed != 1 || result.Quoted != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.AffectedTemplates) != 1 {
		t.Fatalf("affected templates = %v", result.AffectedTemplates)
	}

	quote, err := fx.db.GetQuotationByReplyID(reply.ID)
	if err != nil {
		t.Fatalf("get quotation: %v", err)
	}
	if quote == nil {
		t.Fatal("quotation not stored")
	}
	if quote.QuotedAmount == nil || !quote.QuotedAmount.Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("amount = %v", quote.QuotedAmount)
	}
	if quote.Currency == nil || *quote.Currency != "USD" {
		t.Fatalf("currency = %v", quote.Currency)
	}
	if quote.AmountUSD == nil || !quote.AmountUSD.Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("amount usd = %v", quote.AmountUSD)
	}
	if quote.WarrantyYears == nil || *quote.WarrantyYears != 3 {
		t.Fatalf("warranty = %v", quote.WarrantyYears)
	}

	updated, err := fx.db.GetReplyByProviderMessageID("imap", "r1")
	if err != nil {
		t.Fatalf("get reply: %v", err)
	}
	if updated.Status != internal.ReplyStatusQuoted {
		t.Fatalf("status = %s", updated.Status)
	}
}

func TestProcessPendingNoQuoteKeepsRowForRetry(t *testing.T) {
	fx, dir := newSyncFixture(t)
	reply := fx.storeReply(t, dir, "r1", &fx.sentID)

	fake := &fakeCompleter{reply: `{"quotations":[],"primary_quotation":null}`}
	svc := NewQuotationSyncService(fx.db, extraction.NewExtractor(fake, time.Second))

	result, err := svc.ProcessPending(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.NoQuote != 1 {
		t.Fatalf("result = %+v", result)
	}

	quote, err := fx.db.GetQuotationByReplyID(reply.ID)
	if err != nil {
		t.Fatalf("get quotation: %v", err)
	}
	if quote == nil {
		t.Fatal("expected a quotation row even without an amount")
	}
	if quote.HasExtraction() {
		t.Fatal("expected no extraction recorded")
	}

	// A later pass may retry rows without an extraction.
	if err := fx.db.UpdateReplyStatus(reply.ID, internal.ReplyStatusFetched); err != nil {
		t.Fatalf("reset status: %v", err)
	}
	fake.reply = `{"quotations":[],"primary_quotation":{"amount":"9000","currency":"USD"}}`
	if _, err := svc.ProcessPending(context.Background(), 10, 0); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if fake.calls != 2 {
		t.Fatalf("calls = %d, want retry", fake.calls)
	}

	quote, err = fx.db.GetQuotationByReplyID(reply.ID)
	if err != nil {
		t.Fatalf("get quotation: %v", err)
	}
	if quote.QuotedAmount == nil || !quote.QuotedAmount.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("amount after retry = %v", quote.QuotedAmount)
	}
}

func TestProcessPendingExtractedReplyNotReextracted(t *testing.T) {
	fx, dir := newSyncFixture(t)
	reply := fx.storeReply(t, dir, "r1", &fx.sentID)

	fake := &fakeCompleter{reply: `{"quotations":[],"primary_quotation":{"amount":"8000","currency":"USD"}}`}
	svc := NewQuotationSyncService(fx.db, extraction.NewExtractor(fake, time.Second))

	if _, err := svc.ProcessPending(context.Background(), 10, 0); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("calls = %d", fake.calls)
	}

	// Same reply fetched again: status resets but the extraction holds.
	if err := fx.db.UpdateReplyStatus(reply.ID, internal.ReplyStatusFetched); err != nil {
		t.Fatalf("reset status: %v", err)
	}
	if _, err := svc.ProcessPending(context.Background(), 10, 0); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("calls = %d, extraction must not repeat", fake.calls)
	}
}

func TestProcessPendingSurvivesBadRawFile(t *testing.T) {
	fx, dir := newSyncFixture(t)

	// First reply points at a raw file that no longer exists.
	broken := fx.storeReply(t, dir, "broken", &fx.sentID)
	if err := os.Remove(broken.RawRef); err != nil {
		t.Fatalf("remove raw: %v", err)
	}
	good := fx.storeReply(t, dir, "good", &fx.sentID)

	fake := &fakeCompleter{reply: `{"quotations":[],"primary_quotation":{"amount":"8000","currency":"USD"}}`}
	svc := NewQuotationSyncService(fx.db, extraction.NewExtractor(fake, time.Second))

	result, err := svc.ProcessPending(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Processed != 2 || result.Skipped != 1 || result.Quoted != 1 {
		t.Fatalf("result = %+v", result)
	}

	updated, err := fx.db.GetReplyByProviderMessageID("imap", "broken")
	if err != nil {
		t.Fatalf("get broken reply: %v", err)
	}
	if updated.Status != internal.ReplyStatusSkipped {
		t.Fatalf("broken reply status = %s, want skipped", updated.Status)
	}

	quote, err := fx.db.GetQuotationByReplyID(good.ID)
	if err != nil {
		t.Fatalf("get quotation: %v", err)
	}
	if quote == nil || !quote.HasExtraction() {
		t.Fatal("good reply behind the broken one was not processed")
	}
}

func TestProcessPendingTemplateFilter(t *testing.T) {
	fx, dir := newSyncFixture(t)
	fx.storeReply(t, dir, "r1", &fx.sentID)

	// A second template with its own vendor, send, and pending reply.
	other, err := fx.db.UpsertVendor(internal.VendorRecord{
		Name: "Budget Traders", Email: "quotes@budget.test",
		OverallRating: 4, OnTimeDeliveryRate: 90,
	})
	if err != nil {
		t.Fatalf("upsert vendor: %v", err)
	}
	budget := decimal.RequireFromString("5000")
	otherTemplate, err := fx.db.CreateTemplate("Servers", `{}`, &budget)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	otherSent, err := fx.db.RegisterSend(otherTemplate.ID, other.ID, util.StringPtr("m2"), internal.SentStatusSent, "2025-06-01T09:00:00Z")
	if err != nil {
		t.Fatalf("register send: %v", err)
	}
	fx.storeReply(t, dir, "r2", &otherSent.ID)

	fake := &fakeCompleter{reply: `{"quotations":[],"primary_quotation":{"amount":"4000","currency":"USD"}}`}
	svc := NewQuotationSyncService(fx.db, extraction.NewExtractor(fake, time.Second))

	result, err := svc.ProcessPending(context.Background(), 10, otherTemplate.ID)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Processed != 1 || result.Quoted != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.AffectedTemplates) != 1 || result.AffectedTemplates[0] != otherTemplate.ID {
		t.Fatalf("affected = %v", result.AffectedTemplates)
	}

	// The other template's reply is untouched and still pending.
	untouched, err := fx.db.GetReplyByProviderMessageID("imap", "r1")
	if err != nil {
		t.Fatalf("get reply: %v", err)
	}
	if untouched.Status != internal.ReplyStatusFetched {
		t.Fatalf("filtered-out reply status = %s, want fetched", untouched.Status)
	}
}

func TestProcessPendingSkipsUnmatchedReply(t *testing.T) {
	fx, dir := newSyncFixture(t)
	fx.storeReply(t, dir, "stranger", nil)

	fake := &fakeCompleter{reply: `{}`}
	svc := NewQuotationSyncService(fx.db, extraction.NewExtractor(fake, time.Second))

	result, err := svc.ProcessPending(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}
	if fake.calls != 0 {
		t.Fatalf("calls = %d, unmatched replies must not reach extraction", fake.calls)
	}
	if len(result.AffectedTemplates) != 0 {
		t.Fatalf("affected = %v", result.AffectedTemplates)
	}
}
