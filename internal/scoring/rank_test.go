package scoring

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"rfpdesk/internal"
	"rfpdesk/internal/storage"
	"rfpdesk/internal/util"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedVendor(t *testing.T, db *storage.DB, v internal.VendorRecord) internal.VendorRecord {
	t.Helper()
	saved, err := db.UpsertVendor(v)
	if err != nil {
		t.Fatalf("upsert vendor %s: %v", v.Email, err)
	}
	return saved
}

func seedQuote(t *testing.T, db *storage.DB, sentID int64, amountUSD string, warrantyYears *float64, receivedAt string) {
	t.Helper()
	reply, err := db.UpsertReply(internal.ReplyRow{
		SentID:     &sentID,
		Provider:   "imap",
		MessageID:  "msg-" + receivedAt + "-" + amountUSD,
		Subject:    "Re: RFP",
		Sender:     "vendor@example.com",
		ReceivedAt: receivedAt,
		Hash:       "hash-" + amountUSD,
		Status:     internal.ReplyStatusQuoted,
		RawRef:     "raw/" + amountUSD + ".eml",
	})
	if err != nil {
		t.Fatalf("upsert reply: %v", err)
	}

	amount := decimal.RequireFromString(amountUSD)
	usd := util.StringPtr("USD")
	if _, err := db.InsertQuotation(internal.QuotationRow{
		SentID:        sentID,
		ReplyID:       reply.ID,
		Subject:       "Re: RFP",
		Body:          "quote " + amountUSD,
		QuotedAmount:  &amount,
		Currency:      usd,
		AmountUSD:     &amount,
		WarrantyYears: warrantyYears,
		ReceivedAt:    receivedAt,
	}); err != nil {
		t.Fatalf("insert quotation: %v", err)
	}
}

func TestComputeForTemplateEndToEnd(t *testing.T) {
	db := openTestDB(t)

	budget := decimal.RequireFromString("10000")
	template, err := db.CreateTemplate("Office Laptops", `{"items":["laptop x20"]}`, &budget)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	threeYears := 3.0

	// Final 60: price 20 (quote 8000 on budget 10000), perfect quality.
	perfect := seedVendor(t, db, internal.VendorRecord{
		Name: "Acme Supply", Email: "sales@acme.test",
		IsEmailVerified: true, IsPhoneVerified: true, IsBusinessVerified: true,
		OverallRating: 5, OnTimeDeliveryRate: 100,
	})
	// Final 75: price 50 (quote 5000), perfect quality.
	cheaper := seedVendor(t, db, internal.VendorRecord{
		Name: "Budget Traders", Email: "quotes@budget.test",
		IsEmailVerified: true, IsPhoneVerified: true, IsBusinessVerified: true,
		OverallRating: 5, OnTimeDeliveryRate: 100,
	})
	// Never quoted, weak profile. Ends up last.
	silent := seedVendor(t, db, internal.VendorRecord{
		Name: "Quiet Corp", Email: "info@quiet.test",
		OverallRating: 2.5, OnTimeDeliveryRate: 80,
	})

	sentAt := "2025-06-01T09:00:00Z"
	sentPerfect, err := db.RegisterSend(template.ID, perfect.ID, util.StringPtr("m1"), internal.SentStatusSent, sentAt)
	if err != nil {
		t.Fatalf("register send: %v", err)
	}
	sentCheaper, err := db.RegisterSend(template.ID, cheaper.ID, util.StringPtr("m2"), internal.SentStatusSent, sentAt)
	if err != nil {
		t.Fatalf("register send: %v", err)
	}
	if _, err := db.RegisterSend(template.ID, silent.ID, util.StringPtr("m3"), internal.SentStatusSent, sentAt); err != nil {
		t.Fatalf("register send: %v", err)
	}

	// Both replies land within 24h.
	seedQuote(t, db, sentPerfect.ID, "8000", &threeYears, "2025-06-01T19:00:00Z")
	seedQuote(t, db, sentCheaper.ID, "5000", &threeYears, "2025-06-01T20:00:00Z")

	ranker := NewRanker(db)
	records, err := ranker.ComputeForTemplate(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}

	byVendor := make(map[int64]internal.VendorScoreRecord)
	for _, rec := range records {
		byVendor[rec.VendorID] = rec
	}

	got := byVendor[perfect.ID]
	if !got.PriceScore.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("price score = %s, want 20", got.PriceScore)
	}
	if !got.VendorQualityScore.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("quality score = %s, want 100", got.VendorQualityScore)
	}
	if !got.FinalScore.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("final score = %s, want 60", got.FinalScore)
	}

	wantRanks := map[int64]int{cheaper.ID: 1, perfect.ID: 2, silent.ID: 3}
	for vendorID, want := range wantRanks {
		rec := byVendor[vendorID]
		if rec.Rank == nil || *rec.Rank != want {
			t.Fatalf("vendor %d rank = %v, want %d", vendorID, rec.Rank, want)
		}
	}

	// Persisted rows come back in rank order.
	stored, err := db.ListScoresByTemplate(template.ID)
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("stored = %d, want 3", len(stored))
	}
	if stored[0].VendorID != cheaper.ID || !stored[0].FinalScore.Equal(decimal.RequireFromString("75")) {
		t.Fatalf("first stored row = vendor %d final %s", stored[0].VendorID, stored[0].FinalScore)
	}
}

func TestComputeForTemplateIdempotent(t *testing.T) {
	db := openTestDB(t)

	budget := decimal.RequireFromString("10000")
	template, err := db.CreateTemplate("Servers", `{}`, &budget)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	vendor := seedVendor(t, db, internal.VendorRecord{
		Name: "Acme Supply", Email: "sales@acme.test",
		IsEmailVerified: true, OverallRating: 4, OnTimeDeliveryRate: 95,
	})
	sent, err := db.RegisterSend(template.ID, vendor.ID, util.StringPtr("m1"), internal.SentStatusSent, "2025-06-01T09:00:00Z")
	if err != nil {
		t.Fatalf("register send: %v", err)
	}
	seedQuote(t, db, sent.ID, "9000", nil, "2025-06-02T09:30:00Z")

	ranker := NewRanker(db)
	first, err := ranker.ComputeForTemplate(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	second, err := ranker.ComputeForTemplate(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("records = %d and %d, want 1 each", len(first), len(second))
	}
	if !first[0].FinalScore.Equal(second[0].FinalScore) {
		t.Fatalf("final changed across runs: %s vs %s", first[0].FinalScore, second[0].FinalScore)
	}
	if *first[0].Rank != *second[0].Rank {
		t.Fatalf("rank changed across runs: %d vs %d", *first[0].Rank, *second[0].Rank)
	}

	stored, err := db.ListScoresByTemplate(template.ID)
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored = %d, want exactly one row per sent rfp", len(stored))
	}
}

func TestComputeForTemplateRequiresPositiveBudget(t *testing.T) {
	db := openTestDB(t)
	ranker := NewRanker(db)

	cases := []struct {
		name   string
		budget *decimal.Decimal
	}{
		{name: "no budget"},
		{name: "zero budget", budget: decPtrFrom("0")},
		{name: "negative budget", budget: decPtrFrom("-500")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			template, err := db.CreateTemplate("Unfunded", `{}`, tc.budget)
			if err != nil {
				t.Fatalf("create template: %v", err)
			}
			if _, err := ranker.ComputeForTemplate(context.Background(), template.ID); err == nil {
				t.Fatal("expected error")
			} else if !strings.Contains(err.Error(), "budget") {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func decPtrFrom(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestParseTimeFormats(t *testing.T) {
	rfc := "2025-06-01T09:00:00Z"
	sqlite := "2025-06-01 09:00:00"
	garbage := "yesterday"

	if got := parseTime(&rfc); got == nil || got.Hour() != 9 {
		t.Fatalf("rfc3339 parse = %v", got)
	}
	if got := parseTime(&sqlite); got == nil || got.Hour() != 9 {
		t.Fatalf("sqlite format parse = %v", got)
	}
	if got := parseTime(&garbage); got != nil {
		t.Fatalf("garbage should not parse, got %v", got)
	}
	if got := parseTime(nil); got != nil {
		t.Fatalf("nil input should stay nil, got %v", got)
	}
}

// Response scoring must see the quotation's received timestamp: a reply
// after 30 hours drops the response component to 80 and the final score
// with it.
func TestComputeForTemplateUsesQuotationReceivedAt(t *testing.T) {
	db := openTestDB(t)

	budget := decimal.RequireFromString("10000")
	template, err := db.CreateTemplate("Monitors", `{}`, &budget)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	threeYears := 3.0
	vendor := seedVendor(t, db, internal.VendorRecord{
		Name: "Acme Supply", Email: "sales@acme.test",
		IsEmailVerified: true, IsPhoneVerified: true, IsBusinessVerified: true,
		OverallRating: 5, OnTimeDeliveryRate: 100,
	})
	sent, err := db.RegisterSend(template.ID, vendor.ID, util.StringPtr("m1"), internal.SentStatusSent, "2025-06-01T09:00:00Z")
	if err != nil {
		t.Fatalf("register send: %v", err)
	}
	seedQuote(t, db, sent.ID, "8000", &threeYears, "2025-06-02T15:00:00Z")

	records, err := NewRanker(db).ComputeForTemplate(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	if !records[0].ResponseScore.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("response score = %s, want 80", records[0].ResponseScore)
	}
	// quality = 100*.286 + 100*.357 + 100*.143 + 100*.143 + 80*.071 = 98.58
	if !records[0].VendorQualityScore.Equal(decimal.RequireFromString("98.58")) {
		t.Fatalf("quality score = %s, want 98.58", records[0].VendorQualityScore)
	}
}

func TestComputeForTemplateMissingTemplate(t *testing.T) {
	db := openTestDB(t)
	ranker := NewRanker(db)
	if _, err := ranker.ComputeForTemplate(context.Background(), 404); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
