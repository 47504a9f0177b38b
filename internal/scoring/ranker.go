package scoring

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"rfpdesk/internal"
	"rfpdesk/internal/storage"
)

// Ranker scores every dispatched RFP of a template and assigns dense
// ranks by final score. Recomputation is idempotent: the same inputs
// always produce the same scores and ranks.
type Ranker struct {
	db *storage.DB

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewRanker(db *storage.DB) *Ranker {
	return &Ranker{db: db, locks: make(map[int64]*sync.Mutex)}
}

func (r *Ranker) templateLock(templateID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[templateID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[templateID] = lock
	}
	return lock
}

// ComputeForTemplate recomputes all vendor scores for one template and
// persists them with ranks in a single transaction. Concurrent calls for
// the same template are serialized.
func (r *Ranker) ComputeForTemplate(ctx context.Context, templateID int64) ([]internal.VendorScoreRecord, error) {
	lock := r.templateLock(templateID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	template, err := r.db.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("template %d not found", templateID)
	}
	if template.BudgetUSD == nil || !template.BudgetUSD.IsPositive() {
		return nil, fmt.Errorf("template %d has no positive budget configured", templateID)
	}

	sent, err := r.db.ListSentByTemplate(templateID, internal.SentStatusSent)
	if err != nil {
		return nil, err
	}

	records := make([]internal.VendorScoreRecord, 0, len(sent))
	for _, s := range sent {
		rec, err := r.scoreOne(template, s)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	// Stable sort keeps the insertion order of ListSentByTemplate for
	// equal finals, so ties rank earlier sends first.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].FinalScore.GreaterThan(records[j].FinalScore)
	})
	for i := range records {
		rank := i + 1
		records[i].Rank = &rank
	}

	if err := r.db.ReplaceTemplateScores(templateID, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Ranker) scoreOne(template *internal.TemplateRecord, sent internal.SentRFPRecord) (internal.VendorScoreRecord, error) {
	vendor, err := r.db.GetVendorByID(sent.VendorID)
	if err != nil {
		return internal.VendorScoreRecord{}, err
	}
	if vendor == nil {
		return internal.VendorScoreRecord{}, fmt.Errorf("vendor %d not found for sent rfp %d", sent.VendorID, sent.ID)
	}

	quote, err := r.db.PrimaryQuotationForSent(sent.ID)
	if err != nil {
		return internal.VendorScoreRecord{}, err
	}

	var quoted *decimal.Decimal
	var warranty *float64
	var receivedAt *time.Time
	if quote != nil {
		quoted = quote.AmountUSD
		if quoted == nil {
			quoted = quote.QuotedAmount
		}
		warranty = quote.WarrantyYears
		receivedAt = parseTime(&quote.ReceivedAt)
	}

	price := PriceScore(quoted, template.BudgetUSD)
	verification := VerificationScore(*vendor)
	rating := RatingScore(vendor.OverallRating)
	delivery := DeliveryScore(vendor.OnTimeDeliveryRate)
	warrantyScore := WarrantyScore(warranty)
	response := ResponseScore(parseTime(sent.SentAt), receivedAt)
	quality := QualityScore(verification, rating, delivery, warrantyScore, response)

	return internal.VendorScoreRecord{
		SentID:             sent.ID,
		TemplateID:         sent.TemplateID,
		VendorID:           sent.VendorID,
		VendorName:         sent.VendorName,
		PriceScore:         price,
		VerificationScore:  verification,
		RatingScore:        rating,
		DeliveryScore:      delivery,
		WarrantyScore:      warrantyScore,
		ResponseScore:      response,
		VendorQualityScore: quality,
		FinalScore:         FinalScore(price, quality),
	}, nil
}

func parseTime(v *string) *time.Time {
	if v == nil {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, *v); err == nil {
			return &parsed
		}
	}
	return nil
}
