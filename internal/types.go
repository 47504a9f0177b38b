package internal

import (
	"github.com/shopspring/decimal"
)

type VendorRecord struct {
	ID                 int64
	Name               string
	Email              string
	Phone              *string
	Company            *string
	IsEmailVerified    bool
	IsPhoneVerified    bool
	IsBusinessVerified bool
	OverallRating      float64
	OnTimeDeliveryRate float64
	CreatedAt          string
	UpdatedAt          string
}

type TemplateRecord struct {
	ID               int64
	Title            string
	RequirementsJSON string
	Subject          *string
	Body             *string
	BudgetUSD        *decimal.Decimal
	CreatedAt        string
	GeneratedAt      *string
}

type SentStatus string

const (
	SentStatusSent   SentStatus = "sent"
	SentStatusFailed SentStatus = "failed"
)

type SentRFPRecord struct {
	ID          int64
	TemplateID  int64
	VendorID    int64
	Status      SentStatus
	MessageID   *string
	SentAt      *string
	VendorName  string
	VendorEmail string
}

type ReplyStatus string

const (
	ReplyStatusFetched ReplyStatus = "fetched"
	ReplyStatusQuoted  ReplyStatus = "quoted"
	ReplyStatusNoQuote ReplyStatus = "no_quote"
	ReplyStatusSkipped ReplyStatus = "skipped"
)

type ReplyRow struct {
	ID         int64
	SentID     *int64
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     ReplyStatus
	RawRef     string
}

// QuotationCandidate is one monetary mention reported by the extraction
// capability for a single reply. Transient, not persisted.
type QuotationCandidate struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Context  string `json:"context"`
}

type QuotationRow struct {
	ID            int64
	SentID        int64
	ReplyID       int64
	Subject       string
	Body          string
	QuotedAmount  *decimal.Decimal
	Currency      *string
	AmountUSD     *decimal.Decimal
	WarrantyYears *float64
	ReceivedAt    string
	CreatedAt     string
}

// HasExtraction reports whether a primary quotation was already captured.
// Rows with both amount and currency set are never re-extracted.
func (q QuotationRow) HasExtraction() bool {
	return q.QuotedAmount != nil && q.Currency != nil
}

type VendorScoreRecord struct {
	ID                 int64
	SentID             int64
	TemplateID         int64
	VendorID           int64
	VendorName         string
	PriceScore         decimal.Decimal
	VerificationScore  decimal.Decimal
	RatingScore        decimal.Decimal
	DeliveryScore      decimal.Decimal
	WarrantyScore      decimal.Decimal
	ResponseScore      decimal.Decimal
	VendorQualityScore decimal.Decimal
	FinalScore         decimal.Decimal
	Rank               *int
	ComputedAt         string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
