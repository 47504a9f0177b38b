package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"rfpdesk/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS vendors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT,
  company TEXT,
  isEmailVerified INTEGER NOT NULL DEFAULT 0,
  isPhoneVerified INTEGER NOT NULL DEFAULT 0,
  isBusinessVerified INTEGER NOT NULL DEFAULT 0,
  overallRating REAL NOT NULL DEFAULT 3.0,
  onTimeDeliveryRate REAL NOT NULL DEFAULT 100.0,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS templates (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  requirementsJson TEXT NOT NULL DEFAULT '{}',
  subject TEXT,
  body TEXT,
  budgetUsd TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  generatedAt TEXT
);

CREATE TABLE IF NOT EXISTS sent_rfps (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  templateId INTEGER NOT NULL,
  vendorId INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'sent',
  messageId TEXT,
  sentAt TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(templateId, vendorId),
  FOREIGN KEY(templateId) REFERENCES templates(id),
  FOREIGN KEY(vendorId) REFERENCES vendors(id)
);
CREATE INDEX IF NOT EXISTS idx_sent_rfps_vendor ON sent_rfps(vendorId);

CREATE TABLE IF NOT EXISTS replies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sentId INTEGER,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId),
  FOREIGN KEY(sentId) REFERENCES sent_rfps(id)
);

CREATE TABLE IF NOT EXISTS quotations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sentId INTEGER NOT NULL,
  replyId INTEGER NOT NULL UNIQUE,
  subject TEXT,
  body TEXT,
  quotedAmount TEXT,
  currency TEXT,
  amountUsd TEXT,
  warrantyYears REAL,
  receivedAt TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(sentId) REFERENCES sent_rfps(id),
  FOREIGN KEY(replyId) REFERENCES replies(id)
);
CREATE INDEX IF NOT EXISTS idx_quotations_sent ON quotations(sentId);

CREATE TABLE IF NOT EXISTS vendor_scores (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sentId INTEGER NOT NULL UNIQUE,
  templateId INTEGER NOT NULL,
  vendorId INTEGER NOT NULL,
  priceScore TEXT NOT NULL,
  verificationScore TEXT NOT NULL,
  ratingScore TEXT NOT NULL,
  deliveryScore TEXT NOT NULL,
  warrantyScore TEXT NOT NULL,
  responseScore TEXT NOT NULL,
  vendorQualityScore TEXT NOT NULL,
  finalScore TEXT NOT NULL,
  rank INTEGER,
  computedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(sentId) REFERENCES sent_rfps(id)
);
CREATE INDEX IF NOT EXISTS idx_vendor_scores_template ON vendor_scores(templateId);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertVendor(v internal.VendorRecord) (internal.VendorRecord, error) {
	_, err := d.conn.Exec(`
INSERT INTO vendors (name, email, phone, company, isEmailVerified, isPhoneVerified, isBusinessVerified, overallRating, onTimeDeliveryRate)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(email) DO UPDATE SET
  name=excluded.name,
  phone=excluded.phone,
  company=excluded.company,
  isEmailVerified=excluded.isEmailVerified,
  isPhoneVerified=excluded.isPhoneVerified,
  isBusinessVerified=excluded.isBusinessVerified,
  overallRating=excluded.overallRating,
  onTimeDeliveryRate=excluded.onTimeDeliveryRate,
  updatedAt=CURRENT_TIMESTAMP
`, v.Name, v.Email, v.Phone, v.Company, boolToInt(v.IsEmailVerified), boolToInt(v.IsPhoneVerified), boolToInt(v.IsBusinessVerified), v.OverallRating, v.OnTimeDeliveryRate)
	if err != nil {
		return internal.VendorRecord{}, err
	}

	row, err := d.GetVendorByEmail(v.Email)
	if err != nil {
		return internal.VendorRecord{}, err
	}
	if row == nil {
		return internal.VendorRecord{}, errors.New("failed to upsert vendor")
	}
	return *row, nil
}

const vendorColumns = `id, name, email, phone, company, isEmailVerified, isPhoneVerified, isBusinessVerified, overallRating, onTimeDeliveryRate, createdAt, updatedAt`

func (d *DB) GetVendorByEmail(email string) (*internal.VendorRecord, error) {
	return d.scanVendor(d.conn.QueryRow(`SELECT `+vendorColumns+` FROM vendors WHERE email = ?`, email))
}

func (d *DB) GetVendorByID(id int64) (*internal.VendorRecord, error) {
	return d.scanVendor(d.conn.QueryRow(`SELECT `+vendorColumns+` FROM vendors WHERE id = ?`, id))
}

func (d *DB) scanVendor(row *sql.Row) (*internal.VendorRecord, error) {
	var v internal.VendorRecord
	var emailV, phoneV, businessV int
	err := row.Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.Company, &emailV, &phoneV, &businessV, &v.OverallRating, &v.OnTimeDeliveryRate, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.IsEmailVerified = emailV != 0
	v.IsPhoneVerified = phoneV != 0
	v.IsBusinessVerified = businessV != 0
	return &v, nil
}

func (d *DB) ListVendors() ([]internal.VendorRecord, error) {
	rows, err := d.conn.Query(`SELECT ` + vendorColumns + ` FROM vendors ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.VendorRecord
	for rows.Next() {
		var v internal.VendorRecord
		var emailV, phoneV, businessV int
		if err := rows.Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.Company, &emailV, &phoneV, &businessV, &v.OverallRating, &v.OnTimeDeliveryRate, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		v.IsEmailVerified = emailV != 0
		v.IsPhoneVerified = phoneV != 0
		v.IsBusinessVerified = businessV != 0
		out = append(out, v)
	}
	return out, rows.Err()
}

func (d *DB) CreateTemplate(title, requirementsJSON string, budget *decimal.Decimal) (internal.TemplateRecord, error) {
	result, err := d.conn.Exec(`
INSERT INTO templates (title, requirementsJson, budgetUsd) VALUES (?, ?, ?)
`, title, requirementsJSON, decimalPtrToString(budget))
	if err != nil {
		return internal.TemplateRecord{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return internal.TemplateRecord{}, err
	}
	row, err := d.GetTemplate(id)
	if err != nil {
		return internal.TemplateRecord{}, err
	}
	return *row, nil
}

func (d *DB) GetTemplate(id int64) (*internal.TemplateRecord, error) {
	var t internal.TemplateRecord
	var budget *string
	err := d.conn.QueryRow(`
SELECT id, title, requirementsJson, subject, body, budgetUsd, createdAt, generatedAt
FROM templates WHERE id = ?`, id).Scan(&t.ID, &t.Title, &t.RequirementsJSON, &t.Subject, &t.Body, &budget, &t.CreatedAt, &t.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.BudgetUSD, err = parseDecimalPtr(budget)
	if err != nil {
		return nil, fmt.Errorf("template %d: %w", id, err)
	}
	return &t, nil
}

func (d *DB) SetTemplateEmail(id int64, subject, body string) error {
	_, err := d.conn.Exec(`
UPDATE templates SET subject = ?, body = ?, generatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, subject, body, id)
	return err
}

func (d *DB) RegisterSend(templateID, vendorID int64, messageID *string, status internal.SentStatus, sentAt string) (internal.SentRFPRecord, error) {
	_, err := d.conn.Exec(`
INSERT INTO sent_rfps (templateId, vendorId, status, messageId, sentAt)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(templateId, vendorId) DO UPDATE SET
  status=excluded.status,
  messageId=excluded.messageId,
  sentAt=excluded.sentAt
`, templateID, vendorID, string(status), messageID, sentAt)
	if err != nil {
		return internal.SentRFPRecord{}, err
	}

	row, err := d.GetSentByTemplateVendor(templateID, vendorID)
	if err != nil {
		return internal.SentRFPRecord{}, err
	}
	if row == nil {
		return internal.SentRFPRecord{}, errors.New("failed to upsert sent rfp")
	}
	return *row, nil
}

const sentColumns = `s.id, s.templateId, s.vendorId, s.status, s.messageId, s.sentAt, v.name, v.email`

func (d *DB) GetSentByTemplateVendor(templateID, vendorID int64) (*internal.SentRFPRecord, error) {
	return d.scanSent(d.conn.QueryRow(`
SELECT `+sentColumns+` FROM sent_rfps s JOIN vendors v ON v.id = s.vendorId
WHERE s.templateId = ? AND s.vendorId = ?`, templateID, vendorID))
}

func (d *DB) GetSentByID(id int64) (*internal.SentRFPRecord, error) {
	return d.scanSent(d.conn.QueryRow(`
SELECT `+sentColumns+` FROM sent_rfps s JOIN vendors v ON v.id = s.vendorId
WHERE s.id = ?`, id))
}

func (d *DB) scanSent(row *sql.Row) (*internal.SentRFPRecord, error) {
	var s internal.SentRFPRecord
	var status string
	err := row.Scan(&s.ID, &s.TemplateID, &s.VendorID, &status, &s.MessageID, &s.SentAt, &s.VendorName, &s.VendorEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Status = internal.SentStatus(status)
	return &s, nil
}

// ListSentByTemplate returns sends in insertion order, which fixes the
// tie-break order for ranking.
func (d *DB) ListSentByTemplate(templateID int64, status internal.SentStatus) ([]internal.SentRFPRecord, error) {
	rows, err := d.conn.Query(`
SELECT `+sentColumns+` FROM sent_rfps s JOIN vendors v ON v.id = s.vendorId
WHERE s.templateId = ? AND s.status = ? ORDER BY s.id ASC`, templateID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.SentRFPRecord
	for rows.Next() {
		var s internal.SentRFPRecord
		var statusV string
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.VendorID, &statusV, &s.MessageID, &s.SentAt, &s.VendorName, &s.VendorEmail); err != nil {
			return nil, err
		}
		s.Status = internal.SentStatus(statusV)
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindOpenSentForVendor resolves the sent RFP an inbound reply belongs to:
// the most recent dispatched solicitation for that vendor.
func (d *DB) FindOpenSentForVendor(vendorID int64) (*internal.SentRFPRecord, error) {
	return d.scanSent(d.conn.QueryRow(`
SELECT `+sentColumns+` FROM sent_rfps s JOIN vendors v ON v.id = s.vendorId
WHERE s.vendorId = ? AND s.status = 'sent'
ORDER BY s.sentAt DESC, s.id DESC LIMIT 1`, vendorID))
}

func (d *DB) UpsertReply(reply internal.ReplyRow) (internal.ReplyRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO replies (sentId, provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, reply.SentID, reply.Provider, reply.MessageID, reply.Subject, reply.Sender, reply.ReceivedAt, reply.Hash, string(reply.Status), reply.RawRef)
	if err != nil {
		return internal.ReplyRow{}, err
	}

	row, err := d.GetReplyByProviderMessageID(reply.Provider, reply.MessageID)
	if err != nil {
		return internal.ReplyRow{}, err
	}
	if row == nil {
		return internal.ReplyRow{}, errors.New("failed to upsert reply")
	}
	return *row, nil
}

const replyColumns = `id, sentId, provider, messageId, subject, sender, receivedAt, hash, status, rawRef`

func (d *DB) GetReplyByProviderMessageID(provider, messageID string) (*internal.ReplyRow, error) {
	return d.scanReply(d.conn.QueryRow(`SELECT `+replyColumns+` FROM replies WHERE provider = ? AND messageId = ?`, provider, messageID))
}

func (d *DB) scanReply(row *sql.Row) (*internal.ReplyRow, error) {
	var r internal.ReplyRow
	var status string
	err := row.Scan(&r.ID, &r.SentID, &r.Provider, &r.MessageID, &r.Subject, &r.Sender, &r.ReceivedAt, &r.Hash, &status, &r.RawRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Status = internal.ReplyStatus(status)
	return &r, nil
}

func (d *DB) ListRepliesByStatus(status internal.ReplyStatus, limit int) ([]internal.ReplyRow, error) {
	rows, err := d.conn.Query(`
SELECT `+replyColumns+` FROM replies WHERE status = ? ORDER BY receivedAt ASC LIMIT ?`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReplyRow
	for rows.Next() {
		var r internal.ReplyRow
		var statusV string
		if err := rows.Scan(&r.ID, &r.SentID, &r.Provider, &r.MessageID, &r.Subject, &r.Sender, &r.ReceivedAt, &r.Hash, &statusV, &r.RawRef); err != nil {
			return nil, err
		}
		r.Status = internal.ReplyStatus(statusV)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) UpdateReplyStatus(replyID int64, status internal.ReplyStatus) error {
	_, err := d.conn.Exec(`UPDATE replies SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, string(status), replyID)
	return err
}

func (d *DB) AttachReplyToSent(replyID, sentID int64) error {
	_, err := d.conn.Exec(`UPDATE replies SET sentId = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, sentID, replyID)
	return err
}

func (d *DB) InsertQuotation(q internal.QuotationRow) (int64, error) {
	result, err := d.conn.Exec(`
INSERT INTO quotations (sentId, replyId, subject, body, quotedAmount, currency, amountUsd, warrantyYears, receivedAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, q.SentID, q.ReplyID, q.Subject, q.Body, decimalPtrToString(q.QuotedAmount), q.Currency, decimalPtrToString(q.AmountUSD), q.WarrantyYears, q.ReceivedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) UpdateQuotationExtraction(id int64, subject, body string, amount *decimal.Decimal, code *string, amountUSD *decimal.Decimal) error {
	_, err := d.conn.Exec(`
UPDATE quotations SET subject = ?, body = ?, quotedAmount = ?, currency = ?, amountUsd = ? WHERE id = ?
`, subject, body, decimalPtrToString(amount), code, decimalPtrToString(amountUSD), id)
	return err
}

const quotationColumns = `id, sentId, replyId, subject, body, quotedAmount, currency, amountUsd, warrantyYears, receivedAt, createdAt`

func (d *DB) GetQuotationByReplyID(replyID int64) (*internal.QuotationRow, error) {
	return d.scanQuotation(d.conn.QueryRow(`SELECT `+quotationColumns+` FROM quotations WHERE replyId = ?`, replyID))
}

// PrimaryQuotationForSent returns the earliest received quotation with an
// extracted amount for the given sent RFP, or nil when no reply quoted.
func (d *DB) PrimaryQuotationForSent(sentID int64) (*internal.QuotationRow, error) {
	return d.scanQuotation(d.conn.QueryRow(`
SELECT `+quotationColumns+` FROM quotations
WHERE sentId = ? AND quotedAmount IS NOT NULL AND currency IS NOT NULL
ORDER BY receivedAt ASC, id ASC LIMIT 1`, sentID))
}

func (d *DB) scanQuotation(row *sql.Row) (*internal.QuotationRow, error) {
	var q internal.QuotationRow
	var quoted, amountUSD *string
	err := row.Scan(&q.ID, &q.SentID, &q.ReplyID, &q.Subject, &q.Body, &quoted, &q.Currency, &amountUSD, &q.WarrantyYears, &q.ReceivedAt, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if q.QuotedAmount, err = parseDecimalPtr(quoted); err != nil {
		return nil, err
	}
	if q.AmountUSD, err = parseDecimalPtr(amountUSD); err != nil {
		return nil, err
	}
	return &q, nil
}

// ReplaceTemplateScores rewrites the score rows for one template in a
// single transaction: upsert per sent RFP, then rank assignment.
func (d *DB) ReplaceTemplateScores(templateID int64, records []internal.VendorScoreRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO vendor_scores (
  sentId, templateId, vendorId,
  priceScore, verificationScore, ratingScore, deliveryScore, warrantyScore, responseScore,
  vendorQualityScore, finalScore, rank, computedAt
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(sentId) DO UPDATE SET
  templateId=excluded.templateId,
  vendorId=excluded.vendorId,
  priceScore=excluded.priceScore,
  verificationScore=excluded.verificationScore,
  ratingScore=excluded.ratingScore,
  deliveryScore=excluded.deliveryScore,
  warrantyScore=excluded.warrantyScore,
  responseScore=excluded.responseScore,
  vendorQualityScore=excluded.vendorQualityScore,
  finalScore=excluded.finalScore,
  rank=excluded.rank,
  computedAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(
			rec.SentID, rec.TemplateID, rec.VendorID,
			rec.PriceScore.String(), rec.VerificationScore.String(), rec.RatingScore.String(),
			rec.DeliveryScore.String(), rec.WarrantyScore.String(), rec.ResponseScore.String(),
			rec.VendorQualityScore.String(), rec.FinalScore.String(), rec.Rank,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListScoresByTemplate(templateID int64) ([]internal.VendorScoreRecord, error) {
	rows, err := d.conn.Query(`
SELECT sc.id, sc.sentId, sc.templateId, sc.vendorId, v.name,
       sc.priceScore, sc.verificationScore, sc.ratingScore, sc.deliveryScore, sc.warrantyScore, sc.responseScore,
       sc.vendorQualityScore, sc.finalScore, sc.rank, sc.computedAt
FROM vendor_scores sc
JOIN vendors v ON v.id = sc.vendorId
WHERE sc.templateId = ?
ORDER BY sc.rank IS NULL, sc.rank ASC, sc.id ASC`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.VendorScoreRecord
	for rows.Next() {
		var rec internal.VendorScoreRecord
		var price, verification, rating, delivery, warranty, response, quality, final string
		if err := rows.Scan(&rec.ID, &rec.SentID, &rec.TemplateID, &rec.VendorID, &rec.VendorName,
			&price, &verification, &rating, &delivery, &warranty, &response,
			&quality, &final, &rec.Rank, &rec.ComputedAt); err != nil {
			return nil, err
		}
		var err error
		if rec.PriceScore, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if rec.VerificationScore, err = decimal.NewFromString(verification); err != nil {
			return nil, err
		}
		if rec.RatingScore, err = decimal.NewFromString(rating); err != nil {
			return nil, err
		}
		if rec.DeliveryScore, err = decimal.NewFromString(delivery); err != nil {
			return nil, err
		}
		if rec.WarrantyScore, err = decimal.NewFromString(warranty); err != nil {
			return nil, err
		}
		if rec.ResponseScore, err = decimal.NewFromString(response); err != nil {
			return nil, err
		}
		if rec.VendorQualityScore, err = decimal.NewFromString(quality); err != nil {
			return nil, err
		}
		if rec.FinalScore, err = decimal.NewFromString(final); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func decimalPtrToString(v *decimal.Decimal) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func parseDecimalPtr(v *string) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(*v)
	if err != nil {
		return nil, fmt.Errorf("bad decimal %q: %w", *v, err)
	}
	return &parsed, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
