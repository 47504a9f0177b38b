package pipeline

import (
	"context"
	"fmt"
	"os"

	"rfpdesk/internal"
	"rfpdesk/internal/extraction"
	"rfpdesk/internal/storage"
)

// QuotationSyncService walks fetched replies and turns them into
// quotation rows. A reply is read once: replies that already carry an
// extracted amount and currency are never sent back to extraction.
type QuotationSyncService struct {
	db        *storage.DB
	extractor *extraction.Extractor
}

func NewQuotationSyncService(db *storage.DB, extractor *extraction.Extractor) *QuotationSyncService {
	return &QuotationSyncService{db: db, extractor: extractor}
}

type SyncResult struct {
	Processed int
	Quoted    int
	NoQuote   int
	Skipped   int

	// Templates whose rankings are stale after this sync.
	AffectedTemplates []int64
}

// ProcessPending drains up to limit fetched replies. templateID
// restricts the pass to one template's replies; zero means all.
func (s *QuotationSyncService) ProcessPending(ctx context.Context, limit int, templateID int64) (SyncResult, error) {
	pending, err := s.db.ListRepliesByStatus(internal.ReplyStatusFetched, limit)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{}
	affected := map[int64]struct{}{}
	for _, reply := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if templateID != 0 {
			match, err := s.replyBelongsTo(reply, templateID)
			if err != nil {
				return result, err
			}
			if !match {
				continue
			}
		}
		status, affectedTemplate, err := s.ProcessReply(ctx, reply)
		if err != nil {
			return result, err
		}
		result.Processed++
		switch status {
		case internal.ReplyStatusQuoted:
			result.Quoted++
		case internal.ReplyStatusNoQuote:
			result.NoQuote++
		case internal.ReplyStatusSkipped:
			result.Skipped++
		}
		if affectedTemplate != 0 {
			affected[affectedTemplate] = struct{}{}
		}
	}

	for id := range affected {
		result.AffectedTemplates = append(result.AffectedTemplates, id)
	}
	return result, nil
}

func (s *QuotationSyncService) replyBelongsTo(reply internal.ReplyRow, templateID int64) (bool, error) {
	if reply.SentID == nil {
		return false, nil
	}
	sent, err := s.db.GetSentByID(*reply.SentID)
	if err != nil {
		return false, err
	}
	return sent != nil && sent.TemplateID == templateID, nil
}

// ProcessReply classifies one reply and records its quotation. Returns
// the final reply status and the template whose scores it affects
// (zero for skipped replies).
func (s *QuotationSyncService) ProcessReply(ctx context.Context, reply internal.ReplyRow) (internal.ReplyStatus, int64, error) {
	if reply.SentID == nil {
		if err := s.db.UpdateReplyStatus(reply.ID, internal.ReplyStatusSkipped); err != nil {
			return "", 0, err
		}
		return internal.ReplyStatusSkipped, 0, nil
	}

	sent, err := s.db.GetSentByID(*reply.SentID)
	if err != nil {
		return "", 0, err
	}
	if sent == nil {
		return "", 0, fmt.Errorf("reply %d references missing sent rfp %d", reply.ID, *reply.SentID)
	}

	existing, err := s.db.GetQuotationByReplyID(reply.ID)
	if err != nil {
		return "", 0, err
	}
	if existing != nil && existing.HasExtraction() {
		if err := s.db.UpdateReplyStatus(reply.ID, internal.ReplyStatusQuoted); err != nil {
			return "", 0, err
		}
		return internal.ReplyStatusQuoted, sent.TemplateID, nil
	}

	// A reply whose raw file is gone or unparseable must not wedge the
	// loop: record it as skipped and move on.
	raw, err := os.ReadFile(reply.RawRef)
	if err != nil {
		fmt.Printf("quotes sync skipping reply id=%d: read raw: %v\n", reply.ID, err)
		if err := s.db.UpdateReplyStatus(reply.ID, internal.ReplyStatusSkipped); err != nil {
			return "", 0, err
		}
		return internal.ReplyStatusSkipped, 0, nil
	}
	content, err := ExtractReplyContent(raw)
	if err != nil {
		fmt.Printf("quotes sync skipping reply id=%d: parse mime: %v\n", reply.ID, err)
		if err := s.db.UpdateReplyStatus(reply.ID, internal.ReplyStatusSkipped); err != nil {
			return "", 0, err
		}
		return internal.ReplyStatusSkipped, 0, nil
	}

	amount, code := s.extractor.Extract(ctx, content.Text)

	var quotation internal.QuotationRow
	quotation.SentID = *reply.SentID
	quotation.ReplyID = reply.ID
	quotation.Subject = firstNonEmpty(content.Subject, reply.Subject)
	quotation.Body = content.Text
	quotation.ReceivedAt = reply.ReceivedAt
	quotation.WarrantyYears = DetectWarrantyYears(content.Text)

	status := internal.ReplyStatusNoQuote
	if amount != nil && code != nil {
		usd := extraction.NormalizeUSD(*amount, *code)
		quotation.QuotedAmount = amount
		quotation.Currency = code
		quotation.AmountUSD = &usd
		status = internal.ReplyStatusQuoted
	}

	if existing != nil {
		if err := s.db.UpdateQuotationExtraction(existing.ID, quotation.Subject, quotation.Body, quotation.QuotedAmount, quotation.Currency, quotation.AmountUSD); err != nil {
			return "", 0, err
		}
	} else {
		if _, err := s.db.InsertQuotation(quotation); err != nil {
			return "", 0, err
		}
	}

	if err := s.db.UpdateReplyStatus(reply.ID, status); err != nil {
		return "", 0, err
	}
	return status, sent.TemplateID, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
