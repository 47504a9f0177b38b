package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"rfpdesk/internal"
	"rfpdesk/internal/config"
	"rfpdesk/internal/connectors"
	gmailconnector "rfpdesk/internal/connectors/gmail"
	imapconnector "rfpdesk/internal/connectors/imap"
	"rfpdesk/internal/extraction"
	"rfpdesk/internal/llm"
	"rfpdesk/internal/pipeline"
	"rfpdesk/internal/scoring"
	"rfpdesk/internal/storage"
)

// Service polls the inbox on an interval and runs the full cycle:
// fetch replies, extract quotations, rescore affected templates, and
// optionally export fresh rankings.
type Service struct {
	db     *storage.DB
	cfg    config.Config
	ranker *scoring.Ranker
	sync   *pipeline.QuotationSyncService
}

func NewService(ctx context.Context, db *storage.DB, cfg config.Config) (*Service, error) {
	completer, err := llm.NewCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	extractor := extraction.NewExtractor(completer, time.Duration(cfg.LLMTimeoutMs)*time.Millisecond)

	return &Service{
		db:     db,
		cfg:    cfg,
		ranker: scoring.NewRanker(db),
		sync:   pipeline.NewQuotationSyncService(db, extractor),
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.RunCycle(ctx); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.ListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.ListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.ListenerLabel, s.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}

	syncResult, err := s.sync.ProcessPending(ctx, s.cfg.ListenerProcessBatch, 0)
	if err != nil {
		return err
	}

	for _, templateID := range syncResult.AffectedTemplates {
		records, err := s.ranker.ComputeForTemplate(ctx, templateID)
		if err != nil {
			fmt.Printf("listener scoring error template=%d: %v\n", templateID, err)
			continue
		}
		if s.cfg.ListenerAutoExport {
			if err := s.exportTemplate(templateID, records); err != nil {
				return err
			}
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d matched=%d quoted=%d no_quote=%d skipped=%d rescored=%d\n",
		provider, fetchResult.Fetched, fetchResult.Matched,
		syncResult.Quoted, syncResult.NoQuote, syncResult.Skipped, len(syncResult.AffectedTemplates))
	return nil
}

func (s *Service) exportTemplate(templateID int64, records []internal.VendorScoreRecord) error {
	template, err := s.db.GetTemplate(templateID)
	if err != nil {
		return err
	}
	if template == nil {
		return fmt.Errorf("template %d not found", templateID)
	}

	filename := fmt.Sprintf("%d_%s.xlsx", templateID, sanitizeTitle(template.Title))
	outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
	return pipeline.ExportRankingToXLSX(template.Title, records, outputPath)
}

func sanitizeTitle(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
