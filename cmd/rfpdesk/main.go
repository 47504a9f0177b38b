package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rfpdesk/internal"
	"rfpdesk/internal/config"
	"rfpdesk/internal/connectors"
	gmailconnector "rfpdesk/internal/connectors/gmail"
	imapconnector "rfpdesk/internal/connectors/imap"
	"rfpdesk/internal/extraction"
	"rfpdesk/internal/listener"
	"rfpdesk/internal/llm"
	"rfpdesk/internal/pipeline"
	"rfpdesk/internal/scoring"
	"rfpdesk/internal/storage"
	"rfpdesk/internal/util"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "vendor:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "vendor name")
		email := fs.String("email", "", "vendor email")
		phone := fs.String("phone", "", "vendor phone")
		company := fs.String("company", "", "company name")
		emailVerified := fs.Bool("emailVerified", false, "email verified")
		phoneVerified := fs.Bool("phoneVerified", false, "phone verified")
		businessVerified := fs.Bool("businessVerified", false, "business verified")
		rating := fs.Float64("rating", 3.0, "overall rating 1-5")
		delivery := fs.Float64("delivery", 100.0, "on-time delivery rate 0-100")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" || strings.TrimSpace(*email) == "" {
			must(fmt.Errorf("--name and --email are required"))
		}
		record := internal.VendorRecord{
			Name:               *name,
			Email:              strings.ToLower(strings.TrimSpace(*email)),
			IsEmailVerified:    *emailVerified,
			IsPhoneVerified:    *phoneVerified,
			IsBusinessVerified: *businessVerified,
			OverallRating:      *rating,
			OnTimeDeliveryRate: *delivery,
		}
		if strings.TrimSpace(*phone) != "" {
			record.Phone = util.StringPtr(*phone)
		}
		if strings.TrimSpace(*company) != "" {
			record.Company = util.StringPtr(*company)
		}
		saved, err := db.UpsertVendor(record)
		must(err)
		fmt.Printf("vendor saved id=%d email=%s\n", saved.ID, saved.Email)
	case "vendor:list":
		vendors, err := db.ListVendors()
		must(err)
		for _, v := range vendors {
			verified := []string{}
			if v.IsEmailVerified {
				verified = append(verified, "email")
			}
			if v.IsPhoneVerified {
				verified = append(verified, "phone")
			}
			if v.IsBusinessVerified {
				verified = append(verified, "business")
			}
			fmt.Printf("%d\t%s\t%s\trating=%.1f delivery=%.1f verified=%s\n",
				v.ID, v.Name, v.Email, v.OverallRating, v.OnTimeDeliveryRate, strings.Join(verified, ","))
		}
		fmt.Printf("total vendors: %d\n", len(vendors))
	case "rfp:create":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		title := fs.String("title", "", "procurement title")
		requirements := fs.String("requirements", "{}", "requirements JSON")
		budget := fs.String("budget", "", "budget in USD")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*title) == "" {
			must(fmt.Errorf("--title is required"))
		}
		var budgetValue *decimal.Decimal
		if strings.TrimSpace(*budget) != "" {
			parsed, err := decimal.NewFromString(*budget)
			must(err)
			if !parsed.IsPositive() {
				must(fmt.Errorf("--budget must be a positive amount"))
			}
			budgetValue = &parsed
		}
		template, err := db.CreateTemplate(*title, *requirements, budgetValue)
		must(err)
		fmt.Printf("rfp template created id=%d title=%q\n", template.ID, template.Title)
	case "rfp:compose":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		templateID := fs.Int64("templateId", 0, "template id")
		_ = fs.Parse(os.Args[2:])
		if *templateID == 0 {
			must(fmt.Errorf("--templateId is required"))
		}
		template, err := db.GetTemplate(*templateID)
		must(err)
		if template == nil {
			must(fmt.Errorf("template %d not found", *templateID))
		}
		ctx := context.Background()
		completer, err := llm.NewCompleter(ctx, cfg)
		must(err)
		composer := pipeline.NewComposeService(completer, time.Duration(cfg.LLMTimeoutMs)*time.Millisecond)
		subject, body := composer.Compose(ctx, *template)
		must(db.SetTemplateEmail(*templateID, subject, body))
		fmt.Printf("composed rfp email templateId=%d\nsubject: %s\n\n%s\n", *templateID, subject, body)
	case "rfp:send":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		templateID := fs.Int64("templateId", 0, "template id")
		vendorIDs := fs.String("vendors", "", "comma-separated vendor ids (empty = all)")
		dryRun := fs.Bool("dryRun", false, "register sends without dispatching email")
		_ = fs.Parse(os.Args[2:])
		if *templateID == 0 {
			must(fmt.Errorf("--templateId is required"))
		}
		template, err := db.GetTemplate(*templateID)
		must(err)
		if template == nil {
			must(fmt.Errorf("template %d not found", *templateID))
		}
		if template.Subject == nil || template.Body == nil {
			must(fmt.Errorf("template %d has no composed email, run rfp:compose first", *templateID))
		}

		targets, err := resolveVendors(db, *vendorIDs)
		must(err)
		if len(targets) == 0 {
			must(fmt.Errorf("no vendors to send to"))
		}

		var sender connectors.MailSender
		if !*dryRun {
			gm, err := gmailconnector.NewConnector(cfg)
			must(err)
			sender = gm
		}

		sentCount, failedCount := 0, 0
		for _, vendor := range targets {
			now := time.Now().UTC().Format(time.RFC3339)
			if *dryRun {
				_, err := db.RegisterSend(*templateID, vendor.ID, nil, internal.SentStatusSent, now)
				must(err)
				sentCount++
				continue
			}
			messageID, err := sender.Send(vendor.Email, *template.Subject, *template.Body)
			if err != nil {
				fmt.Printf("send failed vendor=%s: %v\n", vendor.Email, err)
				_, regErr := db.RegisterSend(*templateID, vendor.ID, nil, internal.SentStatusFailed, now)
				must(regErr)
				failedCount++
				continue
			}
			_, err = db.RegisterSend(*templateID, vendor.ID, util.StringPtr(messageID), internal.SentStatusSent, now)
			must(err)
			sentCount++
		}
		fmt.Printf("rfp send done templateId=%d sent=%d failed=%d\n", *templateID, sentCount, failedCount)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d matched=%d\n", *provider, result.Fetched, result.Stored, result.Matched)
	case "quotes:sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batch := fs.Int("batch", 20, "batch size")
		templateID := fs.Int64("templateId", 0, "only replies for this template (0 = all)")
		_ = fs.Parse(os.Args[2:])
		ctx := context.Background()
		completer, err := llm.NewCompleter(ctx, cfg)
		must(err)
		extractor := extraction.NewExtractor(completer, time.Duration(cfg.LLMTimeoutMs)*time.Millisecond)
		svc := pipeline.NewQuotationSyncService(db, extractor)
		result, err := svc.ProcessPending(ctx, *batch, *templateID)
		must(err)
		fmt.Printf("quotes sync done processed=%d quoted=%d no_quote=%d skipped=%d\n",
			result.Processed, result.Quoted, result.NoQuote, result.Skipped)
	case "scores:compute":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		templateID := fs.Int64("templateId", 0, "template id")
		_ = fs.Parse(os.Args[2:])
		if *templateID == 0 {
			must(fmt.Errorf("--templateId is required"))
		}
		ranker := scoring.NewRanker(db)
		records, err := ranker.ComputeForTemplate(context.Background(), *templateID)
		must(err)
		for _, rec := range records {
			rank := 0
			if rec.Rank != nil {
				rank = *rec.Rank
			}
			fmt.Printf("#%d\t%s\tfinal=%s price=%s quality=%s\n",
				rank, rec.VendorName, rec.FinalScore, rec.PriceScore, rec.VendorQualityScore)
		}
		fmt.Printf("scores computed templateId=%d vendors=%d\n", *templateID, len(records))
	case "rank:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		templateID := fs.Int64("templateId", 0, "template id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *templateID == 0 {
			must(fmt.Errorf("--templateId is required"))
		}
		template, err := db.GetTemplate(*templateID)
		must(err)
		if template == nil {
			must(fmt.Errorf("template %d not found", *templateID))
		}
		records, err := db.ListScoresByTemplate(*templateID)
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("no scores for templateId=%d, run scores:compute first", *templateID))
		}
		outputPath := *out
		if strings.TrimSpace(outputPath) == "" {
			outputPath = filepath.Join(cfg.OutputDir, fmt.Sprintf("ranking_%d.xlsx", *templateID))
		}
		must(pipeline.ExportRankingToXLSX(template.Title, records, outputPath))
		fmt.Printf("exported %d rows to %s\n", len(records), outputPath)
	case "listen":
		ctx := context.Background()
		svc, err := listener.NewService(ctx, db, cfg)
		must(err)
		must(svc.Run(ctx))
	default:
		usage()
		os.Exit(1)
	}
}

func resolveVendors(db *storage.DB, csv string) ([]internal.VendorRecord, error) {
	all, err := db.ListVendors()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(csv) == "" {
		return all, nil
	}

	wanted := map[string]struct{}{}
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			wanted[part] = struct{}{}
		}
	}
	out := make([]internal.VendorRecord, 0, len(wanted))
	for _, v := range all {
		if _, ok := wanted[fmt.Sprintf("%d", v.ID)]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: rfpdesk <command>")
	fmt.Println("commands:")
	fmt.Println("  vendor:add --name=... --email=... [--phone=...] [--company=...] [--emailVerified] [--phoneVerified] [--businessVerified] [--rating=3.0] [--delivery=100]")
	fmt.Println("  vendor:list")
	fmt.Println("  rfp:create --title=... [--requirements='{...}'] [--budget=10000]")
	fmt.Println("  rfp:compose --templateId=1")
	fmt.Println("  rfp:send --templateId=1 [--vendors=1,2,3] [--dryRun]")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  quotes:sync [--batch=20] [--templateId=1]")
	fmt.Println("  scores:compute --templateId=1")
	fmt.Println("  rank:export --templateId=1 [--out=./out/ranking.xlsx]")
	fmt.Println("  listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
