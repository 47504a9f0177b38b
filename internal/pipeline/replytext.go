package pipeline

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// ReplyContent is the text view of one vendor reply: everything a
// quotation could hide in, flattened to plain text.
type ReplyContent struct {
	Subject     string
	Text        string
	Attachments []string
}

// ExtractReplyContent parses a raw RFC 5322 message and flattens body
// and attachments into searchable text. Plain text wins over HTML;
// PDF and spreadsheet attachments are appended so quotes sent as
// documents still reach extraction.
func ExtractReplyContent(raw []byte) (ReplyContent, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return ReplyContent{}, err
	}

	parts := make([]string, 0, 4)
	if strings.TrimSpace(env.Text) != "" {
		parts = append(parts, env.Text)
	} else if env.HTML != "" {
		if text := htmlToText(env.HTML); text != "" {
			parts = append(parts, text)
		}
	}

	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)
		lower := strings.ToLower(filename)

		switch {
		case strings.HasSuffix(lower, ".pdf"):
			if text, err := pdfToText(att.Content); err == nil && text != "" {
				parts = append(parts, text)
			}
		case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
			if text, err := xlsxToText(att.Content); err == nil && text != "" {
				parts = append(parts, text)
			}
		}
	}

	return ReplyContent{
		Subject:     env.GetHeader("Subject"),
		Text:        strings.TrimSpace(strings.Join(parts, "\n\n")),
		Attachments: attachmentNames,
	}, nil
}

func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script,style").Remove()
	return normalizeSpaces(doc.Text())
}

func pdfToText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

func xlsxToText(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			line := normalizeSpaces(strings.Join(row, " | "))
			if line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

var warrantyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:-|\s)?\s*years?\s+(?:of\s+)?warranty`),
	regexp.MustCompile(`(?i)warranty\s*(?:of|:|period[:\s]*)?\s*(\d+(?:\.\d+)?)\s*years?`),
	regexp.MustCompile(`(?i)(\d+)\s*(?:-|\s)?\s*months?\s+(?:of\s+)?warranty`),
	regexp.MustCompile(`(?i)warranty\s*(?:of|:|period[:\s]*)?\s*(\d+)\s*months?`),
}

// DetectWarrantyYears scans reply text for a warranty period. Month
// figures are converted to fractional years. Returns nil when no
// warranty is mentioned.
func DetectWarrantyYears(text string) *float64 {
	for i, re := range warrantyPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if i >= 2 {
			value = value / 12
		}
		return &value
	}
	return nil
}

func normalizeSpaces(input string) string {
	return strings.TrimSpace(regexp.MustCompile(`\s+`).ReplaceAllString(input, " "))
}
