package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rfpdesk/internal"
	"rfpdesk/internal/llm"
)

const composePromptTemplate = `You are a procurement specialist writing a request-for-proposal email to vendors.

Write a professional RFP email for the following procurement:

Title: %s
Requirements (JSON): %s
Budget: %s

Return your response in the following JSON format:
{
    "subject": "RFP: ...",
    "body": "Dear Vendor,\n..."
}

Rules:
- Keep the subject under 80 characters and start it with "RFP:"
- The body must describe the requirements, ask for a quoted price with currency, warranty terms, and delivery timeline
- Do not mention the budget to the vendor
- Ask the vendor to reply to this email with their quotation
- Plain text only, no markdown`

// ComposeService drafts the outgoing RFP email for a template via the
// text-generation capability, with a deterministic fallback when the
// capability output is unusable.
type ComposeService struct {
	completer llm.Completer
	timeout   time.Duration
}

func NewComposeService(completer llm.Completer, timeout time.Duration) *ComposeService {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ComposeService{completer: completer, timeout: timeout}
}

// Compose returns a subject and body for the template's RFP email.
// It never fails: capability errors fall back to a static draft.
func (s *ComposeService) Compose(ctx context.Context, template internal.TemplateRecord) (string, string) {
	budget := "not disclosed"
	if template.BudgetUSD != nil {
		budget = template.BudgetUSD.String() + " USD"
	}
	prompt := fmt.Sprintf(composePromptTemplate, template.Title, template.RequirementsJSON, budget)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.completer.Complete(callCtx, prompt)
	if err != nil {
		return fallbackDraft(template)
	}

	if subject, body, ok := parseComposedEmail(raw); ok {
		return subject, body
	}
	return fallbackDraft(template)
}

func parseComposedEmail(raw string) (string, string, bool) {
	cleaned := stripComposeFences(raw)

	var draft struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.Unmarshal([]byte(cleaned), &draft); err == nil {
		if draft.Subject != "" && draft.Body != "" {
			return draft.Subject, draft.Body, true
		}
	}
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &draft); err == nil {
			if draft.Subject != "" && draft.Body != "" {
				return draft.Subject, draft.Body, true
			}
		}
	}

	// Some models answer with labeled lines instead of JSON.
	subject, body := "", ""
	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if subject == "" && strings.HasPrefix(lower, "subject:") {
			subject = strings.TrimSpace(trimmed[len("subject:"):])
			continue
		}
		if strings.HasPrefix(lower, "body:") {
			first := strings.TrimSpace(trimmed[len("body:"):])
			rest := strings.Join(lines[i+1:], "\n")
			body = strings.TrimSpace(strings.TrimSpace(first + "\n" + rest))
			break
		}
	}
	if subject != "" && body != "" {
		return subject, body, true
	}
	return "", "", false
}

func stripComposeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
	}
	return strings.TrimSpace(cleaned)
}

func fallbackDraft(template internal.TemplateRecord) (string, string) {
	subject := "RFP: " + template.Title
	body := fmt.Sprintf(`Dear Vendor,

We are requesting a proposal for the following procurement: %s.

Requirements:
%s

Please reply to this email with your quotation, including:
- Total price and currency
- Warranty terms
- Delivery timeline

Thank you.`, template.Title, template.RequirementsJSON)
	return subject, body
}
