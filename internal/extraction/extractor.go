// Package extraction turns free-form vendor reply text into a single
// USD-normalized primary quotation. Detection of monetary mentions is
// delegated to a text-generation capability; selection, parsing and
// fallback policy live here. Extraction never fails: every error mode
// degrades to "no quotation found".
package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rfpdesk/internal"
	"rfpdesk/internal/currency"
	"rfpdesk/internal/llm"
)

const promptTemplate = `You are an expert at extracting financial quotation information from vendor email replies.

Analyze the following email text from a vendor responding to a business inquiry and extract any quoted amounts and their currencies.

Email text:
%s

IMPORTANT: Look for various ways vendors might express pricing:
- Direct amounts: "$5000", "USD 5000", "5000 dollars"
- Casual mentions: "40000 dollars", "give you for 25000"
- Estimates: "around $3000", "approximately 15000"
- Range pricing: "between 5000-8000 USD"

Convert every detected amount to USD using exactly this conversion table:
%s

Return your response in the following JSON format:
{
    "quotations": [
        {
            "amount": "40000.00",
            "currency": "USD",
            "context": "quoted price for the project"
        }
    ],
    "primary_quotation": {
        "amount": "40000.00",
        "currency": "USD"
    }
}

If no quotations are found, return:
{
    "quotations": [],
    "primary_quotation": null
}

Rules:
- Extract all monetary amounts that appear to be quotations, prices, or costs
- For amount, provide just the numeric value without currency symbols or commas
- If no currency is explicitly mentioned but amount is found, assume USD
- For currency, use standard 3-letter codes (USD, EUR, GBP, INR, etc.)
- Every amount in your response must already be converted to USD
- For primary_quotation, select the largest amount
- Be flexible with informal language and various number formats
- Look for keywords like "quote", "price", "cost", "charge", "dollars", "give", etc.`

type Extractor struct {
	completer llm.Completer
	timeout   time.Duration
}

func NewExtractor(completer llm.Completer, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Extractor{completer: completer, timeout: timeout}
}

// Extract returns the primary quoted amount and its currency for the given
// reply text. Both are nil when the text is empty, the capability call
// fails, or no parseable quotation comes back.
func (e *Extractor) Extract(ctx context.Context, text string) (*decimal.Decimal, *string) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf(promptTemplate, text, currency.RateTable())

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.completer.Complete(callCtx, prompt)
	if err != nil {
		return nil, nil
	}

	resp, ok := ParseResponse(raw)
	if !ok || resp.PrimaryQuotation == nil {
		return nil, nil
	}

	primary := resp.PrimaryQuotation
	code := strings.TrimSpace(primary.Currency)
	if primary.Amount == nil || code == "" {
		return nil, nil
	}

	amount, err := coerceAmount(primary.Amount)
	if err != nil {
		return nil, nil
	}

	return &amount, &code
}

// NormalizeUSD converts an extracted amount to USD. The prompt contract
// already asks for USD, so this is a no-op for well-behaved responses and
// a table conversion for the rest.
func NormalizeUSD(amount decimal.Decimal, code string) decimal.Decimal {
	return currency.ToUSD(amount, code)
}

// Response is the expected shape of the capability's JSON reply.
type Response struct {
	Quotations       []internal.QuotationCandidate `json:"quotations"`
	PrimaryQuotation *Primary                      `json:"primary_quotation"`
}

type Primary struct {
	Amount   any    `json:"amount"`
	Currency string `json:"currency"`
}
