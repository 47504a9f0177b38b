package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseResponse decodes the capability output. Direct JSON decode first,
// then a tolerant scan between the first '{' and the last '}' for models
// that wrap the object in prose or code fences.
func ParseResponse(raw string) (Response, bool) {
	cleaned := stripFences(raw)

	var resp Response
	if err := json.Unmarshal([]byte(cleaned), &resp); err == nil {
		return resp, true
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return Response{}, false
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &resp); err != nil {
		return Response{}, false
	}
	return resp, true
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(cleaned, "`"))
}

// coerceAmount accepts the number formats models actually emit: JSON
// numbers, plain numeric strings, and strings with thousands separators.
func coerceAmount(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(val, ",", ""))
		if cleaned == "" {
			return decimal.Decimal{}, errors.New("empty amount")
		}
		return decimal.NewFromString(cleaned)
	case json.Number:
		return decimal.NewFromString(string(val))
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported amount type %T", v)
	}
}
