// Package scoring computes vendor scores for a solicitation and ranks
// vendors by a 50/50 combination of price competitiveness and vendor
// quality. Every component score is in [0,100] and every missing input
// has an explicit default, so scoring is total over its domain.
package scoring

import (
	"time"

	"github.com/shopspring/decimal"

	"rfpdesk/internal"
)

// Quality component weights. Literal constants, kept as-is: they are
// rounded approximations of 20/70, 25/70, 10/70, 10/70 and 5/70.
var (
	verificationWeight = decimal.RequireFromString("0.286")
	ratingWeight       = decimal.RequireFromString("0.357")
	deliveryWeight     = decimal.RequireFromString("0.143")
	warrantyWeight     = decimal.RequireFromString("0.143")
	responseWeight     = decimal.RequireFromString("0.071")
)

var (
	hundred = decimal.NewFromInt(100)
	fifty   = decimal.NewFromInt(50)
	half    = decimal.RequireFromString("0.50")

	emailCredit    = decimal.RequireFromString("33.33")
	phoneCredit    = decimal.RequireFromString("33.33")
	businessCredit = decimal.RequireFromString("33.34")
)

// PriceScore rewards quoting under budget linearly (budget -> 0, free -> 100)
// and applies a penalty curve over budget starting at 50 and clamped at 0.
// Missing inputs or a non-positive budget score 0.
func PriceScore(quoted, budget *decimal.Decimal) decimal.Decimal {
	if quoted == nil || budget == nil || !budget.IsPositive() {
		return decimal.Zero.Round(2)
	}

	if quoted.LessThanOrEqual(*budget) {
		return budget.Sub(*quoted).Div(*budget).Mul(hundred).Round(2)
	}

	penalty := quoted.Sub(*budget).Div(*budget).Mul(hundred)
	score := fifty.Sub(penalty)
	if score.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return score.Round(2)
}

// VerificationScore grants fixed partial credit per verified channel;
// all three together total exactly 100.00.
func VerificationScore(v internal.VendorRecord) decimal.Decimal {
	score := decimal.Zero
	if v.IsEmailVerified {
		score = score.Add(emailCredit)
	}
	if v.IsPhoneVerified {
		score = score.Add(phoneCredit)
	}
	if v.IsBusinessVerified {
		score = score.Add(businessCredit)
	}
	return score
}

// RatingScore rescales the 1.00-5.00 vendor rating to 0-100.
func RatingScore(rating float64) decimal.Decimal {
	return decimal.NewFromFloat(rating).Div(decimal.NewFromInt(5)).Mul(hundred).Round(2)
}

// DeliveryScore uses the on-time delivery percentage directly.
func DeliveryScore(rate float64) decimal.Decimal {
	return decimal.NewFromFloat(rate).Round(2)
}

// WarrantyScore is a step function over the warranty period in years.
// Absent or zero warranty means "unspecified" and defaults to 50, which
// deliberately scores above an explicit sub-year warranty (25).
func WarrantyScore(years *float64) decimal.Decimal {
	if years == nil || *years == 0 {
		return fifty.Round(2)
	}
	switch {
	case *years >= 3:
		return hundred
	case *years >= 2:
		return decimal.NewFromInt(75)
	case *years >= 1:
		return fifty
	default:
		return decimal.NewFromInt(25)
	}
}

// ResponseScore grades how quickly the vendor replied after the RFP was
// sent. Missing timestamps default to 50.
func ResponseScore(sentAt, receivedAt *time.Time) decimal.Decimal {
	if sentAt == nil || receivedAt == nil {
		return fifty.Round(2)
	}

	hours := receivedAt.Sub(*sentAt).Hours()
	switch {
	case hours <= 24:
		return hundred
	case hours <= 48:
		return decimal.NewFromInt(80)
	case hours <= 72:
		return decimal.NewFromInt(60)
	}

	score := hundred.Sub(decimal.NewFromFloat(hours).Div(decimal.NewFromInt(24)).Mul(decimal.NewFromInt(5)))
	floor := decimal.NewFromInt(40)
	if score.LessThan(floor) {
		return floor
	}
	return score.Round(2)
}

// QualityScore combines the five component scores with the fixed weights.
func QualityScore(verification, rating, delivery, warranty, response decimal.Decimal) decimal.Decimal {
	return verification.Mul(verificationWeight).
		Add(rating.Mul(ratingWeight)).
		Add(delivery.Mul(deliveryWeight)).
		Add(warranty.Mul(warrantyWeight)).
		Add(response.Mul(responseWeight)).
		Round(2)
}

// FinalScore is the 50/50 blend of price and quality scores.
func FinalScore(price, quality decimal.Decimal) decimal.Decimal {
	return price.Mul(half).Add(quality.Mul(half)).Round(2)
}
