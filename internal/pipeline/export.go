package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"rfpdesk/internal"
)

// ExportRankingToXLSX writes the ranked vendor scores for one template
// to a spreadsheet, one row per vendor, ordered as given.
func ExportRankingToXLSX(title string, records []internal.VendorScoreRecord, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"rank", "vendor", "final_score",
		"price_score", "vendor_quality_score",
		"verification_score", "rating_score", "delivery_score", "warranty_score", "response_score",
		"computed_at",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetCellValue(sheet, "M1", title)

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		rank := any("")
		if rec.Rank != nil {
			rank = *rec.Rank
		}
		set(1, rank)
		set(2, rec.VendorName)
		set(3, rec.FinalScore.String())
		set(4, rec.PriceScore.String())
		set(5, rec.VendorQualityScore.String())
		set(6, rec.VerificationScore.String())
		set(7, rec.RatingScore.String())
		set(8, rec.DeliveryScore.String())
		set(9, rec.WarrantyScore.String())
		set(10, rec.ResponseScore.String())
		set(11, rec.ComputedAt)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
