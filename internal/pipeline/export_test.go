package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"rfpdesk/internal"
	"rfpdesk/internal/util"
)

func TestExportRankingToXLSX(t *testing.T) {
	records := []internal.VendorScoreRecord{
		{
			SentID: 2, VendorName: "Budget Traders",
			PriceScore:         decimal.RequireFromString("50"),
			VendorQualityScore: decimal.RequireFromString("100"),
			FinalScore:         decimal.RequireFromString("75"),
			Rank:               util.IntPtr(1),
			ComputedAt:         "2025-06-02 10:00:00",
		},
		{
			SentID: 1, VendorName: "Acme Supply",
			PriceScore:         decimal.RequireFromString("20"),
			VendorQualityScore: decimal.RequireFromString("100"),
			FinalScore:         decimal.RequireFromString("60"),
			Rank:               util.IntPtr(2),
			ComputedAt:         "2025-06-02 10:00:00",
		},
	}

	outputPath := filepath.Join(t.TempDir(), "ranking.xlsx")
	if err := ExportRankingToXLSX("Office Laptops", records, outputPath); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		t.Fatalf("open exported file: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	get := func(cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("cell %s: %v", cell, err)
		}
		return v
	}

	if get("A1") != "rank" || get("B1") != "vendor" || get("C1") != "final_score" {
		t.Fatal("header row mismatch")
	}
	if get("A2") != "1" || get("B2") != "Budget Traders" || get("C2") != "75" {
		t.Fatalf("row 2 = %s %s %s", get("A2"), get("B2"), get("C2"))
	}
	if get("A3") != "2" || get("B3") != "Acme Supply" || get("C3") != "60" {
		t.Fatalf("row 3 = %s %s %s", get("A3"), get("B3"), get("C3"))
	}
}
