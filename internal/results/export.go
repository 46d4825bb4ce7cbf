package results

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// exportHeader uses the recognized import column names first so the file
// round-trips; the placement columns are extras the importer ignores.
var exportHeader = []string{"bib", "name", "category", "finish_time", "status", "overall_place", "category_place"}

// writeCSV renders result details in the import-compatible CSV format.
func writeCSV(details []ResultDetail) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, d := range details {
		finishTime := ""
		if d.FinishSeconds != nil {
			finishTime = FormatFinishTime(*d.FinishSeconds)
		}

		record := []string{
			strconv.Itoa(d.Bib),
			d.Name,
			d.CategoryName,
			finishTime,
			string(d.Status),
			formatPlace(d.OverallPlace),
			formatPlace(d.CategoryPlace),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatPlace(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
