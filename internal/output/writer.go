package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/August26/proxytrial/internal/model"
)

// Row is the flattened per-URI record written to report files.
type Row struct {
	Candidate       string  `json:"candidate"`
	URI             string  `json:"uri"`
	Scheme          string  `json:"scheme"`
	Classification  string  `json:"classification"`
	SuccessCount    int     `json:"success_count"`
	RepeatTotal     int     `json:"repeat_total"`
	Timeouts        int     `json:"timeouts"`
	Failures        int     `json:"failures"`
	ContentMismatch int     `json:"content_mismatches"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	LastError       string  `json:"last_error,omitempty"`
	Country         string  `json:"country,omitempty"`
	City            string  `json:"city,omitempty"`
}

// Rows flattens unit results into one row per evaluated URI.
func Rows(results []model.UnitResult) []Row {
	var rows []Row
	for _, r := range results {
		for _, v := range r.Verdicts {
			row := Row{
				Candidate:       r.Candidate,
				URI:             v.URI.String(),
				Scheme:          v.URI.Scheme.String(),
				Classification:  v.Classification().String(),
				SuccessCount:    v.SuccessCount,
				RepeatTotal:     v.RepeatTotal,
				Timeouts:        v.Count(model.OutcomeTimeout),
				Failures:        v.Count(model.OutcomeFailure),
				ContentMismatch: v.Count(model.OutcomeContentMismatch),
				AvgLatencyMs:    v.AvgLatencyMs(),
				LastError:       v.LastFailure(),
			}
			if r.Location != nil && v.SuccessCount > 0 {
				row.Country = r.Location.Country
				row.City = r.Location.City
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteFile writes all rows + summary stats to a file in json or csv format.
func WriteFile(path string, format string, results []model.UnitResult, stats model.BatchStats) error {
	switch format {
	case "json", "csv":
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if format == "csv" {
		return writeCSV(f, Rows(results))
	}
	return writeJSON(f, Rows(results), stats)
}

// writeJSON writes an object with "results" and "summary".
func writeJSON(w io.Writer, rows []Row, stats model.BatchStats) error {
	payload := struct {
		Results []Row            `json:"results"`
		Summary model.BatchStats `json:"summary"`
	}{
		Results: rows,
		Summary: stats,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// writeCSV writes one line per row (summary is not included in CSV).
func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	header := []string{
		"candidate",
		"uri",
		"scheme",
		"classification",
		"success_count",
		"repeat_total",
		"timeouts",
		"failures",
		"content_mismatches",
		"avg_latency_ms",
		"last_error",
		"country",
		"city",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		rec := []string{
			r.Candidate,
			r.URI,
			r.Scheme,
			r.Classification,
			strconv.Itoa(r.SuccessCount),
			strconv.Itoa(r.RepeatTotal),
			strconv.Itoa(r.Timeouts),
			strconv.Itoa(r.Failures),
			strconv.Itoa(r.ContentMismatch),
			fmt.Sprintf("%.1f", r.AvgLatencyMs),
			r.LastError,
			r.Country,
			r.City,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
