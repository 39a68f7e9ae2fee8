package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a table keyed by column header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// ManifestHeaders are the columns of a batch manifest.
var ManifestHeaders = []string{"record_id", "status", "filename", "error"}

// ManifestEntry describes the outcome for one record of a batch.
type ManifestEntry struct {
	RecordID string
	Filename string
	Error    string
}

// ManifestDataset lays entries out under ManifestHeaders.
func ManifestDataset(entries []ManifestEntry) Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		status := "ok"
		if e.Error != "" {
			status = "failed"
		}
		rows = append(rows, map[string]string{
			"record_id": e.RecordID,
			"status":    status,
			"filename":  e.Filename,
			"error":     e.Error,
		})
	}
	return Dataset{Headers: ManifestHeaders, Rows: rows}
}

// CSVExporter renders datasets as RFC 4180 CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes the header row followed by one line per row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
