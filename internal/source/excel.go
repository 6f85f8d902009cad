package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/config"
	"github.com/xuri/excelize/v2"
)

// ExcelSource serves a workbook loaded at construction. Every sheet except
// the experiment sheet is one metric: column A timestamp, column B value.
// An empty or non-numeric value cell is a gap. The experiment sheet has the
// columns experiment, variant, sample_size, conversions, mean, std_dev.
// A first row whose value cell is not numeric is treated as a header.
type ExcelSource struct {
	*MemorySource
	path string
}

// NewExcelSource reads the whole workbook into memory
func NewExcelSource(cfg config.ExcelSourceConfig) (*ExcelSource, error) {
	f, err := excelize.OpenFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	experimentSheet := cfg.ExperimentSheet
	if experimentSheet == "" {
		experimentSheet = "experiments"
	}

	mem := NewMemorySource()
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}

		if strings.EqualFold(sheet, experimentSheet) {
			if err := loadExperimentRows(mem, rows); err != nil {
				return nil, fmt.Errorf("sheet %s: %w", sheet, err)
			}
			continue
		}
		mem.PutSeries(sheet, seriesFromRows(rows))
	}

	return &ExcelSource{MemorySource: mem, path: cfg.Path}, nil
}

// Path returns the workbook path
func (e *ExcelSource) Path() string {
	return e.path
}

func parseCell(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func seriesFromRows(rows [][]string) analytics.Series {
	series := make(analytics.Series, 0, len(rows))
	for i, row := range rows {
		var ts, raw string
		if len(row) > 0 {
			ts = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			raw = row[1]
		}

		v, ok := parseCell(raw)
		if i == 0 && !ok && raw != "" {
			continue
		}
		if ts == "" && raw == "" {
			continue
		}

		p := analytics.TimeSeriesPoint{Timestamp: ts}
		if ok {
			p.Value = analytics.Float(v)
		}
		series = append(series, p)
	}
	return series
}

func loadExperimentRows(mem *MemorySource, rows [][]string) error {
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		size, ok := parseCell(row[2])
		if !ok {
			if i == 0 {
				continue
			}
			return fmt.Errorf("row %d: invalid sample_size %q", i+1, row[2])
		}

		sample := abtest.Sample{SampleSize: int(size)}
		if len(row) > 3 {
			if v, ok := parseCell(row[3]); ok {
				sample.Conversions = int(v)
			}
		}
		if len(row) > 4 {
			sample.Mean, _ = parseCell(row[4])
		}
		if len(row) > 5 {
			sample.StdDev, _ = parseCell(row[5])
		}

		mem.PutSample(strings.TrimSpace(row[0]), strings.TrimSpace(row[1]), sample)
	}
	return nil
}
