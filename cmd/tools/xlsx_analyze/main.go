package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/soltixdb/insight/internal/analytics/anomaly"
	"github.com/soltixdb/insight/internal/analytics/correlation"
	"github.com/soltixdb/insight/internal/analytics/descriptive"
	"github.com/soltixdb/insight/internal/analytics/trend"
	"github.com/soltixdb/insight/internal/config"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/queue"
	"github.com/soltixdb/insight/internal/source"
)

// MetricReport is the offline analysis of one metric sheet
type MetricReport struct {
	Metric    string            `json:"metric"`
	Points    int               `json:"points"`
	Stats     descriptive.Stats `json:"stats"`
	Anomalies []anomaly.Record  `json:"anomalies"`
	Trend     trend.Analysis    `json:"trend"`
}

// Report is the tool output
type Report struct {
	AnalysisID   string              `json:"analysis_id"`
	File         string              `json:"file"`
	Sensitivity  anomaly.Sensitivity `json:"sensitivity"`
	Metrics      []MetricReport      `json:"metrics"`
	Correlations *correlation.Result `json:"correlations,omitempty"`
}

func main() {
	file := flag.String("file", "", "Workbook to analyze (.xlsx)")
	sheet := flag.String("sheet", "", "Analyze a single metric sheet (default: all)")
	experiments := flag.String("experiments-sheet", "experiments", "Sheet holding A/B samples, skipped as a metric")
	sensitivity := flag.String("sensitivity", "medium", "Anomaly sensitivity (low, medium, high)")
	horizon := flag.Int("horizon", trend.DefaultHorizon, "Forecast steps")
	threshold := flag.Float64("threshold", 0.7, "Correlation significance threshold")
	output := flag.String("output", "", "Write JSON here instead of stdout")
	publish := flag.Bool("publish", false, "Also publish per-sheet results to the configured result publisher")
	configPath := flag.String("config", "", "Configuration file for -publish")

	flag.Parse()

	if *file == "" {
		log.Fatal("Error: -file parameter is required")
	}

	sens, err := anomaly.ParseSensitivity(*sensitivity)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	src, err := source.NewExcelSource(config.ExcelSourceConfig{
		Path:            *file,
		ExperimentSheet: *experiments,
	})
	if err != nil {
		log.Fatalf("Error opening workbook: %v\n", err)
	}
	defer func() { _ = src.Close() }()

	metrics := src.Metrics()
	if *sheet != "" {
		metrics = []string{*sheet}
	}
	if len(metrics) == 0 {
		log.Printf("Warning: No metric sheets found in %s\n", *file)
		return
	}

	ctx := context.Background()
	report := Report{AnalysisID: uuid.New().String(), File: *file, Sensitivity: sens}
	values := make(map[string][]float64, len(metrics))

	for _, metric := range metrics {
		series, err := src.FetchSeries(ctx, metric)
		if err != nil {
			log.Fatalf("Error reading sheet %q: %v\n", metric, err)
		}

		records, err := anomaly.DetectWith(series, sens, anomaly.DefaultMethods...)
		if err != nil {
			log.Fatalf("Error detecting anomalies: %v\n", err)
		}
		if records == nil {
			records = []anomaly.Record{}
		}

		report.Metrics = append(report.Metrics, MetricReport{
			Metric:    metric,
			Points:    series.Len(),
			Stats:     descriptive.Compute(series.Values()),
			Anomalies: records,
			Trend:     trend.AnalyzeWithHorizon(series, nil, *horizon),
		})
		values[metric] = series.Floats()
	}

	if len(values) >= 2 {
		result := correlation.ComputeMatrix(values, *threshold)
		report.Correlations = &result
	}

	if *publish {
		if err := publishReport(ctx, *configPath, report); err != nil {
			log.Fatalf("Error publishing results: %v\n", err)
		}
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Error creating output file: %v\n", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("Error writing report: %v\n", err)
	}

	if *output != "" {
		fmt.Printf("Analyzed %d metric(s), report written to %s\n", len(report.Metrics), *output)
	}
}

// publishReport sends the anomalies and trend of every sheet as one batch per
// kind, keyed by metric, plus the correlation matrix when there is one.
func publishReport(ctx context.Context, configPath string, report Report) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	q, err := queue.New(cfg.Publisher)
	if err != nil {
		return fmt.Errorf("failed to connect to publisher: %w", err)
	}
	publisher := queue.NewEventPublisher(q, cfg.Publisher.SubjectPrefix, logger)
	defer func() { _ = publisher.Close() }()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	anomalies := make([]queue.KeyedResult, 0, len(report.Metrics))
	trends := make([]queue.KeyedResult, 0, len(report.Metrics))
	for _, m := range report.Metrics {
		anomalies = append(anomalies, queue.KeyedResult{AnalysisID: report.AnalysisID, Key: m.Metric, Result: m.Anomalies})
		trends = append(trends, queue.KeyedResult{AnalysisID: report.AnalysisID, Key: m.Metric, Result: m.Trend})
	}

	total := 0
	for kind, batch := range map[queue.Kind][]queue.KeyedResult{
		queue.KindAnomalies: anomalies,
		queue.KindTrends:    trends,
	} {
		n, err := publisher.PublishBatch(ctx, kind, batch)
		if err != nil {
			return fmt.Errorf("failed to publish %s: %w", kind, err)
		}
		total += n
	}

	if report.Correlations != nil {
		if err := publisher.Publish(ctx, queue.KindCorrelations, report.AnalysisID, report.File, report.Correlations); err != nil {
			return fmt.Errorf("failed to publish correlations: %w", err)
		}
		total++
	}

	logger.Info("Published workbook results",
		"analysis_id", report.AnalysisID,
		"file", report.File,
		"events", total)
	return nil
}
