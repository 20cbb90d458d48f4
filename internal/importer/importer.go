// Package importer reads CSV sale records from a directory and upserts
// them into the property_sale table, one file and one row at a time.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"propertyregister/server/config"
	"propertyregister/server/internal/models"
)

// saleStore is the slice of the database the importer needs.
type saleStore interface {
	FindByDedupKey(ctx context.Context, address string, saleDate time.Time, eircode *string) (*models.PropertySale, error)
	SaveSale(ctx context.Context, sale *models.PropertySale) error
}

type Importer struct {
	db     saleStore
	config *config.Config
	logger *logrus.Logger
}

// FileSummary counts the per-row outcomes of one source file.
type FileSummary struct {
	File     string
	Inserted int
	Updated  int
	Skipped  int
	Errored  int
}

// Processed is the number of rows persisted.
func (s FileSummary) Processed() int {
	return s.Inserted + s.Updated
}

// RunSummary aggregates a whole directory pass.
type RunSummary struct {
	Files       int
	FailedFiles int
	Processed   int
	Errors      int
}

func New(db saleStore, cfg *config.Config, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Importer{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// Run processes every .csv file in the configured directory in name
// order. A file's unrecoverable error is logged and the run continues;
// only a directory-level failure is returned.
func (im *Importer) Run(ctx context.Context) (RunSummary, error) {
	dir := im.config.Import.DataDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to read data directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".csv") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	var run RunSummary
	for _, name := range files {
		run.Files++
		im.logger.Infof("Starting to process %s", name)

		summary, err := im.ProcessFile(ctx, filepath.Join(dir, name))
		if err != nil {
			run.FailedFiles++
			im.logger.WithError(err).Errorf("Error processing file %s", name)
			continue
		}

		run.Processed += summary.Processed()
		run.Errors += summary.Skipped + summary.Errored
		im.logger.Infof("Completed %s. Running total: %d records processed (%d errors)",
			name, run.Processed, run.Errors)
	}

	im.logger.Infof("All files completed. Total: %d records processed (%d errors)",
		run.Processed, run.Errors)
	return run, nil
}

// ProcessFile streams one CSV file row by row. A single row's failure
// never aborts the file.
func (im *Importer) ProcessFile(ctx context.Context, path string) (FileSummary, error) {
	summary := FileSummary{File: filepath.Base(path)}

	f, err := os.Open(path)
	if err != nil {
		return summary, err
	}
	defer f.Close()

	// The register exports use a legacy single-byte encoding; decoding as
	// latin-1 preserves the 0x80 euro byte for parsePrice to strip.
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(f))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return summary, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return summary, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.Errored++
			im.logger.WithError(err).Warn("Unreadable CSV record")
			continue
		}

		im.processRow(ctx, record, cols, &summary)

		if processed := summary.Processed(); processed > 0 && processed%100 == 0 {
			im.logger.Infof("Processed %d records (%d errors) in %s",
				processed, summary.Skipped+summary.Errored, summary.File)
		}
	}

	im.logger.Infof("Completed processing %s, processed %d records (%d errors)",
		summary.File, summary.Processed(), summary.Skipped+summary.Errored)
	return summary, nil
}

func (im *Importer) processRow(ctx context.Context, record []string, cols columns, summary *FileSummary) {
	sale, err := parseRow(record, cols)
	if err != nil {
		summary.Skipped++
		im.logger.WithError(err).WithField("record", record).Warn("Skipping row")
		return
	}

	existing, err := im.db.FindByDedupKey(ctx, sale.Address, sale.SaleDate, sale.Eircode)
	if err != nil {
		summary.Errored++
		im.logger.WithError(err).Error("Dedup lookup failed")
		return
	}

	updated := existing != nil
	if updated {
		// Re-import of a known sale overwrites its mutable fields in place.
		existing.Price = sale.Price
		existing.Year = sale.Year
		existing.County = sale.County
		existing.Description = sale.Description
		existing.FullAddress = sale.FullAddress
		sale = existing
	}

	if err := im.saveWithRetry(ctx, sale); err != nil {
		summary.Errored++
		im.logger.WithError(err).WithField("address", sale.Address).Error("Failed to save property sale")
		return
	}

	if updated {
		summary.Updated++
	} else {
		summary.Inserted++
	}
}

// saveWithRetry persists one sale, retrying a bounded number of times
// with a fixed delay before giving up on the row.
func (im *Importer) saveWithRetry(ctx context.Context, sale *models.PropertySale) error {
	maxRetries := im.config.Import.MaxRetries
	retryDelay := time.Duration(im.config.Import.RetryDelay) * time.Second

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			im.logger.Infof("Retrying save, attempt %d of %d", attempt, maxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		if err = im.db.SaveSale(ctx, sale); err == nil {
			return nil
		}
		im.logger.Errorf("Save failed: %v", err)
	}

	return fmt.Errorf("failed to save after %d attempts: %w", maxRetries, err)
}
