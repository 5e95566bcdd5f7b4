package imports

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"class-records/common"
	"class-records/parsers"
	"class-records/records"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// BatchSize is the number of rows appended to the store at once
	BatchSize = 500

	// ProgressUpdateFrequency controls how often job progress is saved
	// (every N batches)
	ProgressUpdateFrequency = 1
)

// ProcessImportJob runs one pending import to completion. Rows are read
// with the parser for the job's format, validated, and appended to store
// in file order. Job status goes pending -> processing -> completed|failed.
func ProcessImportJob(ctx context.Context, db *gorm.DB, store *records.Store, jobID string) error {
	var job common.ImportJob
	if err := db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		return fmt.Errorf("load import job %s: %w", jobID, err)
	}

	log := common.L().With(zap.String("job_id", job.ID), zap.String("format", job.Format))
	log.Info("import started")

	job.Status = common.JobStatusProcessing
	job.UpdatedAt = time.Now()
	if err := db.WithContext(ctx).Save(&job).Error; err != nil {
		return fmt.Errorf("update import job %s: %w", jobID, err)
	}

	imp := &importer{db: db, store: store, job: &job}
	processErr := imp.run(ctx)

	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now
	if len(imp.failures) > 0 {
		errorsJSON, _ := json.Marshal(imp.failures)
		job.Errors = string(errorsJSON)
	}
	if processErr != nil {
		job.Status = common.JobStatusFailed
		if job.Errors == "" {
			failure := common.RecordValidationResult{}
			failure.AddError("file", processErr.Error())
			errorsJSON, _ := json.Marshal([]common.RecordValidationResult{failure})
			job.Errors = string(errorsJSON)
		}
		log.Warn("import failed", zap.Error(processErr))
	} else {
		job.Status = common.JobStatusCompleted
		log.Info("import completed",
			zap.Int("total", job.TotalRecords),
			zap.Int("success", job.SuccessCount),
			zap.Int("failed", job.FailCount),
		)
	}

	// Record the outcome even if ctx was cancelled.
	if err := db.WithContext(context.Background()).Save(&job).Error; err != nil {
		return fmt.Errorf("save import job %s: %w", jobID, err)
	}
	return processErr
}

type importer struct {
	db       *gorm.DB
	store    *records.Store
	job      *common.ImportJob
	batch    []parsers.Record
	batches  int
	rowNum   int
	failures []common.RecordValidationResult
}

func (imp *importer) run(ctx context.Context) error {
	file, err := os.Open(imp.job.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	switch imp.job.Format {
	case common.FormatCSV:
		recs, errs := parsers.StreamRoster(file)
		return imp.consume(ctx, recs, errs)
	case common.FormatNDJSON:
		recs, errs := parsers.ParseNDJSON(file)
		return imp.consume(ctx, recs, errs)
	case common.FormatXLSX:
		rows, err := parsers.ParseXLSX(file)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if err := imp.add(ctx, r); err != nil {
				return err
			}
		}
		return imp.flush(ctx)
	default:
		return fmt.Errorf("unknown import format: %s", imp.job.Format)
	}
}

// consume drains both parser channels. A parse error counts as one
// processed, failed row and does not stop the import.
func (imp *importer) consume(ctx context.Context, recs <-chan parsers.Record, errs <-chan error) error {
	var stopErr error
	for recs != nil || errs != nil {
		select {
		case r, ok := <-recs:
			if !ok {
				recs = nil
				continue
			}
			if stopErr != nil {
				continue
			}
			stopErr = imp.add(ctx, r)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			imp.rowNum++
			imp.job.TotalRecords++
			imp.job.ProcessedCount++
			imp.job.FailCount++
			failure := common.RecordValidationResult{RowNumber: imp.rowNum}
			failure.AddError("line", err.Error())
			imp.failures = append(imp.failures, failure)
		}
	}
	if stopErr != nil {
		return stopErr
	}
	return imp.flush(ctx)
}

func (imp *importer) add(ctx context.Context, r parsers.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	imp.rowNum++
	imp.job.TotalRecords++

	result := common.ValidateRecord(r.ID, r.Name, imp.rowNum)
	if !result.Valid {
		imp.failures = append(imp.failures, *result)
		imp.job.ProcessedCount++
		imp.job.FailCount++
		return nil
	}

	imp.batch = append(imp.batch, r)
	if len(imp.batch) >= BatchSize {
		return imp.flush(ctx)
	}
	return nil
}

func (imp *importer) flush(ctx context.Context) error {
	if len(imp.batch) == 0 {
		return nil
	}
	n, err := imp.store.AddAll(ctx, imp.batch)
	if err != nil {
		return err
	}
	imp.job.ProcessedCount += len(imp.batch)
	imp.job.SuccessCount += n
	imp.batch = imp.batch[:0]

	imp.batches++
	if imp.batches%ProgressUpdateFrequency == 0 {
		imp.job.UpdatedAt = time.Now()
		if err := imp.db.WithContext(ctx).Save(imp.job).Error; err != nil {
			return fmt.Errorf("save import progress: %w", err)
		}
	}
	return nil
}
