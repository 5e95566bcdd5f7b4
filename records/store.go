package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"class-records/common"
	"class-records/parsers"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is the ordered roster. Iteration order is insertion order; there
// is no uniqueness constraint on the student ID.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore wraps an already migrated database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func normalize(r parsers.Record) parsers.Record {
	return parsers.Record{
		ID:    strings.TrimSpace(r.ID),
		Name:  strings.TrimSpace(r.Name),
		Grade: strings.TrimSpace(r.Grade),
	}
}

func (s *Store) model(r parsers.Record) RecordModel {
	return RecordModel{StudentID: r.ID, Name: r.Name, Grade: r.Grade, CreatedAt: s.now()}
}

// Add appends one record. A record with neither ID nor name is rejected:
// the returned result is invalid, carries the warning, and nothing changes.
func (s *Store) Add(ctx context.Context, r parsers.Record) (*common.RecordValidationResult, error) {
	r = normalize(r)
	result := common.ValidateRecord(r.ID, r.Name, 0)
	if !result.Valid {
		return result, nil
	}

	m := s.model(r)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("failed to add record: %w", err)
	}
	return result, nil
}

// AddAll appends records in order in one transaction, skipping rows with
// neither ID nor name. It returns how many were stored.
func (s *Store) AddAll(ctx context.Context, recs []parsers.Record) (int, error) {
	models := make([]RecordModel, 0, len(recs))
	for _, r := range recs {
		r = normalize(r)
		if !common.ValidateRecord(r.ID, r.Name, 0).Valid {
			continue
		}
		models = append(models, s.model(r))
	}
	if len(models) == 0 {
		return 0, nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&models, 500).Error; err != nil {
		return 0, fmt.Errorf("failed to add records: %w", err)
	}
	return len(models), nil
}

// Delete removes the record at zero-based position index. An index outside
// the current bounds is ignored: deleted is false and err is nil.
func (s *Store) Delete(ctx context.Context, index int) (deleted bool, err error) {
	if index < 0 {
		return false, nil
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m RecordModel
		err := tx.Order("seq asc").Offset(index).Limit(1).Take(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&RecordModel{}, m.Seq).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete record %d: %w", index, err)
	}
	if deleted {
		common.L().Debug("record deleted", zap.Int("index", index))
	}
	return deleted, nil
}

// List returns every record in insertion order.
func (s *Store) List(ctx context.Context) ([]RecordModel, error) {
	var out []RecordModel
	if err := s.db.WithContext(ctx).Order("seq asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return out, nil
}

// Page returns up to limit records starting at position offset.
func (s *Store) Page(ctx context.Context, offset, limit int) ([]RecordModel, error) {
	var out []RecordModel
	if err := s.db.WithContext(ctx).Order("seq asc").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to page records: %w", err)
	}
	return out, nil
}

// Count returns the number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&RecordModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return int(n), nil
}

// Reset drops every record.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&RecordModel{}).Error; err != nil {
		return fmt.Errorf("failed to reset records: %w", err)
	}
	return nil
}
