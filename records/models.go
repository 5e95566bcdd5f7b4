package records

import (
	"time"

	"class-records/parsers"

	"gorm.io/gorm"
)

// RecordModel is one roster row. Seq is assigned on insert and fixes the
// display order; StudentID is the user-facing identifier and is not unique.
type RecordModel struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	StudentID string    `gorm:"not null" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Grade     string    `gorm:"not null" json:"grade"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (RecordModel) TableName() string {
	return "records"
}

// Record converts the row back to the parser's value type.
func (m RecordModel) Record() parsers.Record {
	return parsers.Record{ID: m.StudentID, Name: m.Name, Grade: m.Grade}
}

// AutoMigrate creates the records table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&RecordModel{})
}
