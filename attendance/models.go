package attendance

import (
	"time"

	"gorm.io/gorm"
)

// AttendanceModel is one successful login. Rows are only ever appended.
type AttendanceModel struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Username  string    `gorm:"not null" json:"username"`
	Timestamp string    `gorm:"not null" json:"timestamp"` // MM/DD/YYYY HH:MM:SS
	Receipt   string    `gorm:"type:text" json:"receipt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (AttendanceModel) TableName() string {
	return "attendance_records"
}

// AutoMigrate creates the attendance table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&AttendanceModel{})
}
