// file: internals/features/booking/templates/model/session_schedule_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionScheduleModel: satu aturan mingguan milik template recurring.
// Satu baris per hari; presentasi boleh mengelompokkan banyak hari per jam,
// materializer selalu expand per baris.
type SessionScheduleModel struct {
	// PK
	SessionScheduleID uuid.UUID `gorm:"type:uuid;primaryKey;column:session_schedule_id"`

	SessionScheduleTemplateID uuid.UUID `gorm:"type:uuid;not null;column:session_schedule_template_id;index"`

	// 0..6, Minggu=0 (selaras time.Weekday)
	SessionScheduleDayOfWeek int `gorm:"not null;column:session_schedule_day_of_week"`
	// "HH:mm" waktu lokal organisasi
	SessionScheduleStartTime string `gorm:"type:varchar(5);not null;column:session_schedule_start_time"`
	// override durasi (menit); nil = pakai durasi template
	SessionScheduleDurationMinutes *int `gorm:"column:session_schedule_duration_minutes"`

	SessionScheduleCreatedAt time.Time `gorm:"column:session_schedule_created_at;autoCreateTime"`
	SessionScheduleUpdatedAt time.Time `gorm:"column:session_schedule_updated_at;autoUpdateTime"`
}

func (SessionScheduleModel) TableName() string { return "session_schedules" }

func (m *SessionScheduleModel) BeforeCreate(tx *gorm.DB) error {
	if m.SessionScheduleID == uuid.Nil {
		m.SessionScheduleID = uuid.New()
	}
	return nil
}
