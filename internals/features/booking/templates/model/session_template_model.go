// file: internals/features/booking/templates/model/session_template_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =========================
   Enum
========================= */

type PricingMode string

const (
	PricingFree PricingMode = "free"
	PricingPaid PricingMode = "paid"
)

type Visibility string

const (
	VisibilityOpen   Visibility = "open"
	VisibilityHidden Visibility = "hidden"
	VisibilityClosed Visibility = "closed"
)

// OneOffEntry: satu kemunculan eksplisit untuk template non-recurring.
type OneOffEntry struct {
	Date string `json:"date"` // YYYY-MM-DD (local, timezone organisasi)
	Time string `json:"time"` // HH:mm
}

/* =========================
   Model: SessionTemplateModel
========================= */

type SessionTemplateModel struct {
	// PK
	SessionTemplateID uuid.UUID `gorm:"type:uuid;primaryKey;column:session_template_id"`

	// Tenant
	SessionTemplateOrgID     uuid.UUID `gorm:"type:uuid;not null;column:session_template_org_id;index"`
	SessionTemplateCreatedBy uuid.UUID `gorm:"type:uuid;column:session_template_created_by"`

	// Atribut dasar
	SessionTemplateName            string  `gorm:"type:varchar(160);not null;column:session_template_name"`
	SessionTemplateDescription     *string `gorm:"type:text;column:session_template_description"`
	SessionTemplateCapacity        int     `gorm:"not null;column:session_template_capacity"`
	SessionTemplateDurationMinutes int     `gorm:"not null;column:session_template_duration_minutes"`

	SessionTemplatePricingMode PricingMode `gorm:"type:varchar(10);not null;default:'free';column:session_template_pricing_mode"`
	// harga per spot dalam minor units (null = gratis / ditanggung membership)
	SessionTemplatePriceAmount *int64     `gorm:"column:session_template_price_amount"`
	SessionTemplateVisibility  Visibility `gorm:"type:varchar(10);not null;default:'open';column:session_template_visibility"`

	// Pola berulang
	SessionTemplateIsRecurring         bool       `gorm:"not null;default:false;column:session_template_is_recurring"`
	SessionTemplateRecurrenceStartDate *time.Time `gorm:"column:session_template_recurrence_start_date"`
	SessionTemplateRecurrenceEndDate   *time.Time `gorm:"column:session_template_recurrence_end_date"`

	// Kemunculan one-off eksplisit (non-recurring)
	SessionTemplateOneOffEntries datatypes.JSONSlice[OneOffEntry] `gorm:"column:session_template_one_off_entries"`

	// Relasi
	SessionTemplateSchedules []SessionScheduleModel `gorm:"foreignKey:SessionScheduleTemplateID;references:SessionTemplateID"`

	// Timestamps
	SessionTemplateCreatedAt time.Time      `gorm:"column:session_template_created_at;autoCreateTime"`
	SessionTemplateUpdatedAt time.Time      `gorm:"column:session_template_updated_at;autoUpdateTime"`
	SessionTemplateDeletedAt gorm.DeletedAt `gorm:"column:session_template_deleted_at;index"`
}

func (SessionTemplateModel) TableName() string { return "session_templates" }

func (m *SessionTemplateModel) BeforeCreate(tx *gorm.DB) error {
	if m.SessionTemplateID == uuid.Nil {
		m.SessionTemplateID = uuid.New()
	}
	return nil
}

// EffectiveDuration: durasi efektif sebuah schedule = override ?? default template.
func (m *SessionTemplateModel) EffectiveDuration(s *SessionScheduleModel) int {
	if s != nil && s.SessionScheduleDurationMinutes != nil && *s.SessionScheduleDurationMinutes > 0 {
		return *s.SessionScheduleDurationMinutes
	}
	return m.SessionTemplateDurationMinutes
}
