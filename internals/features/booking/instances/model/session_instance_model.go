// file: internals/features/booking/instances/model/session_instance_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstanceStatus string

const (
	InstanceScheduled InstanceStatus = "scheduled"
	InstanceCancelled InstanceStatus = "cancelled"
)

// SessionInstanceModel: satu kemunculan konkret yang bisa dibooking.
// Kunci idempotensi generator: unik per (template_id, start_at UTC).
type SessionInstanceModel struct {
	// PK
	SessionInstanceID uuid.UUID `gorm:"type:uuid;primaryKey;column:session_instance_id"`

	SessionInstanceTemplateID uuid.UUID `gorm:"type:uuid;not null;column:session_instance_template_id;uniqueIndex:uq_session_instances_template_start"`
	// Tenant (denormalisasi untuk filter query)
	SessionInstanceOrgID uuid.UUID `gorm:"type:uuid;not null;column:session_instance_org_id;index"`

	// Instan UTC, selalu diturunkan dari timezone organisasi
	SessionInstanceStartAt time.Time `gorm:"not null;column:session_instance_start_at;uniqueIndex:uq_session_instances_template_start"`
	SessionInstanceEndAt   time.Time `gorm:"not null;column:session_instance_end_at"`

	SessionInstanceStatus InstanceStatus `gorm:"type:varchar(10);not null;default:'scheduled';column:session_instance_status"`

	SessionInstanceCreatedAt time.Time `gorm:"column:session_instance_created_at;autoCreateTime"`
	SessionInstanceUpdatedAt time.Time `gorm:"column:session_instance_updated_at;autoUpdateTime"`
}

func (SessionInstanceModel) TableName() string { return "session_instances" }

func (m *SessionInstanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.SessionInstanceID == uuid.Nil {
		m.SessionInstanceID = uuid.New()
	}
	return nil
}
