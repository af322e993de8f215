// file: internals/features/booking/templates/model/org_setting_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// OrgSettingModel: konfigurasi per organisasi yang dikonsumsi core booking.
// Organisasi sendiri (membership, billing, dll) di-manage kolaborator eksternal;
// core ini hanya butuh timezone IANA-nya.
type OrgSettingModel struct {
	OrgSettingOrgID    uuid.UUID `gorm:"type:uuid;primaryKey;column:org_setting_org_id"`
	OrgSettingTimezone string    `gorm:"type:varchar(64);not null;default:'Europe/London';column:org_setting_timezone"`

	OrgSettingCreatedAt time.Time `gorm:"column:org_setting_created_at;autoCreateTime"`
	OrgSettingUpdatedAt time.Time `gorm:"column:org_setting_updated_at;autoUpdateTime"`
}

func (OrgSettingModel) TableName() string { return "org_settings" }
