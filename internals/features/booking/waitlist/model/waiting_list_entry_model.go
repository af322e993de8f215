// file: internals/features/booking/waitlist/model/waiting_list_entry_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitingListEntryModel: permintaan N spot pada instance yang penuh.
// Posisi TIDAK disimpan — dihitung dari urutan (created_at, id) di antara
// entry yang belum dinotifikasi. Entry tidak pernah dihapus (audit demand).
type WaitingListEntryModel struct {
	// PK
	WaitingListEntryID uuid.UUID `gorm:"type:uuid;primaryKey;column:waiting_list_entry_id"`

	WaitingListEntryInstanceID uuid.UUID `gorm:"type:uuid;not null;column:waiting_list_entry_instance_id;index"`
	// denormalisasi untuk display (nama sesi di email notifikasi)
	WaitingListEntryTemplateID uuid.UUID `gorm:"type:uuid;not null;column:waiting_list_entry_template_id;index"`

	WaitingListEntryEmail          string  `gorm:"type:varchar(255);not null;column:waiting_list_entry_email;index"`
	WaitingListEntryFirstName      *string `gorm:"type:varchar(100);column:waiting_list_entry_first_name"`
	WaitingListEntryRequestedSpots int     `gorm:"not null;column:waiting_list_entry_requested_spots"`

	WaitingListEntryNotifiedAt *time.Time `gorm:"column:waiting_list_entry_notified_at"`
	WaitingListEntryCreatedAt  time.Time  `gorm:"column:waiting_list_entry_created_at;autoCreateTime"`
}

func (WaitingListEntryModel) TableName() string { return "waiting_list_entries" }

func (m *WaitingListEntryModel) BeforeCreate(tx *gorm.DB) error {
	if m.WaitingListEntryID == uuid.Nil {
		m.WaitingListEntryID = uuid.New()
	}
	return nil
}
