// file: internals/features/booking/bookings/model/booking_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingModel: reservasi N spot pada satu instance oleh satu user.
type BookingModel struct {
	// PK
	BookingID uuid.UUID `gorm:"type:uuid;primaryKey;column:booking_id"`

	BookingInstanceID uuid.UUID `gorm:"type:uuid;not null;column:booking_instance_id;index"`
	BookingUserID     uuid.UUID `gorm:"type:uuid;not null;column:booking_user_id;index"`
	// Tenant (denormalisasi — guard cross-org tanpa join)
	BookingOrgID uuid.UUID `gorm:"type:uuid;not null;column:booking_org_id;index"`

	BookingNumberOfSpots int           `gorm:"not null;column:booking_number_of_spots"`
	BookingStatus        BookingStatus `gorm:"type:varchar(10);not null;default:'confirmed';column:booking_status"`
	BookingNotes         *string       `gorm:"type:text;column:booking_notes"`

	// Ditulis kolaborator pembayaran (webhook); minor units. null/0 = gratis.
	BookingAmountPaid *int64 `gorm:"column:booking_amount_paid"`
	// Order ID di payment gateway (lookup webhook & refund)
	BookingOrderID *string `gorm:"type:varchar(64);column:booking_order_id;index"`

	BookingCancelledAt *time.Time `gorm:"column:booking_cancelled_at"`
	BookingCreatedAt   time.Time  `gorm:"column:booking_created_at;autoCreateTime"`
	BookingUpdatedAt   time.Time  `gorm:"column:booking_updated_at;autoUpdateTime"`
}

func (BookingModel) TableName() string { return "bookings" }

func (m *BookingModel) BeforeCreate(tx *gorm.DB) error {
	if m.BookingID == uuid.Nil {
		m.BookingID = uuid.New()
	}
	return nil
}

// CountsTowardCapacity: confirmed & completed sama-sama memakan kapasitas.
func (m *BookingModel) CountsTowardCapacity() bool {
	return m.BookingStatus == BookingConfirmed || m.BookingStatus == BookingCompleted
}
