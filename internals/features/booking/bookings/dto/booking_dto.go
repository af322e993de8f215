// file: internals/features/booking/bookings/dto/booking_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	bookingModel "bookingku_backend/internals/features/booking/bookings/model"
)

/* =========================
   Requests
========================= */

// Identitas sesi yang diminta = (template_id, start_at UTC), bukan instance id,
// supaya klien bisa booking langsung dari jadwal tanpa tahu instance sudah
// dimaterialisasi atau belum.
type CreateBookingRequest struct {
	TemplateID uuid.UUID `json:"template_id" validate:"required"`
	StartAt    time.Time `json:"start_at" validate:"required"` // RFC3339
	Spots      int       `json:"spots" validate:"required,gt=0"`
	Notes      *string   `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type MoveBookingRequest struct {
	DestinationInstanceID uuid.UUID `json:"destination_instance_id" validate:"required"`
	// true = abaikan cek kapasitas tujuan (overbook sadar oleh admin)
	Override bool `json:"override"`
}

/* =========================
   Responses
========================= */

type BookingResponse struct {
	ID         uuid.UUID `json:"id"`
	InstanceID uuid.UUID `json:"instance_id"`
	UserID     uuid.UUID `json:"user_id"`
	OrgID      uuid.UUID `json:"org_id"`

	NumberOfSpots int     `json:"number_of_spots"`
	Status        string  `json:"status"`
	Notes         *string `json:"notes,omitempty"`

	AmountPaid  *int64     `json:"amount_paid,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Untuk booking template berbayar: token checkout disertakan di response create.
type CreateBookingResponse struct {
	Booking     BookingResponse `json:"booking"`
	SnapToken   string          `json:"snap_token,omitempty"`
	RedirectURL string          `json:"redirect_url,omitempty"`
}

type CancelBookingResponse struct {
	Booking          BookingResponse `json:"booking"`
	Refunded         bool            `json:"refunded"`
	AlreadyCancelled bool            `json:"already_cancelled"`
}

func FromBookingModel(m bookingModel.BookingModel) BookingResponse {
	return BookingResponse{
		ID:            m.BookingID,
		InstanceID:    m.BookingInstanceID,
		UserID:        m.BookingUserID,
		OrgID:         m.BookingOrgID,
		NumberOfSpots: m.BookingNumberOfSpots,
		Status:        string(m.BookingStatus),
		Notes:         m.BookingNotes,
		AmountPaid:    m.BookingAmountPaid,
		CancelledAt:   m.BookingCancelledAt,
		CreatedAt:     m.BookingCreatedAt,
		UpdatedAt:     m.BookingUpdatedAt,
	}
}

func FromBookingModels(ms []bookingModel.BookingModel) []BookingResponse {
	out := make([]BookingResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromBookingModel(m))
	}
	return out
}
