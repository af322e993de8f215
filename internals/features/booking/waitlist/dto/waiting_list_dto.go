// file: internals/features/booking/waitlist/dto/waiting_list_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	wlModel "bookingku_backend/internals/features/booking/waitlist/model"
)

/* =========================
   Requests
========================= */

type JoinWaitingListRequest struct {
	InstanceID     uuid.UUID `json:"instance_id" validate:"required"`
	Email          string    `json:"email" validate:"required,email"`
	FirstName      *string   `json:"first_name,omitempty" validate:"omitempty,max=100"`
	RequestedSpots int       `json:"requested_spots" validate:"required,gt=0"`
}

/* =========================
   Responses
========================= */

type WaitingListEntryResponse struct {
	ID             uuid.UUID  `json:"id"`
	InstanceID     uuid.UUID  `json:"instance_id"`
	Email          string     `json:"email"`
	FirstName      *string    `json:"first_name,omitempty"`
	RequestedSpots int        `json:"requested_spots"`
	Position       int        `json:"position"`
	NotifiedAt     *time.Time `json:"notified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Response cek status: on_list=false berarti tidak ada entry aktif.
type WaitingListStatusResponse struct {
	OnList bool                      `json:"on_list"`
	Entry  *WaitingListEntryResponse `json:"entry,omitempty"`
}

func FromEntryModel(m wlModel.WaitingListEntryModel, position int) WaitingListEntryResponse {
	return WaitingListEntryResponse{
		ID:             m.WaitingListEntryID,
		InstanceID:     m.WaitingListEntryInstanceID,
		Email:          m.WaitingListEntryEmail,
		FirstName:      m.WaitingListEntryFirstName,
		RequestedSpots: m.WaitingListEntryRequestedSpots,
		Position:       position,
		NotifiedAt:     m.WaitingListEntryNotifiedAt,
		CreatedAt:      m.WaitingListEntryCreatedAt,
	}
}
