// file: internals/features/booking/instances/dto/session_instance_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	instanceModel "bookingku_backend/internals/features/booking/instances/model"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
)

/* =========================
   Responses
========================= */

// Item listing publik: instance + info template + sisa kapasitas terhitung.
type SessionInstanceResponse struct {
	ID         uuid.UUID `json:"id"`
	TemplateID uuid.UUID `json:"template_id"`
	OrgID      uuid.UUID `json:"org_id"`

	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`

	StartAt time.Time `json:"start_at"` // UTC
	EndAt   time.Time `json:"end_at"`
	Status  string    `json:"status"`

	Capacity  int  `json:"capacity"`
	Remaining int  `json:"remaining"`
	IsFull    bool `json:"is_full"`

	PricingMode string `json:"pricing_mode"`
	PriceAmount *int64 `json:"price_amount,omitempty"`
}

func FromInstanceModel(m instanceModel.SessionInstanceModel, tpl tmplModel.SessionTemplateModel, remaining int) SessionInstanceResponse {
	return SessionInstanceResponse{
		ID:          m.SessionInstanceID,
		TemplateID:  m.SessionInstanceTemplateID,
		OrgID:       m.SessionInstanceOrgID,
		Name:        tpl.SessionTemplateName,
		Description: tpl.SessionTemplateDescription,
		StartAt:     m.SessionInstanceStartAt.UTC(),
		EndAt:       m.SessionInstanceEndAt.UTC(),
		Status:      string(m.SessionInstanceStatus),
		Capacity:    tpl.SessionTemplateCapacity,
		Remaining:   remaining,
		IsFull:      remaining <= 0,
		PricingMode: string(tpl.SessionTemplatePricingMode),
		PriceAmount: tpl.SessionTemplatePriceAmount,
	}
}
