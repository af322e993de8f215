// file: internals/features/booking/templates/dto/session_template_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	tmplModel "bookingku_backend/internals/features/booking/templates/model"
	tmplService "bookingku_backend/internals/features/booking/templates/service"
)

/* =========================
   Requests
========================= */

// Satu aturan mingguan. Day menerima token mon..sun (dinormalisasi ke 0..6).
type ScheduleInput struct {
	Day             string `json:"day" validate:"required"`
	Time            string `json:"time" validate:"required"`
	DurationMinutes *int   `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`
}

type OneOffInput struct {
	Date string `json:"date" validate:"required"` // YYYY-MM-DD
	Time string `json:"time" validate:"required"` // HH:mm
}

type CreateSessionTemplateRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=160"`
	Description     *string `json:"description,omitempty"`
	Capacity        int     `json:"capacity" validate:"required,gt=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0"`

	PricingMode string `json:"pricing_mode,omitempty" validate:"omitempty,oneof=free paid"`
	PriceAmount *int64 `json:"price_amount,omitempty" validate:"omitempty,gt=0"`
	Visibility  string `json:"visibility,omitempty" validate:"omitempty,oneof=open hidden closed"`

	IsRecurring         bool    `json:"is_recurring"`
	RecurrenceStartDate *string `json:"recurrence_start_date,omitempty"` // YYYY-MM-DD
	RecurrenceEndDate   *string `json:"recurrence_end_date,omitempty"`

	Schedules     []ScheduleInput `json:"schedules,omitempty" validate:"omitempty,dive"`
	OneOffEntries []OneOffInput   `json:"one_off_entries,omitempty" validate:"omitempty,dive"`
}

// ToModels memvalidasi token hari & jam lalu membangun model template+schedules.
func (r *CreateSessionTemplateRequest) ToModels(orgID, createdBy uuid.UUID) (tmplModel.SessionTemplateModel, []tmplModel.SessionScheduleModel, error) {
	m := tmplModel.SessionTemplateModel{
		SessionTemplateOrgID:           orgID,
		SessionTemplateCreatedBy:       createdBy,
		SessionTemplateName:            strings.TrimSpace(r.Name),
		SessionTemplateDescription:     r.Description,
		SessionTemplateCapacity:        r.Capacity,
		SessionTemplateDurationMinutes: r.DurationMinutes,
		SessionTemplatePricingMode:     tmplModel.PricingFree,
		SessionTemplateVisibility:      tmplModel.VisibilityOpen,
		SessionTemplateIsRecurring:     r.IsRecurring,
	}
	if r.PricingMode != "" {
		m.SessionTemplatePricingMode = tmplModel.PricingMode(r.PricingMode)
	}
	m.SessionTemplatePriceAmount = r.PriceAmount
	if r.Visibility != "" {
		m.SessionTemplateVisibility = tmplModel.Visibility(r.Visibility)
	}

	if r.RecurrenceStartDate != nil {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(*r.RecurrenceStartDate))
		if err != nil {
			return m, nil, err
		}
		m.SessionTemplateRecurrenceStartDate = &t
	}
	if r.RecurrenceEndDate != nil {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(*r.RecurrenceEndDate))
		if err != nil {
			return m, nil, err
		}
		m.SessionTemplateRecurrenceEndDate = &t
	}

	var schedules []tmplModel.SessionScheduleModel
	for _, in := range r.Schedules {
		day, err := tmplService.ParseDayToken(in.Day)
		if err != nil {
			return m, nil, err
		}
		if _, _, err := tmplService.ParseTimeOfDay(in.Time); err != nil {
			return m, nil, err
		}
		schedules = append(schedules, tmplModel.SessionScheduleModel{
			SessionScheduleDayOfWeek:       int(day),
			SessionScheduleStartTime:       strings.TrimSpace(in.Time),
			SessionScheduleDurationMinutes: in.DurationMinutes,
		})
	}

	if len(r.OneOffEntries) > 0 {
		entries := make([]tmplModel.OneOffEntry, 0, len(r.OneOffEntries))
		for _, in := range r.OneOffEntries {
			if _, err := time.Parse("2006-01-02", in.Date); err != nil {
				return m, nil, err
			}
			if _, _, err := tmplService.ParseTimeOfDay(in.Time); err != nil {
				return m, nil, err
			}
			entries = append(entries, tmplModel.OneOffEntry{Date: in.Date, Time: in.Time})
		}
		m.SessionTemplateOneOffEntries = datatypes.NewJSONSlice(entries)
	}

	return m, schedules, nil
}

// Patch parsial. Schedules non-nil = replace seluruh set (dan invalidasi
// instance masa depan).
type UpdateSessionTemplateRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	Description     *string `json:"description,omitempty"`
	Capacity        *int    `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	DurationMinutes *int    `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`

	PricingMode *string `json:"pricing_mode,omitempty" validate:"omitempty,oneof=free paid"`
	PriceAmount *int64  `json:"price_amount,omitempty" validate:"omitempty,gt=0"`
	Visibility  *string `json:"visibility,omitempty" validate:"omitempty,oneof=open hidden closed"`

	RecurrenceStartDate *string `json:"recurrence_start_date,omitempty"`
	RecurrenceEndDate   *string `json:"recurrence_end_date,omitempty"`

	Schedules []ScheduleInput `json:"schedules,omitempty" validate:"omitempty,dive"`
}

/* =========================
   Responses
========================= */

type ScheduleResponse struct {
	ID              uuid.UUID `json:"id"`
	Day             string    `json:"day"`
	DayOfWeek       int       `json:"day_of_week"`
	Time            string    `json:"time"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
}

type SessionTemplateResponse struct {
	ID              uuid.UUID `json:"id"`
	OrgID           uuid.UUID `json:"org_id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	Capacity        int       `json:"capacity"`
	DurationMinutes int       `json:"duration_minutes"`
	PricingMode     string    `json:"pricing_mode"`
	PriceAmount     *int64    `json:"price_amount,omitempty"`
	Visibility      string    `json:"visibility"`

	IsRecurring         bool    `json:"is_recurring"`
	RecurrenceStartDate *string `json:"recurrence_start_date,omitempty"`
	RecurrenceEndDate   *string `json:"recurrence_end_date,omitempty"`

	Schedules     []ScheduleResponse      `json:"schedules,omitempty"`
	OneOffEntries []tmplModel.OneOffEntry `json:"one_off_entries,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromTemplateModel(m tmplModel.SessionTemplateModel) SessionTemplateResponse {
	resp := SessionTemplateResponse{
		ID:              m.SessionTemplateID,
		OrgID:           m.SessionTemplateOrgID,
		Name:            m.SessionTemplateName,
		Description:     m.SessionTemplateDescription,
		Capacity:        m.SessionTemplateCapacity,
		DurationMinutes: m.SessionTemplateDurationMinutes,
		PricingMode:     string(m.SessionTemplatePricingMode),
		PriceAmount:     m.SessionTemplatePriceAmount,
		Visibility:      string(m.SessionTemplateVisibility),
		IsRecurring:     m.SessionTemplateIsRecurring,
		OneOffEntries:   m.SessionTemplateOneOffEntries,
		CreatedAt:       m.SessionTemplateCreatedAt,
		UpdatedAt:       m.SessionTemplateUpdatedAt,
	}
	if m.SessionTemplateRecurrenceStartDate != nil {
		s := m.SessionTemplateRecurrenceStartDate.Format("2006-01-02")
		resp.RecurrenceStartDate = &s
	}
	if m.SessionTemplateRecurrenceEndDate != nil {
		s := m.SessionTemplateRecurrenceEndDate.Format("2006-01-02")
		resp.RecurrenceEndDate = &s
	}
	for _, s := range m.SessionTemplateSchedules {
		resp.Schedules = append(resp.Schedules, ScheduleResponse{
			ID:              s.SessionScheduleID,
			Day:             tmplService.DayToken(time.Weekday(s.SessionScheduleDayOfWeek)),
			DayOfWeek:       s.SessionScheduleDayOfWeek,
			Time:            s.SessionScheduleStartTime,
			DurationMinutes: s.SessionScheduleDurationMinutes,
		})
	}
	return resp
}
