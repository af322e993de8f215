// file: internals/features/booking/templates/controller/session_template_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingService "bookingku_backend/internals/features/booking/bookings/service"
	"bookingku_backend/internals/features/booking/templates/dto"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
	tmplService "bookingku_backend/internals/features/booking/templates/service"
	helper "bookingku_backend/internals/helpers"
	helperAuth "bookingku_backend/internals/helpers/auth"
)

type SessionTemplateController struct {
	DB        *gorm.DB
	Generator *tmplService.GeneratorService
	Engine    *bookingService.Engine
}

func NewSessionTemplateController(db *gorm.DB, gen *tmplService.GeneratorService, engine *bookingService.Engine) *SessionTemplateController {
	return &SessionTemplateController{DB: db, Generator: gen, Engine: engine}
}

var validate = validator.New()

/* =========================
   Create
========================= */

// POST /api/a/session-templates
func (ctl *SessionTemplateController) Create(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateSessionTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if req.IsRecurring && len(req.Schedules) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Template recurring wajib punya minimal 1 schedule")
	}
	if !req.IsRecurring && len(req.OneOffEntries) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Template non-recurring wajib punya minimal 1 one-off entry")
	}
	if req.PricingMode == string(tmplModel.PricingPaid) && req.PriceAmount == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Template berbayar wajib punya price_amount")
	}

	tpl, schedules, err := req.ToModels(orgID, userID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := ctl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tpl).Error; err != nil {
			return err
		}
		for i := range schedules {
			schedules[i].SessionScheduleTemplateID = tpl.SessionTemplateID
		}
		if len(schedules) > 0 {
			if err := tx.Create(&schedules).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		log.Println("[ERROR] create session template:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat template")
	}

	// Materialisasi awal. Gagal generate ≠ gagal create — generator idempotent
	// dan akan self-heal di trigger berikutnya.
	if n, err := ctl.Generator.GenerateInstances(c.Context(), tpl.SessionTemplateID); err != nil {
		log.Printf("[WARN] generate instances template=%s: %v", tpl.SessionTemplateID, err)
	} else {
		log.Printf("[INFO] template=%s instances created=%d", tpl.SessionTemplateID, n)
	}

	tpl.SessionTemplateSchedules = schedules
	return helper.JsonCreated(c, "Template berhasil dibuat", dto.FromTemplateModel(tpl))
}

/* =========================
   Read
========================= */

// GET /api/a/session-templates/:id
func (ctl *SessionTemplateController) GetByID(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var tpl tmplModel.SessionTemplateModel
	if err := ctl.DB.
		Preload("SessionTemplateSchedules").
		Where("session_template_org_id = ?", orgID).
		First(&tpl, "session_template_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Template tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil template")
	}
	return helper.JsonOK(c, "ok", dto.FromTemplateModel(tpl))
}

// GET /api/a/session-templates?page=&per_page=&q=
func (ctl *SessionTemplateController) List(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.Model(&tmplModel.SessionTemplateModel{}).
		Where("session_template_org_id = ?", orgID)
	if kw := strings.TrimSpace(c.Query("q")); kw != "" {
		q = q.Where("LOWER(session_template_name) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung template")
	}

	var list []tmplModel.SessionTemplateModel
	if err := q.
		Preload("SessionTemplateSchedules").
		Order("session_template_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&list).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil template")
	}

	resp := make([]dto.SessionTemplateResponse, 0, len(list))
	for _, m := range list {
		resp = append(resp, dto.FromTemplateModel(m))
	}
	return helper.JsonList(c, "ok", resp, helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

/* =========================
   Update
========================= */

// PATCH /api/a/session-templates/:id
// Perubahan schedule/durasi menginvalidasi instance masa depan (booking aktif
// di dalamnya dibatalkan + refund) lalu generate ulang dari pola baru.
// Instance masa lalu tidak pernah disentuh.
func (ctl *SessionTemplateController) Patch(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var tpl tmplModel.SessionTemplateModel
	if err := ctl.DB.
		Where("session_template_org_id = ?", orgID).
		First(&tpl, "session_template_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Template tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil template")
	}

	var req dto.UpdateSessionTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["session_template_name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["session_template_description"] = *req.Description
	}
	if req.Capacity != nil {
		updates["session_template_capacity"] = *req.Capacity
	}
	if req.PricingMode != nil {
		updates["session_template_pricing_mode"] = *req.PricingMode
	}
	if req.PriceAmount != nil {
		updates["session_template_price_amount"] = *req.PriceAmount
	}
	if req.Visibility != nil {
		updates["session_template_visibility"] = *req.Visibility
	}
	if req.RecurrenceStartDate != nil {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(*req.RecurrenceStartDate))
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "recurrence_start_date tidak valid")
		}
		updates["session_template_recurrence_start_date"] = t
	}
	if req.RecurrenceEndDate != nil {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(*req.RecurrenceEndDate))
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "recurrence_end_date tidak valid")
		}
		updates["session_template_recurrence_end_date"] = t
	}

	scheduleChanged := req.Schedules != nil || req.RecurrenceStartDate != nil || req.RecurrenceEndDate != nil
	if req.DurationMinutes != nil && *req.DurationMinutes != tpl.SessionTemplateDurationMinutes {
		updates["session_template_duration_minutes"] = *req.DurationMinutes
		scheduleChanged = true
	}

	var newSchedules []tmplModel.SessionScheduleModel
	if req.Schedules != nil {
		for _, in := range req.Schedules {
			day, err := tmplService.ParseDayToken(in.Day)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
			}
			if _, _, err := tmplService.ParseTimeOfDay(in.Time); err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
			}
			newSchedules = append(newSchedules, tmplModel.SessionScheduleModel{
				SessionScheduleTemplateID:      tpl.SessionTemplateID,
				SessionScheduleDayOfWeek:       int(day),
				SessionScheduleStartTime:       strings.TrimSpace(in.Time),
				SessionScheduleDurationMinutes: in.DurationMinutes,
			})
		}
	}

	if err := ctl.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&tmplModel.SessionTemplateModel{}).
				Where("session_template_id = ?", tpl.SessionTemplateID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Schedules != nil {
			// replace seluruh set schedule
			if err := tx.
				Where("session_schedule_template_id = ?", tpl.SessionTemplateID).
				Delete(&tmplModel.SessionScheduleModel{}).Error; err != nil {
				return err
			}
			if len(newSchedules) > 0 {
				if err := tx.Create(&newSchedules).Error; err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		log.Println("[ERROR] patch session template:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui template")
	}

	if scheduleChanged {
		if n, err := ctl.Engine.InvalidateFutureInstances(c.Context(), tpl.SessionTemplateID); err != nil {
			log.Printf("[ERROR] invalidasi instance template=%s: %v", tpl.SessionTemplateID, err)
		} else if n > 0 {
			log.Printf("[INFO] template=%s instance masa depan dihapus=%d", tpl.SessionTemplateID, n)
		}
		if _, err := ctl.Generator.GenerateInstances(c.Context(), tpl.SessionTemplateID); err != nil {
			log.Printf("[WARN] regenerate instances template=%s: %v", tpl.SessionTemplateID, err)
		}
	}

	var fresh tmplModel.SessionTemplateModel
	if err := ctl.DB.
		Preload("SessionTemplateSchedules").
		First(&fresh, "session_template_id = ?", tpl.SessionTemplateID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil template")
	}
	return helper.JsonUpdated(c, "Template berhasil diperbarui", dto.FromTemplateModel(fresh))
}

/* =========================
   Delete
========================= */

// DELETE /api/a/session-templates/:id
// Soft delete. Instance masa depan ikut dibersihkan (booking aktif dibatalkan
// dengan refund); history masa lalu tetap utuh.
func (ctl *SessionTemplateController) Delete(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var tpl tmplModel.SessionTemplateModel
	if err := ctl.DB.
		Where("session_template_org_id = ?", orgID).
		First(&tpl, "session_template_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Template tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil template")
	}

	if _, err := ctl.Engine.InvalidateFutureInstances(c.Context(), tpl.SessionTemplateID); err != nil {
		log.Printf("[ERROR] invalidasi instance template=%s saat delete: %v", tpl.SessionTemplateID, err)
	}

	if err := ctl.DB.Delete(&tpl).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus template")
	}
	return helper.JsonDeleted(c, "Template berhasil dihapus", fiber.Map{"id": tpl.SessionTemplateID})
}

/* =========================
   Generate (manual)
========================= */

// POST /api/a/session-templates/:id/generate
// Trigger materialisasi manual — idempotent, aman dipanggil kapan pun.
func (ctl *SessionTemplateController) Generate(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var tpl tmplModel.SessionTemplateModel
	if err := ctl.DB.
		Where("session_template_org_id = ?", orgID).
		First(&tpl, "session_template_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Template tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil template")
	}

	n, err := ctl.Generator.GenerateInstances(c.Context(), tpl.SessionTemplateID)
	if err != nil {
		if errors.Is(err, tmplService.ErrNoSchedules) {
			return helper.JsonError(c, fiber.StatusBadRequest, "Template tidak punya schedule/one-off entry")
		}
		log.Printf("[ERROR] generate template=%s: %v", tpl.SessionTemplateID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal generate instance")
	}
	return helper.JsonOK(c, "Generate selesai", fiber.Map{"created": n})
}
