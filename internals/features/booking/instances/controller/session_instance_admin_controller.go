// file: internals/features/booking/instances/controller/session_instance_admin_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingService "bookingku_backend/internals/features/booking/bookings/service"
	"bookingku_backend/internals/features/booking/instances/dto"
	instModel "bookingku_backend/internals/features/booking/instances/model"
	availService "bookingku_backend/internals/features/booking/instances/service"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
	helper "bookingku_backend/internals/helpers"
	helperAuth "bookingku_backend/internals/helpers/auth"
)

type SessionInstanceAdminController struct {
	DB           *gorm.DB
	Availability *availService.AvailabilityService
	Engine       *bookingService.Engine
}

func NewSessionInstanceAdminController(db *gorm.DB, engine *bookingService.Engine) *SessionInstanceAdminController {
	return &SessionInstanceAdminController{
		DB:           db,
		Availability: availService.NewAvailabilityService(db),
		Engine:       engine,
	}
}

// GET /api/a/session-instances?template_id=&from=&to=
// Listing admin: semua visibility, termasuk instance cancelled.
func (ctl *SessionInstanceAdminController) List(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}

	q := ctl.DB.Model(&instModel.SessionInstanceModel{}).
		Where("session_instance_org_id = ?", orgID)
	if s := strings.TrimSpace(c.Query("template_id")); s != "" {
		tid, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "template_id tidak valid")
		}
		q = q.Where("session_instance_template_id = ?", tid)
	}
	if s := strings.TrimSpace(c.Query("from")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "from tidak valid (YYYY-MM-DD)")
		}
		q = q.Where("session_instance_start_at >= ?", t)
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "to tidak valid (YYYY-MM-DD)")
		}
		q = q.Where("session_instance_start_at < ?", t.AddDate(0, 0, 1))
	}

	var instances []instModel.SessionInstanceModel
	if err := q.Order("session_instance_start_at ASC").Find(&instances).Error; err != nil {
		log.Println("[ERROR] list instance admin:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil instance")
	}

	// template lookup (kapasitas & nama)
	tplIDs := make([]uuid.UUID, 0, len(instances))
	seen := map[uuid.UUID]struct{}{}
	for _, inst := range instances {
		if _, ok := seen[inst.SessionInstanceTemplateID]; !ok {
			seen[inst.SessionInstanceTemplateID] = struct{}{}
			tplIDs = append(tplIDs, inst.SessionInstanceTemplateID)
		}
	}
	tplByID := map[uuid.UUID]tmplModel.SessionTemplateModel{}
	if len(tplIDs) > 0 {
		var templates []tmplModel.SessionTemplateModel
		if err := ctl.DB.Unscoped().
			Where("session_template_id IN ?", tplIDs).
			Find(&templates).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil template")
		}
		for _, t := range templates {
			tplByID[t.SessionTemplateID] = t
		}
	}

	capacityByInstance := make(map[uuid.UUID]int, len(instances))
	for _, inst := range instances {
		capacityByInstance[inst.SessionInstanceID] = tplByID[inst.SessionInstanceTemplateID].SessionTemplateCapacity
	}
	remaining, err := ctl.Availability.RemainingByInstance(c.Context(), capacityByInstance)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung sisa kapasitas")
	}

	resp := make([]dto.SessionInstanceResponse, 0, len(instances))
	for _, inst := range instances {
		resp = append(resp, dto.FromInstanceModel(inst, tplByID[inst.SessionInstanceTemplateID], remaining[inst.SessionInstanceID]))
	}
	return helper.JsonList(c, "ok", resp, nil)
}

// DELETE /api/a/session-instances/:id
// Batalkan satu kemunculan: instance → cancelled, semua booking aktif
// dibatalkan lewat jalur refund.
func (ctl *SessionInstanceAdminController) Cancel(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var inst instModel.SessionInstanceModel
	if err := ctl.DB.
		Where("session_instance_org_id = ?", orgID).
		First(&inst, "session_instance_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Instance tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil instance")
	}

	cancelled, err := ctl.Engine.CancelInstanceWithRefunds(c.Context(), inst.SessionInstanceID)
	if err != nil {
		log.Printf("[ERROR] cancel instance %s: %v", inst.SessionInstanceID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membatalkan instance")
	}
	return helper.JsonDeleted(c, "Instance dibatalkan", fiber.Map{
		"id":                 inst.SessionInstanceID,
		"bookings_cancelled": cancelled,
	})
}
