// file: internals/features/booking/instances/controller/session_instance_public_controller.go
package controller

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookingku_backend/internals/features/booking/instances/dto"
	instModel "bookingku_backend/internals/features/booking/instances/model"
	availService "bookingku_backend/internals/features/booking/instances/service"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
	tmplService "bookingku_backend/internals/features/booking/templates/service"
	helper "bookingku_backend/internals/helpers"
)

// Listing publik untuk kalender booking.
type SessionInstancePublicController struct {
	DB           *gorm.DB
	Availability *availService.AvailabilityService
	Generator    *tmplService.GeneratorService
}

func NewSessionInstancePublicController(db *gorm.DB, gen *tmplService.GeneratorService) *SessionInstancePublicController {
	return &SessionInstancePublicController{
		DB:           db,
		Availability: availService.NewAvailabilityService(db),
		Generator:    gen,
	}
}

// GET /api/public/sessions?org_id=&from=&to=
// Hanya template visibility=open. from/to format YYYY-MM-DD (default: hari ini
// s/d +1 bulan). Setiap item membawa remaining & is_full terhitung.
func (ctl *SessionInstancePublicController) ListPublicSessions(c *fiber.Ctx) error {
	orgID, err := uuid.Parse(strings.TrimSpace(c.Query("org_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "org_id wajib diisi")
	}

	now := time.Now().UTC()
	from := now
	if s := strings.TrimSpace(c.Query("from")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "from tidak valid (YYYY-MM-DD)")
		}
		from = t
	}
	to := from.AddDate(0, 1, 0)
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "to tidak valid (YYYY-MM-DD)")
		}
		to = t.AddDate(0, 0, 1) // inklusif sampai akhir hari
	}

	// Regenerasi lazy di background; request ini tetap jalan dengan data yang ada.
	go ctl.Generator.EnsureUpcoming(orgID)

	var templates []tmplModel.SessionTemplateModel
	if err := ctl.DB.
		Where("session_template_org_id = ?", orgID).
		Where("session_template_visibility = ?", tmplModel.VisibilityOpen).
		Find(&templates).Error; err != nil {
		log.Println("[ERROR] list template publik:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil sesi")
	}
	if len(templates) == 0 {
		return helper.JsonList(c, "ok", []dto.SessionInstanceResponse{}, nil)
	}

	tplByID := make(map[uuid.UUID]tmplModel.SessionTemplateModel, len(templates))
	tplIDs := make([]uuid.UUID, 0, len(templates))
	for _, t := range templates {
		tplByID[t.SessionTemplateID] = t
		tplIDs = append(tplIDs, t.SessionTemplateID)
	}

	var instances []instModel.SessionInstanceModel
	if err := ctl.DB.
		Where("session_instance_template_id IN ?", tplIDs).
		Where("session_instance_status = ?", instModel.InstanceScheduled).
		Where("session_instance_start_at >= ?", from).
		Where("session_instance_start_at < ?", to).
		Order("session_instance_start_at ASC").
		Find(&instances).Error; err != nil {
		log.Println("[ERROR] list instance publik:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil sesi")
	}

	capacityByInstance := make(map[uuid.UUID]int, len(instances))
	for _, inst := range instances {
		capacityByInstance[inst.SessionInstanceID] = tplByID[inst.SessionInstanceTemplateID].SessionTemplateCapacity
	}
	remaining, err := ctl.Availability.RemainingByInstance(c.Context(), capacityByInstance)
	if err != nil {
		log.Println("[ERROR] hitung remaining:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung sisa kapasitas")
	}

	resp := make([]dto.SessionInstanceResponse, 0, len(instances))
	for _, inst := range instances {
		resp = append(resp, dto.FromInstanceModel(inst, tplByID[inst.SessionInstanceTemplateID], remaining[inst.SessionInstanceID]))
	}
	return helper.JsonList(c, "ok", resp, nil)
}
