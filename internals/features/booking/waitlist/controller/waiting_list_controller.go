// file: internals/features/booking/waitlist/controller/waiting_list_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	instModel "bookingku_backend/internals/features/booking/instances/model"
	"bookingku_backend/internals/features/booking/waitlist/dto"
	wlModel "bookingku_backend/internals/features/booking/waitlist/model"
	wlService "bookingku_backend/internals/features/booking/waitlist/service"
	helper "bookingku_backend/internals/helpers"
)

// Endpoint publik — identitas cukup email, tanpa akun.
type WaitingListController struct {
	DB      *gorm.DB
	Service *wlService.Service
}

func NewWaitingListController(db *gorm.DB, svc *wlService.Service) *WaitingListController {
	return &WaitingListController{DB: db, Service: svc}
}

var validate = validator.New()

// POST /api/public/waiting-list
// Idempotent per (instance, email): re-join mengembalikan posisi existing.
func (ctl *WaitingListController) Join(c *fiber.Ctx) error {
	var req dto.JoinWaitingListRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var inst instModel.SessionInstanceModel
	if err := ctl.DB.First(&inst, "session_instance_id = ?", req.InstanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Sesi tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil sesi")
	}
	if inst.SessionInstanceStatus == instModel.InstanceCancelled {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Sesi sudah dibatalkan")
	}

	pos, entry, err := ctl.Service.Join(c.Context(), wlService.JoinInput{
		InstanceID:     inst.SessionInstanceID,
		TemplateID:     inst.SessionInstanceTemplateID,
		Email:          req.Email,
		FirstName:      req.FirstName,
		RequestedSpots: req.RequestedSpots,
	})
	if err != nil {
		if errors.Is(err, wlService.ErrInvalidSpots) {
			return helper.JsonError(c, fiber.StatusBadRequest, "Jumlah spot minimal 1")
		}
		log.Println("[ERROR] join waiting list:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal bergabung ke waiting list")
	}
	return helper.JsonCreated(c, "Terdaftar di waiting list", dto.FromEntryModel(*entry, pos))
}

// GET /api/public/waiting-list/check?instance_id=&email=
func (ctl *WaitingListController) Check(c *fiber.Ctx) error {
	instanceID, err := uuid.Parse(strings.TrimSpace(c.Query("instance_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "instance_id wajib diisi")
	}
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "email wajib diisi")
	}

	entry, err := ctl.Service.CheckEntry(c.Context(), instanceID, email)
	if err != nil {
		log.Println("[ERROR] check waiting list:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa waiting list")
	}
	if entry == nil {
		return helper.JsonOK(c, "ok", dto.WaitingListStatusResponse{OnList: false})
	}

	pos, err := ctl.Service.Position(c.Context(), entry)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung posisi")
	}
	resp := dto.FromEntryModel(*entry, pos)
	return helper.JsonOK(c, "ok", dto.WaitingListStatusResponse{OnList: true, Entry: &resp})
}

// GET /api/a/session-instances/:id/waiting-list
// View admin: seluruh entry aktif berurutan.
func (ctl *WaitingListController) ListByInstance(c *fiber.Ctx) error {
	instanceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var entries []wlModel.WaitingListEntryModel
	if err := ctl.DB.
		Where("waiting_list_entry_instance_id = ?", instanceID).
		Where("waiting_list_entry_notified_at IS NULL").
		Order("waiting_list_entry_created_at ASC, waiting_list_entry_id ASC").
		Find(&entries).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil waiting list")
	}

	resp := make([]dto.WaitingListEntryResponse, 0, len(entries))
	for i, e := range entries {
		resp = append(resp, dto.FromEntryModel(e, i+1))
	}
	return helper.JsonList(c, "ok", resp, nil)
}
