// file: internals/features/booking/bookings/controller/booking_admin_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookingku_backend/internals/features/booking/bookings/dto"
	bookingModel "bookingku_backend/internals/features/booking/bookings/model"
	bookingService "bookingku_backend/internals/features/booking/bookings/service"
	helper "bookingku_backend/internals/helpers"
	helperAuth "bookingku_backend/internals/helpers/auth"
)

type BookingAdminController struct {
	DB     *gorm.DB
	Engine *bookingService.Engine
}

func NewBookingAdminController(db *gorm.DB, engine *bookingService.Engine) *BookingAdminController {
	return &BookingAdminController{DB: db, Engine: engine}
}

// GET /api/a/session-instances/:id/bookings
// Roster satu kemunculan (untuk check-in di lokasi).
func (ctl *BookingAdminController) ListByInstance(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	instanceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var list []bookingModel.BookingModel
	if err := ctl.DB.
		Where("booking_org_id = ?", orgID).
		Where("booking_instance_id = ?", instanceID).
		Order("booking_created_at ASC").
		Find(&list).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil booking")
	}
	return helper.JsonList(c, "ok", dto.FromBookingModels(list), nil)
}

// POST /api/a/bookings/:id/move
// Booking yang sama pindah instance — id, payment, jumlah spot dipertahankan.
// override=true melewati capacity check destinasi (overbook sadar), tidak
// pernah melewati check tenant.
func (ctl *BookingAdminController) Move(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var req dto.MoveBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	// scope tenant admin
	var booking bookingModel.BookingModel
	if err := ctl.DB.
		Where("booking_org_id = ?", orgID).
		First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Booking tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil booking")
	}

	moved, err := ctl.Engine.MoveBookingToInstance(c.Context(), booking.BookingID, req.DestinationInstanceID, req.Override)
	if err != nil {
		if ce, ok := bookingService.IsCapacityExceeded(err); ok {
			return helper.JsonErrorWithDetails(c, fiber.StatusConflict, "Kapasitas destinasi tidak cukup",
				map[string]any{"remaining": ce.Remaining})
		}
		switch {
		case errors.Is(err, bookingService.ErrInstanceNotFound):
			return helper.JsonError(c, fiber.StatusNotFound, "Instance destinasi tidak ditemukan")
		case errors.Is(err, bookingService.ErrForbidden):
			return helper.JsonError(c, fiber.StatusForbidden, "Akses ditolak")
		case errors.Is(err, bookingService.ErrInstanceCancelled):
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Instance destinasi sudah dibatalkan")
		case errors.Is(err, bookingService.ErrBookingCancelled):
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Booking sudah dibatalkan")
		}
		log.Printf("[ERROR] move booking %s: %v", booking.BookingID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memindahkan booking")
	}
	return helper.JsonUpdated(c, "Booking dipindahkan", dto.FromBookingModel(*moved))
}

// POST /api/a/bookings/:id/check-in
// Toggle confirmed⇄completed (salah tap bisa di-tap ulang).
func (ctl *BookingAdminController) CheckIn(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var booking bookingModel.BookingModel
	if err := ctl.DB.
		Where("booking_org_id = ?", orgID).
		First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Booking tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil booking")
	}

	updated, err := ctl.Engine.CheckInBooking(c.Context(), booking.BookingID)
	if err != nil {
		if errors.Is(err, bookingService.ErrBookingCancelled) {
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Booking sudah dibatalkan")
		}
		log.Printf("[ERROR] check-in booking %s: %v", booking.BookingID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal check-in")
	}
	return helper.JsonUpdated(c, "Status check-in diperbarui", dto.FromBookingModel(*updated))
}

// DELETE /api/a/bookings/:id
// Cancel oleh admin — jalur refund yang sama dengan cancel user.
func (ctl *BookingAdminController) Cancel(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var booking bookingModel.BookingModel
	if err := ctl.DB.
		Where("booking_org_id = ?", orgID).
		First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Booking tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil booking")
	}

	res, err := ctl.Engine.CancelBookingWithRefund(c.Context(), booking.BookingID)
	if err != nil {
		log.Printf("[ERROR] admin cancel booking %s: %v", booking.BookingID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membatalkan booking")
	}

	var fresh bookingModel.BookingModel
	if err := ctl.DB.First(&fresh, "booking_id = ?", booking.BookingID).Error; err != nil {
		fresh = booking
	}
	return helper.JsonOK(c, "Booking dibatalkan", dto.CancelBookingResponse{
		Booking:          dto.FromBookingModel(fresh),
		Refunded:         res.Refunded,
		AlreadyCancelled: res.AlreadyCancelled,
	})
}
