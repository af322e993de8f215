// file: internals/features/booking/bookings/controller/booking_user_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookingku_backend/internals/features/booking/bookings/dto"
	bookingModel "bookingku_backend/internals/features/booking/bookings/model"
	bookingService "bookingku_backend/internals/features/booking/bookings/service"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
	paymentService "bookingku_backend/internals/features/payment/service"
	helper "bookingku_backend/internals/helpers"
	helperAuth "bookingku_backend/internals/helpers/auth"
)

type BookingUserController struct {
	DB     *gorm.DB
	Engine *bookingService.Engine
}

func NewBookingUserController(db *gorm.DB, engine *bookingService.Engine) *BookingUserController {
	return &BookingUserController{DB: db, Engine: engine}
}

var validate = validator.New()

/* =========================
   Create
========================= */

// POST /api/u/bookings
// Kapasitas penuh → 409 + details.remaining, supaya frontend bisa langsung
// menawarkan join waiting list. Template berbayar → response menyertakan Snap
// token; gagal buat token TIDAK membatalkan booking (user bisa retry bayar).
func (ctl *BookingUserController) Create(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	booking, err := ctl.Engine.CreateBooking(c.Context(), bookingService.CreateBookingInput{
		TemplateID: req.TemplateID,
		OrgID:      orgID,
		UserID:     userID,
		StartAt:    req.StartAt,
		Spots:      req.Spots,
		Notes:      req.Notes,
	})
	if err != nil {
		if ce, ok := bookingService.IsCapacityExceeded(err); ok {
			return helper.JsonErrorWithDetails(c, fiber.StatusConflict, "Kapasitas tidak cukup",
				map[string]any{"remaining": ce.Remaining})
		}
		switch {
		case errors.Is(err, bookingService.ErrTemplateNotFound):
			return helper.JsonError(c, fiber.StatusNotFound, "Template tidak ditemukan")
		case errors.Is(err, bookingService.ErrForbidden):
			return helper.JsonError(c, fiber.StatusForbidden, "Akses ditolak")
		case errors.Is(err, bookingService.ErrTemplateClosed):
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Sesi sudah ditutup untuk booking")
		case errors.Is(err, bookingService.ErrInstanceCancelled):
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Sesi sudah dibatalkan")
		case errors.Is(err, bookingService.ErrInvalidSpots):
			return helper.JsonError(c, fiber.StatusBadRequest, "Jumlah spot minimal 1")
		}
		log.Println("[ERROR] create booking:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat booking")
	}

	resp := dto.CreateBookingResponse{Booking: dto.FromBookingModel(*booking)}

	var tpl tmplModel.SessionTemplateModel
	if err := ctl.DB.First(&tpl, "session_template_id = ?", req.TemplateID).Error; err == nil &&
		tpl.SessionTemplatePricingMode == tmplModel.PricingPaid {
		token, redirect, err := paymentService.GenerateSnapToken(booking, &tpl, helperAuth.GetEmailFromToken(c))
		if err != nil {
			log.Printf("[WARN] snap token booking %s gagal: %v", booking.BookingID, err)
		} else {
			resp.SnapToken = token
			resp.RedirectURL = redirect
		}
	}

	return helper.JsonCreated(c, "Booking berhasil dibuat", resp)
}

/* =========================
   Read
========================= */

// GET /api/u/bookings
func (ctl *BookingUserController) ListMine(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.Model(&bookingModel.BookingModel{}).
		Where("booking_user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung booking")
	}

	var list []bookingModel.BookingModel
	if err := q.Order("booking_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&list).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil booking")
	}
	return helper.JsonList(c, "ok", dto.FromBookingModels(list), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// GET /api/u/bookings/:id
func (ctl *BookingUserController) GetByID(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var booking bookingModel.BookingModel
	if err := ctl.DB.
		Where("booking_user_id = ?", userID).
		First(&booking, "booking_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Booking tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil booking")
	}
	return helper.JsonOK(c, "ok", dto.FromBookingModel(booking))
}

/* =========================
   Cancel
========================= */

// DELETE /api/u/bookings/:id
// Double-cancel = sukses idempotent. Refund gagal tetap cancel (refunded=false).
func (ctl *BookingUserController) Cancel(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	// ownership check sebelum menyentuh engine
	var booking bookingModel.BookingModel
	if err := ctl.DB.
		Where("booking_user_id = ?", userID).
		First(&booking, "booking_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Booking tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil booking")
	}

	res, err := ctl.Engine.CancelBookingWithRefund(c.Context(), booking.BookingID)
	if err != nil {
		log.Printf("[ERROR] cancel booking %s: %v", booking.BookingID, err)
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
