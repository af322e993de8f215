// file: internals/features/payment/controller/webhook_controller.go
package controller

import (
	"crypto/sha512"
	"encoding/hex"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingModel "bookingku_backend/internals/features/booking/bookings/model"
	paymentService "bookingku_backend/internals/features/payment/service"
	helper "bookingku_backend/internals/helpers"
)

type PaymentWebhookController struct {
	DB *gorm.DB
}

// POST /api/public/payments/webhook
// Notifikasi Midtrans: verifikasi signature, lalu stempel amount_paid ke
// booking saat settlement/capture. amount_paid read-only untuk engine booking.
func (ctl *PaymentWebhookController) HandleNotification(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}

	orderID, _ := body["order_id"].(string)
	statusCode, _ := body["status_code"].(string)
	grossAmount, _ := body["gross_amount"].(string)
	txStatus, _ := body["transaction_status"].(string)
	signature, _ := body["signature_key"].(string)

	if orderID == "" || txStatus == "" {
		log.Println("[ERROR] Payload webhook tidak lengkap:", body)
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak lengkap")
	}

	// signature = sha512(order_id + status_code + gross_amount + server_key)
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + paymentService.ServerKey()))
	if !strings.EqualFold(hex.EncodeToString(sum[:]), signature) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Signature tidak valid")
	}

	// order id format: booking-<uuid>
	bookingID, err := uuid.Parse(strings.TrimPrefix(orderID, "booking-"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Order ID tidak dikenal")
	}

	var booking bookingModel.BookingModel
	if err := ctl.DB.First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		log.Println("[ERROR] Booking untuk webhook tidak ditemukan:", orderID)
		return helper.JsonError(c, fiber.StatusNotFound, "Booking tidak ditemukan")
	}

	switch txStatus {
	case "capture", "settlement":
		amount := int64(0)
		if f, err := strconv.ParseFloat(grossAmount, 64); err == nil {
			amount = int64(f)
		}
		updates := map[string]any{
			"booking_amount_paid": amount,
			"booking_order_id":    orderID,
			"booking_updated_at":  time.Now().UTC(),
		}
		if err := ctl.DB.Model(&bookingModel.BookingModel{}).
			Where("booking_id = ?", booking.BookingID).
			Updates(updates).Error; err != nil {
			log.Println("[ERROR] Gagal simpan amount_paid:", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan status pembayaran")
		}
	case "expire", "cancel", "deny":
		log.Printf("[INFO] Pembayaran %s status=%s (tidak ada perubahan booking)", orderID, txStatus)
	default:
		log.Println("[INFO] Status tidak diproses:", txStatus)
	}

	return helper.JsonOK(c, "webhook processed", fiber.Map{"order_id": orderID})
}
