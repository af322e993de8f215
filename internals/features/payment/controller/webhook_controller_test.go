// file: internals/features/payment/controller/webhook_controller_test.go
package controller

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	bookingModel "bookingku_backend/internals/features/booking/bookings/model"
	paymentService "bookingku_backend/internals/features/payment/service"
)

const testServerKey = "test-server-key"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&bookingModel.BookingModel{}))
	return db
}

func newWebhookApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()
	paymentService.InitMidtrans(testServerKey, false)

	app := fiber.New()
	ctl := &PaymentWebhookController{DB: db}
	app.Post("/api/public/payments/webhook", ctl.HandleNotification)
	return app
}

func signPayload(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + testServerKey))
	return hex.EncodeToString(sum[:])
}

func postWebhook(t *testing.T, app *fiber.App, payload map[string]any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, "/api/public/payments/webhook", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestWebhookSettlementStampsAmountPaid(t *testing.T) {
	db := newTestDB(t)
	app := newWebhookApp(t, db)

	booking := bookingModel.BookingModel{
		BookingInstanceID:    uuid.New(),
		BookingUserID:        uuid.New(),
		BookingOrgID:         uuid.New(),
		BookingNumberOfSpots: 2,
		BookingStatus:        bookingModel.BookingConfirmed,
	}
	require.NoError(t, db.Create(&booking).Error)

	orderID := "booking-" + booking.BookingID.String()
	resp := postWebhook(t, app, map[string]any{
		"order_id":           orderID,
		"status_code":        "200",
		"gross_amount":       "3000.00",
		"transaction_status": "settlement",
		"signature_key":      signPayload(orderID, "200", "3000.00"),
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fresh bookingModel.BookingModel
	require.NoError(t, db.First(&fresh, "booking_id = ?", booking.BookingID).Error)
	require.NotNil(t, fresh.BookingAmountPaid)
	assert.EqualValues(t, 3000, *fresh.BookingAmountPaid)
	require.NotNil(t, fresh.BookingOrderID)
	assert.Equal(t, orderID, *fresh.BookingOrderID)
	// webhook tidak menyentuh status booking
	assert.Equal(t, bookingModel.BookingConfirmed, fresh.BookingStatus)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	app := newWebhookApp(t, db)

	booking := bookingModel.BookingModel{
		BookingInstanceID:    uuid.New(),
		BookingUserID:        uuid.New(),
		BookingOrgID:         uuid.New(),
		BookingNumberOfSpots: 1,
		BookingStatus:        bookingModel.BookingConfirmed,
	}
	require.NoError(t, db.Create(&booking).Error)

	orderID := "booking-" + booking.BookingID.String()
	resp := postWebhook(t, app, map[string]any{
		"order_id":           orderID,
		"status_code":        "200",
		"gross_amount":       "3000.00",
		"transaction_status": "settlement",
		"signature_key":      "deadbeef",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var fresh bookingModel.BookingModel
	require.NoError(t, db.First(&fresh, "booking_id = ?", booking.BookingID).Error)
	assert.Nil(t, fresh.BookingAmountPaid)
}

func TestWebhookExpireDoesNotTouchBooking(t *testing.T) {
	db := newTestDB(t)
	app := newWebhookApp(t, db)

	booking := bookingModel.BookingModel{
		BookingInstanceID:    uuid.New(),
		BookingUserID:        uuid.New(),
		BookingOrgID:         uuid.New(),
		BookingNumberOfSpots: 1,
		BookingStatus:        bookingModel.BookingConfirmed,
	}
	require.NoError(t, db.Create(&booking).Error)

	orderID := "booking-" + booking.BookingID.String()
	resp := postWebhook(t, app, map[string]any{
		"order_id":           orderID,
		"status_code":        "407",
		"gross_amount":       "3000.00",
		"transaction_status": "expire",
		"signature_key":      signPayload(orderID, "407", "3000.00"),
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fresh bookingModel.BookingModel
	require.NoError(t, db.First(&fresh, "booking_id = ?", booking.BookingID).Error)
	assert.Nil(t, fresh.BookingAmountPaid)
	assert.Equal(t, bookingModel.BookingConfirmed, fresh.BookingStatus)
}

func TestWebhookUnknownOrder(t *testing.T) {
	db := newTestDB(t)
	app := newWebhookApp(t, db)

	orderID := "booking-" + uuid.New().String()
	resp := postWebhook(t, app, map[string]any{
		"order_id":           orderID,
		"status_code":        "200",
		"gross_amount":       "1000.00",
		"transaction_status": "settlement",
		"signature_key":      signPayload(orderID, "200", "1000.00"),
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
