// file: internals/features/payment/service/midtrans.go
package service

import (
	"context"
	"fmt"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	bookingModel "bookingku_backend/internals/features/booking/bookings/model"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
)

var (
	SnapClient snap.Client
	CoreClient coreapi.Client
	serverKey  string
)

// Panggil saat bootstrap app
func InitMidtrans(key string, useProd bool) {
	env := midtrans.Sandbox
	if useProd {
		env = midtrans.Production
	}
	serverKey = key
	SnapClient.New(key, env)
	CoreClient.New(key, env)
}

func ServerKey() string { return serverKey }

// OrderID konsisten untuk lookup webhook & refund
func OrderIDForBooking(b *bookingModel.BookingModel) string {
	return "booking-" + b.BookingID.String()
}

// GenerateSnapToken: buat Snap token + redirect_url untuk booking berbayar.
// Dipanggil SETELAH booking berhasil dibuat — checkout gagal tidak
// membatalkan booking (user bisa retry bayar).
func GenerateSnapToken(b *bookingModel.BookingModel, tpl *tmplModel.SessionTemplateModel, email string) (string, string, error) {
	if tpl.SessionTemplatePriceAmount == nil || *tpl.SessionTemplatePriceAmount <= 0 {
		return "", "", fmt.Errorf("template %s tidak punya harga", tpl.SessionTemplateID)
	}
	gross := *tpl.SessionTemplatePriceAmount * int64(b.BookingNumberOfSpots)

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  OrderIDForBooking(b),
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			Email: email,
		},
	}

	resp, err := SnapClient.CreateTransaction(req)
	if err != nil {
		return "", "", err
	}
	return resp.Token, resp.RedirectURL, nil
}

// MidtransGateway: implementasi PaymentGateway milik booking engine.
type MidtransGateway struct{}

func NewMidtransGateway() *MidtransGateway { return &MidtransGateway{} }

// IssueRefund me-refund penuh amount_paid booking via Core API.
func (g *MidtransGateway) IssueRefund(ctx context.Context, b *bookingModel.BookingModel) error {
	if b.BookingAmountPaid == nil || *b.BookingAmountPaid <= 0 {
		return nil // tidak ada yang di-refund
	}
	orderID := OrderIDForBooking(b)
	if b.BookingOrderID != nil && *b.BookingOrderID != "" {
		orderID = *b.BookingOrderID
	}

	_, err := CoreClient.RefundTransaction(orderID, &coreapi.RefundReq{
		Amount: *b.BookingAmountPaid,
		Reason: "booking cancelled",
	})
	if err != nil {
		return fmt.Errorf("midtrans refund %s: %w", orderID, err)
	}
	return nil
}
