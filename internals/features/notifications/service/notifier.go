// file: internals/features/notifications/service/notifier.go
package service

import (
	"context"
	"log"

	bookingModel "bookingku_backend/internals/features/booking/bookings/model"
	waitlistModel "bookingku_backend/internals/features/booking/waitlist/model"
)

// Notifier: kolaborator notifikasi. Dipanggil SETELAH transisi state commit,
// tidak pernah mem-block atau membatalkan transisi utamanya — kegagalan
// hanya di-log (retry queue di luar tanggung jawab core ini).
type Notifier interface {
	NotifyWaitlistSpotAvailable(ctx context.Context, entry *waitlistModel.WaitingListEntryModel) error
	NotifyBookingCancelled(ctx context.Context, booking *bookingModel.BookingModel) error
}

// LogNotifier: implementasi default — delivery email/WA sebenarnya hidup di
// service terpisah; core cukup mencatat intent-nya.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) NotifyWaitlistSpotAvailable(ctx context.Context, entry *waitlistModel.WaitingListEntryModel) error {
	log.Printf("[NOTIFY] waitlist spot available → entry=%s email=%s spots=%d",
		entry.WaitingListEntryID, entry.WaitingListEntryEmail, entry.WaitingListEntryRequestedSpots)
	return nil
}

func (n *LogNotifier) NotifyBookingCancelled(ctx context.Context, booking *bookingModel.BookingModel) error {
	log.Printf("[NOTIFY] booking cancelled → booking=%s user=%s", booking.BookingID, booking.BookingUserID)
	return nil
}
