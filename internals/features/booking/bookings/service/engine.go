// file: internals/features/booking/bookings/service/engine.go
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingModel "bookingku_backend/internals/features/booking/bookings/model"
	instModel "bookingku_backend/internals/features/booking/instances/model"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
	wlService "bookingku_backend/internals/features/booking/waitlist/service"
	notifService "bookingku_backend/internals/features/notifications/service"
)

// PaymentGateway: kolaborator pembayaran. amount_paid ditulis kolaborator
// saat konfirmasi pembayaran; core ini hanya membaca & meminta refund.
type PaymentGateway interface {
	IssueRefund(ctx context.Context, booking *bookingModel.BookingModel) error
}

// Engine: state machine booking.
// (none) → confirmed → {completed, cancelled}; completed⇄confirmed (check-in
// toggle); cancelled terminal. Move tidak mengubah state — booking yang sama
// pindah instance.
type Engine struct {
	DB       *gorm.DB
	Payments PaymentGateway
	Notifier notifService.Notifier
	Waitlist *wlService.Service
}

func NewEngine(db *gorm.DB, payments PaymentGateway, notifier notifService.Notifier, waitlist *wlService.Service) *Engine {
	return &Engine{DB: db, Payments: payments, Notifier: notifier, Waitlist: waitlist}
}

type CreateBookingInput struct {
	TemplateID uuid.UUID
	OrgID      uuid.UUID // tenant pemanggil (dari token)
	UserID     uuid.UUID
	StartAt    time.Time // UTC
	Spots      int
	Notes      *string
}

// CreateBooking: resolve-or-create instance untuk start_time, re-check
// kapasitas DI DALAM transaksi yang sama dengan insert (tutup race antara
// read sisa spot dan commit). Side effect payment/email diinvoke caller
// SETELAH sukses — pembuatan booking tidak boleh gagal karena provider email.
func (e *Engine) CreateBooking(ctx context.Context, in CreateBookingInput) (*bookingModel.BookingModel, error) {
	if in.Spots < 1 {
		return nil, ErrInvalidSpots
	}

	var tpl tmplModel.SessionTemplateModel
	if err := e.DB.WithContext(ctx).
		First(&tpl, "session_template_id = ?", in.TemplateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	// cross-tenant = hard error, bukan di-filter diam-diam
	if tpl.SessionTemplateOrgID != in.OrgID {
		return nil, ErrForbidden
	}
	if tpl.SessionTemplateVisibility == tmplModel.VisibilityClosed {
		return nil, ErrTemplateClosed
	}

	startAt := in.StartAt.UTC()
	var booking bookingModel.BookingModel

	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inst, err := e.findOrCreateInstance(tx, &tpl, startAt)
		if err != nil {
			return err
		}
		if inst.SessionInstanceStatus == instModel.InstanceCancelled {
			return ErrInstanceCancelled
		}

		remaining, err := remainingInTx(tx, inst.SessionInstanceID, tpl.SessionTemplateCapacity)
		if err != nil {
			return err
		}
		if in.Spots > remaining {
			return &CapacityExceededError{Remaining: remaining}
		}

		booking = bookingModel.BookingModel{
			BookingInstanceID:    inst.SessionInstanceID,
			BookingUserID:        in.UserID,
			BookingOrgID:         tpl.SessionTemplateOrgID,
			BookingNumberOfSpots: in.Spots,
			BookingStatus:        bookingModel.BookingConfirmed,
			BookingNotes:         in.Notes,
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// findOrCreateInstance: cari by (template_id, start UTC); kalau belum
// dimaterialisasi (slot tampil dari schedule tapi generator belum jalan),
// buat on-demand. end = start + durasi template.
func (e *Engine) findOrCreateInstance(tx *gorm.DB, tpl *tmplModel.SessionTemplateModel, startAt time.Time) (*instModel.SessionInstanceModel, error) {
	var inst instModel.SessionInstanceModel
	err := tx.
		Where("session_instance_template_id = ?", tpl.SessionTemplateID).
		Where("session_instance_start_at = ?", startAt).
		First(&inst).Error
	if err == nil {
		return &inst, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	inst = instModel.SessionInstanceModel{
		SessionInstanceTemplateID: tpl.SessionTemplateID,
		SessionInstanceOrgID:      tpl.SessionTemplateOrgID,
		SessionInstanceStartAt:    startAt,
		SessionInstanceEndAt:      startAt.Add(time.Duration(tpl.SessionTemplateDurationMinutes) * time.Minute),
		SessionInstanceStatus:     instModel.InstanceScheduled,
	}
	if err := tx.Create(&inst).Error; err != nil {
		// race dengan generator/booking lain → baca ulang baris pemenang
		var again instModel.SessionInstanceModel
		if err2 := tx.
			Where("session_instance_template_id = ?", tpl.SessionTemplateID).
			Where("session_instance_start_at = ?", startAt).
			First(&again).Error; err2 == nil {
			return &again, nil
		}
		return nil, err
	}
	return &inst, nil
}

func remainingInTx(tx *gorm.DB, instanceID uuid.UUID, capacity int) (int, error) {
	var booked int64
	err := tx.Model(&bookingModel.BookingModel{}).
		Select("COALESCE(SUM(booking_number_of_spots), 0)").
		Where("booking_instance_id = ?", instanceID).
		Where("booking_status IN ?", []bookingModel.BookingStatus{
			bookingModel.BookingConfirmed, bookingModel.BookingCompleted,
		}).
		Scan(&booked).Error
	if err != nil {
		return 0, err
	}
	remaining := capacity - int(booked)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

type CancelResult struct {
	Refunded         bool
	AlreadyCancelled bool
}

// CancelBookingWithRefund: transisi ke cancelled (durability boundary),
// lalu refund kalau berbayar. Refund gagal TIDAK me-rollback pembatalan —
// spot harus bebas apa pun yang terjadi; kegagalan dicatat untuk rekonsiliasi
// manual dan dilaporkan sebagai refunded=false. Double-cancel = no-op sukses.
func (e *Engine) CancelBookingWithRefund(ctx context.Context, bookingID uuid.UUID) (CancelResult, error) {
	var booking bookingModel.BookingModel
	if err := e.DB.WithContext(ctx).
		First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CancelResult{}, ErrBookingNotFound
		}
		return CancelResult{}, err
	}
	if booking.BookingStatus == bookingModel.BookingCancelled {
		return CancelResult{AlreadyCancelled: true}, nil
	}

	now := time.Now().UTC()
	if err := e.DB.WithContext(ctx).
		Model(&bookingModel.BookingModel{}).
		Where("booking_id = ?", booking.BookingID).
		Updates(map[string]any{
			"booking_status":       bookingModel.BookingCancelled,
			"booking_cancelled_at": now,
		}).Error; err != nil {
		return CancelResult{}, err
	}
	booking.BookingStatus = bookingModel.BookingCancelled
	booking.BookingCancelledAt = &now

	res := CancelResult{}
	if booking.BookingAmountPaid != nil && *booking.BookingAmountPaid > 0 {
		if err := e.Payments.IssueRefund(ctx, &booking); err != nil {
			log.Printf("[ERROR] refund booking %s gagal (perlu rekonsiliasi manual): %v", booking.BookingID, err)
		} else {
			res.Refunded = true
		}
	}

	// kapasitas bertambah → satu-satunya pintu promosi dari pembatalan
	e.promoteAfterFree(ctx, booking.BookingInstanceID)

	if err := e.Notifier.NotifyBookingCancelled(ctx, &booking); err != nil {
		log.Printf("[WARN] notifikasi cancel booking %s gagal: %v", booking.BookingID, err)
	}
	return res, nil
}

// MoveBookingToInstance: pindahkan booking yang SAMA ke instance lain —
// id, status, payment, spot count, notes semua dipertahankan (move bukan
// refund+rebook; selisih harga urusan admin). adminOverride mem-bypass
// capacity check destinasi untuk overbooking manual, TIDAK pernah mem-bypass
// check kepemilikan/tenant.
func (e *Engine) MoveBookingToInstance(ctx context.Context, bookingID, destInstanceID uuid.UUID, adminOverride bool) (*bookingModel.BookingModel, error) {
	var booking bookingModel.BookingModel
	if err := e.DB.WithContext(ctx).
		First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.BookingStatus == bookingModel.BookingCancelled {
		return nil, ErrBookingCancelled
	}

	var dest instModel.SessionInstanceModel
	if err := e.DB.WithContext(ctx).
		First(&dest, "session_instance_id = ?", destInstanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	if dest.SessionInstanceOrgID != booking.BookingOrgID {
		return nil, ErrForbidden
	}
	if dest.SessionInstanceStatus == instModel.InstanceCancelled {
		return nil, ErrInstanceCancelled
	}

	sourceInstanceID := booking.BookingInstanceID
	if sourceInstanceID == destInstanceID {
		return &booking, nil // no-op
	}

	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !adminOverride {
			var tpl tmplModel.SessionTemplateModel
			if err := tx.First(&tpl, "session_template_id = ?", dest.SessionInstanceTemplateID).Error; err != nil {
				return err
			}
			remaining, err := remainingInTx(tx, dest.SessionInstanceID, tpl.SessionTemplateCapacity)
			if err != nil {
				return err
			}
			// headroom yang dibutuhkan = spot milik booking ini
			if booking.BookingNumberOfSpots > remaining {
				return &CapacityExceededError{Remaining: remaining}
			}
		}
		return tx.Model(&bookingModel.BookingModel{}).
			Where("booking_id = ?", booking.BookingID).
			Update("booking_instance_id", dest.SessionInstanceID).Error
	})
	if err != nil {
		return nil, err
	}
	booking.BookingInstanceID = dest.SessionInstanceID

	// kapasitas bebas di SUMBER, bukan destinasi
	e.promoteAfterFree(ctx, sourceInstanceID)

	return &booking, nil
}

// CheckInBooking: toggle confirmed⇄completed. Dua-duanya tetap memakan
// kapasitas, jadi tidak ada implikasi kapasitas ke arah mana pun.
func (e *Engine) CheckInBooking(ctx context.Context, bookingID uuid.UUID) (*bookingModel.BookingModel, error) {
	var booking bookingModel.BookingModel
	if err := e.DB.WithContext(ctx).
		First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.BookingStatus == bookingModel.BookingCancelled {
		return nil, ErrBookingCancelled
	}

	next := bookingModel.BookingCompleted
	if booking.BookingStatus == bookingModel.BookingCompleted {
		next = bookingModel.BookingConfirmed
	}
	if err := e.DB.WithContext(ctx).
		Model(&bookingModel.BookingModel{}).
		Where("booking_id = ?", booking.BookingID).
		Update("booking_status", next).Error; err != nil {
		return nil, err
	}
	booking.BookingStatus = next
	return &booking, nil
}

// CancelInstanceWithRefunds: batalkan satu kemunculan (admin) — instance
// ditandai cancelled, semua booking aktifnya dibatalkan lewat jalur refund
// yang sama. Tidak ada scan promosi: instance-nya sendiri sudah hilang.
func (e *Engine) CancelInstanceWithRefunds(ctx context.Context, instanceID uuid.UUID) (int, error) {
	var inst instModel.SessionInstanceModel
	if err := e.DB.WithContext(ctx).
		First(&inst, "session_instance_id = ?", instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInstanceNotFound
		}
		return 0, err
	}

	if err := e.DB.WithContext(ctx).
		Model(&instModel.SessionInstanceModel{}).
		Where("session_instance_id = ?", instanceID).
		Update("session_instance_status", instModel.InstanceCancelled).Error; err != nil {
		return 0, err
	}

	var bookings []bookingModel.BookingModel
	if err := e.DB.WithContext(ctx).
		Where("booking_instance_id = ?", instanceID).
		Where("booking_status IN ?", []bookingModel.BookingStatus{
			bookingModel.BookingConfirmed, bookingModel.BookingCompleted,
		}).
		Find(&bookings).Error; err != nil {
		return 0, err
	}

	cancelled := 0
	for i := range bookings {
		if _, err := e.CancelBookingWithRefund(ctx, bookings[i].BookingID); err != nil {
			log.Printf("[ERROR] cascade cancel booking %s: %v", bookings[i].BookingID, err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// InvalidateFutureInstances: dipanggil layer template saat schedule/durasi
// berubah — instance masa depan dihapus untuk di-generate ulang; instance
// masa lalu dan booking-nya tidak pernah disentuh. Booking aktif pada
// instance masa depan dibatalkan (dengan refund) sebelum baris dihapus.
func (e *Engine) InvalidateFutureInstances(ctx context.Context, templateID uuid.UUID) (int, error) {
	now := time.Now().UTC()

	var future []instModel.SessionInstanceModel
	if err := e.DB.WithContext(ctx).
		Where("session_instance_template_id = ?", templateID).
		Where("session_instance_start_at > ?", now).
		Find(&future).Error; err != nil {
		return 0, err
	}
	if len(future) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(future))
	for i := range future {
		ids = append(ids, future[i].SessionInstanceID)
	}

	var bookings []bookingModel.BookingModel
	if err := e.DB.WithContext(ctx).
		Where("booking_instance_id IN ?", ids).
		Where("booking_status IN ?", []bookingModel.BookingStatus{
			bookingModel.BookingConfirmed, bookingModel.BookingCompleted,
		}).
		Find(&bookings).Error; err != nil {
		return 0, err
	}
	for i := range bookings {
		if _, err := e.CancelBookingWithRefund(ctx, bookings[i].BookingID); err != nil {
			log.Printf("[ERROR] cancel booking %s saat invalidasi instance: %v", bookings[i].BookingID, err)
		}
	}

	res := e.DB.WithContext(ctx).
		Where("session_instance_id IN ?", ids).
		Delete(&instModel.SessionInstanceModel{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (e *Engine) promoteAfterFree(ctx context.Context, instanceID uuid.UUID) {
	if e.Waitlist == nil {
		return
	}
	if _, err := e.Waitlist.PromoteFreedCapacity(ctx, instanceID); err != nil {
		log.Printf("[WARN] promotion scan instance %s gagal: %v", instanceID, err)
	}
}
