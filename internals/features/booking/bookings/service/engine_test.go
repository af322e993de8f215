// file: internals/features/booking/bookings/service/engine_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	bookingModel "bookingku_backend/internals/features/booking/bookings/model"
	instModel "bookingku_backend/internals/features/booking/instances/model"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
	wlModel "bookingku_backend/internals/features/booking/waitlist/model"
	wlService "bookingku_backend/internals/features/booking/waitlist/service"
	notifService "bookingku_backend/internals/features/notifications/service"
)

/* =========================
   Fakes
========================= */

type fakeGateway struct {
	fail     bool
	refunded []uuid.UUID
}

func (g *fakeGateway) IssueRefund(ctx context.Context, b *bookingModel.BookingModel) error {
	if g.fail {
		return errors.New("gateway unreachable")
	}
	g.refunded = append(g.refunded, b.BookingID)
	return nil
}

type fakeNotifier struct {
	waitlistEmails []string
	cancelled      []uuid.UUID
}

func (f *fakeNotifier) NotifyWaitlistSpotAvailable(ctx context.Context, e *wlModel.WaitingListEntryModel) error {
	f.waitlistEmails = append(f.waitlistEmails, e.WaitingListEntryEmail)
	return nil
}

func (f *fakeNotifier) NotifyBookingCancelled(ctx context.Context, b *bookingModel.BookingModel) error {
	f.cancelled = append(f.cancelled, b.BookingID)
	return nil
}

var _ notifService.Notifier = (*fakeNotifier)(nil)

/* =========================
   Fixtures
========================= */

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&tmplModel.SessionTemplateModel{},
		&tmplModel.SessionScheduleModel{},
		&tmplModel.OrgSettingModel{},
		&instModel.SessionInstanceModel{},
		&bookingModel.BookingModel{},
		&wlModel.WaitingListEntryModel{},
	))
	return db
}

type harness struct {
	db       *gorm.DB
	engine   *Engine
	gateway  *fakeGateway
	notifier *fakeNotifier
	waitlist *wlService.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newTestDB(t)
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}
	waitlist := wlService.NewService(db, notifier)
	return &harness{
		db:       db,
		engine:   NewEngine(db, gateway, notifier, waitlist),
		gateway:  gateway,
		notifier: notifier,
		waitlist: waitlist,
	}
}

func seedTemplate(t *testing.T, db *gorm.DB, capacity int) tmplModel.SessionTemplateModel {
	t.Helper()
	tpl := tmplModel.SessionTemplateModel{
		SessionTemplateOrgID:           uuid.New(),
		SessionTemplateName:            "Yoga Flow",
		SessionTemplateCapacity:        capacity,
		SessionTemplateDurationMinutes: 60,
	}
	require.NoError(t, db.Create(&tpl).Error)
	return tpl
}

func seedInstanceAt(t *testing.T, db *gorm.DB, tpl tmplModel.SessionTemplateModel, start time.Time) instModel.SessionInstanceModel {
	t.Helper()
	inst := instModel.SessionInstanceModel{
		SessionInstanceTemplateID: tpl.SessionTemplateID,
		SessionInstanceOrgID:      tpl.SessionTemplateOrgID,
		SessionInstanceStartAt:    start.UTC(),
		SessionInstanceEndAt:      start.UTC().Add(time.Hour),
		SessionInstanceStatus:     instModel.InstanceScheduled,
	}
	require.NoError(t, db.Create(&inst).Error)
	return inst
}

var sessionStart = time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)

/* =========================
   CreateBooking
========================= */

func TestCreateBookingMaterializesInstanceOnDemand(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 5)
	ctx := context.Background()

	// belum ada instance untuk start ini
	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingConfirmed, booking.BookingStatus)

	var instances []instModel.SessionInstanceModel
	require.NoError(t, h.db.Find(&instances).Error)
	require.Len(t, instances, 1)
	assert.True(t, sessionStart.Equal(instances[0].SessionInstanceStartAt.UTC()))
	assert.Equal(t, instances[0].SessionInstanceID, booking.BookingInstanceID)

	// booking kedua ke start yang sama memakai instance yang sudah ada
	second, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, booking.BookingInstanceID, second.BookingInstanceID)

	require.NoError(t, h.db.Find(&instances).Error)
	assert.Len(t, instances, 1)
}

func TestCreateBookingCapacityExceeded(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 3)
	ctx := context.Background()

	_, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      2,
	})
	require.NoError(t, err)

	_, err = h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      2,
	})
	ce, ok := IsCapacityExceeded(err)
	require.True(t, ok, "want CapacityExceededError, got %v", err)
	assert.Equal(t, 1, ce.Remaining)

	// yang tersisa masih bisa diambil
	_, err = h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	assert.NoError(t, err)
}

func TestCreateBookingGuards(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 3)
	ctx := context.Background()

	_, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: uuid.New(),
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	// tenant lain
	_, err = h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      uuid.New(),
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      0,
	})
	assert.ErrorIs(t, err, ErrInvalidSpots)

	// template closed
	require.NoError(t, h.db.Model(&tmplModel.SessionTemplateModel{}).
		Where("session_template_id = ?", tpl.SessionTemplateID).
		Update("session_template_visibility", tmplModel.VisibilityClosed).Error)
	_, err = h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	assert.ErrorIs(t, err, ErrTemplateClosed)
}

func TestCreateBookingCancelledInstance(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 3)
	inst := seedInstanceAt(t, h.db, tpl, sessionStart)

	require.NoError(t, h.db.Model(&instModel.SessionInstanceModel{}).
		Where("session_instance_id = ?", inst.SessionInstanceID).
		Update("session_instance_status", instModel.InstanceCancelled).Error)

	_, err := h.engine.CreateBooking(context.Background(), CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	assert.ErrorIs(t, err, ErrInstanceCancelled)
}

/* =========================
   Cancel
========================= */

func TestCancelBookingFreesCapacity(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 3)
	ctx := context.Background()

	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      3,
	})
	require.NoError(t, err)

	res, err := h.engine.CancelBookingWithRefund(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.False(t, res.Refunded) // gratis, tidak ada refund
	assert.False(t, res.AlreadyCancelled)
	assert.Len(t, h.notifier.cancelled, 1)

	// kapasitas penuh kembali tersedia
	_, err = h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      3,
	})
	assert.NoError(t, err)
}

func TestCancelBookingIdempotent(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 3)
	ctx := context.Background()

	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	require.NoError(t, err)

	_, err = h.engine.CancelBookingWithRefund(ctx, booking.BookingID)
	require.NoError(t, err)

	res, err := h.engine.CancelBookingWithRefund(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCancelled)

	_, err = h.engine.CancelBookingWithRefund(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBookingWithRefund(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 3)
	ctx := context.Background()

	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	require.NoError(t, err)

	// webhook pembayaran sudah menstempel amount_paid
	require.NoError(t, h.db.Model(&bookingModel.BookingModel{}).
		Where("booking_id = ?", booking.BookingID).
		Update("booking_amount_paid", 1500).Error)

	res, err := h.engine.CancelBookingWithRefund(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.True(t, res.Refunded)
	assert.Equal(t, []uuid.UUID{booking.BookingID}, h.gateway.refunded)
}

// Refund gagal → booking TETAP cancelled (spot harus bebas), dilaporkan
// refunded=false untuk rekonsiliasi manual.
func TestCancelBookingRefundFailureStillCancels(t *testing.T) {
	h := newHarness(t)
	h.gateway.fail = true
	tpl := seedTemplate(t, h.db, 3)
	ctx := context.Background()

	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      2,
	})
	require.NoError(t, err)
	require.NoError(t, h.db.Model(&bookingModel.BookingModel{}).
		Where("booking_id = ?", booking.BookingID).
		Update("booking_amount_paid", 2000).Error)

	res, err := h.engine.CancelBookingWithRefund(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.False(t, res.Refunded)

	var fresh bookingModel.BookingModel
	require.NoError(t, h.db.First(&fresh, "booking_id = ?", booking.BookingID).Error)
	assert.Equal(t, bookingModel.BookingCancelled, fresh.BookingStatus)
	assert.NotNil(t, fresh.BookingCancelledAt)
}

// Cancel memicu scan promosi waiting list pada instance yang sama.
func TestCancelBookingPromotesWaitlist(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 2)
	ctx := context.Background()

	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      2,
	})
	require.NoError(t, err)

	_, _, err = h.waitlist.Join(ctx, wlService.JoinInput{
		InstanceID:     booking.BookingInstanceID,
		TemplateID:     tpl.SessionTemplateID,
		Email:          "hopeful@example.com",
		RequestedSpots: 1,
	})
	require.NoError(t, err)

	_, err = h.engine.CancelBookingWithRefund(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hopeful@example.com"}, h.notifier.waitlistEmails)
}

/* =========================
   Move
========================= */

func TestMoveBookingPreservesPayment(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 5)
	ctx := context.Background()

	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      2,
	})
	require.NoError(t, err)
	require.NoError(t, h.db.Model(&bookingModel.BookingModel{}).
		Where("booking_id = ?", booking.BookingID).
		Update("booking_amount_paid", 1500).Error)

	dest := seedInstanceAt(t, h.db, tpl, sessionStart.Add(24*time.Hour))

	moved, err := h.engine.MoveBookingToInstance(ctx, booking.BookingID, dest.SessionInstanceID, false)
	require.NoError(t, err)
	assert.Equal(t, dest.SessionInstanceID, moved.BookingInstanceID)

	var fresh bookingModel.BookingModel
	require.NoError(t, h.db.First(&fresh, "booking_id = ?", booking.BookingID).Error)
	assert.Equal(t, booking.BookingID, fresh.BookingID) // booking yang sama, bukan rebook
	assert.Equal(t, dest.SessionInstanceID, fresh.BookingInstanceID)
	assert.Equal(t, 2, fresh.BookingNumberOfSpots)
	require.NotNil(t, fresh.BookingAmountPaid)
	assert.EqualValues(t, 1500, *fresh.BookingAmountPaid)
	assert.Empty(t, h.gateway.refunded) // move tidak pernah menyentuh payment
}

func TestMoveBookingCapacityAndOverride(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 3)
	ctx := context.Background()

	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      2,
	})
	require.NoError(t, err)

	// destinasi hampir penuh: sisa 1, butuh 2
	dest := seedInstanceAt(t, h.db, tpl, sessionStart.Add(24*time.Hour))
	require.NoError(t, h.db.Create(&bookingModel.BookingModel{
		BookingInstanceID:    dest.SessionInstanceID,
		BookingUserID:        uuid.New(),
		BookingOrgID:         tpl.SessionTemplateOrgID,
		BookingNumberOfSpots: 2,
		BookingStatus:        bookingModel.BookingConfirmed,
	}).Error)

	_, err = h.engine.MoveBookingToInstance(ctx, booking.BookingID, dest.SessionInstanceID, false)
	ce, ok := IsCapacityExceeded(err)
	require.True(t, ok, "want CapacityExceededError, got %v", err)
	assert.Equal(t, 1, ce.Remaining)

	// override admin = overbook sadar
	moved, err := h.engine.MoveBookingToInstance(ctx, booking.BookingID, dest.SessionInstanceID, true)
	require.NoError(t, err)
	assert.Equal(t, dest.SessionInstanceID, moved.BookingInstanceID)
}

func TestMoveBookingGuards(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 3)
	ctx := context.Background()

	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	require.NoError(t, err)

	_, err = h.engine.MoveBookingToInstance(ctx, booking.BookingID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrInstanceNotFound)

	// destinasi milik org lain — override pun tidak menembus
	otherTpl := seedTemplate(t, h.db, 3)
	otherInst := seedInstanceAt(t, h.db, otherTpl, sessionStart.Add(48*time.Hour))
	_, err = h.engine.MoveBookingToInstance(ctx, booking.BookingID, otherInst.SessionInstanceID, true)
	assert.ErrorIs(t, err, ErrForbidden)

	// destinasi cancelled
	dest := seedInstanceAt(t, h.db, tpl, sessionStart.Add(24*time.Hour))
	require.NoError(t, h.db.Model(&instModel.SessionInstanceModel{}).
		Where("session_instance_id = ?", dest.SessionInstanceID).
		Update("session_instance_status", instModel.InstanceCancelled).Error)
	_, err = h.engine.MoveBookingToInstance(ctx, booking.BookingID, dest.SessionInstanceID, false)
	assert.ErrorIs(t, err, ErrInstanceCancelled)

	// same-instance = no-op sukses
	moved, err := h.engine.MoveBookingToInstance(ctx, booking.BookingID, booking.BookingInstanceID, false)
	require.NoError(t, err)
	assert.Equal(t, booking.BookingInstanceID, moved.BookingInstanceID)
}

// Move-away membebaskan kapasitas di instance SUMBER → promosi jalan di sana.
func TestMoveBookingPromotesSourceWaitlist(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 1)
	ctx := context.Background()

	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	require.NoError(t, err)

	_, _, err = h.waitlist.Join(ctx, wlService.JoinInput{
		InstanceID:     booking.BookingInstanceID,
		TemplateID:     tpl.SessionTemplateID,
		Email:          "queued@example.com",
		RequestedSpots: 1,
	})
	require.NoError(t, err)

	dest := seedInstanceAt(t, h.db, tpl, sessionStart.Add(24*time.Hour))
	_, err = h.engine.MoveBookingToInstance(ctx, booking.BookingID, dest.SessionInstanceID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"queued@example.com"}, h.notifier.waitlistEmails)
}

/* =========================
   Check-in
========================= */

func TestCheckInToggle(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 3)
	ctx := context.Background()

	booking, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	require.NoError(t, err)

	done, err := h.engine.CheckInBooking(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingCompleted, done.BookingStatus)

	// tap kedua membatalkan check-in
	undone, err := h.engine.CheckInBooking(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingConfirmed, undone.BookingStatus)

	// cancelled tidak bisa di-check-in
	_, err = h.engine.CancelBookingWithRefund(ctx, booking.BookingID)
	require.NoError(t, err)
	_, err = h.engine.CheckInBooking(ctx, booking.BookingID)
	assert.ErrorIs(t, err, ErrBookingCancelled)
}

/* =========================
   Instance ops
========================= */

func TestCancelInstanceWithRefunds(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 5)
	ctx := context.Background()

	b1, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      2,
	})
	require.NoError(t, err)
	b2, err := h.engine.CreateBooking(ctx, CreateBookingInput{
		TemplateID: tpl.SessionTemplateID,
		OrgID:      tpl.SessionTemplateOrgID,
		UserID:     uuid.New(),
		StartAt:    sessionStart,
		Spots:      1,
	})
	require.NoError(t, err)
	require.NoError(t, h.db.Model(&bookingModel.BookingModel{}).
		Where("booking_id = ?", b1.BookingID).
		Update("booking_amount_paid", 3000).Error)

	cancelled, err := h.engine.CancelInstanceWithRefunds(ctx, b1.BookingInstanceID)
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled)
	assert.Equal(t, []uuid.UUID{b1.BookingID}, h.gateway.refunded) // hanya yang berbayar

	var inst instModel.SessionInstanceModel
	require.NoError(t, h.db.First(&inst, "session_instance_id = ?", b1.BookingInstanceID).Error)
	assert.Equal(t, instModel.InstanceCancelled, inst.SessionInstanceStatus)

	var fresh bookingModel.BookingModel
	require.NoError(t, h.db.First(&fresh, "booking_id = ?", b2.BookingID).Error)
	assert.Equal(t, bookingModel.BookingCancelled, fresh.BookingStatus)
}

func TestInvalidateFutureInstances(t *testing.T) {
	h := newHarness(t)
	tpl := seedTemplate(t, h.db, 5)
	ctx := context.Background()

	past := seedInstanceAt(t, h.db, tpl, time.Now().UTC().Add(-48*time.Hour))
	future := seedInstanceAt(t, h.db, tpl, time.Now().UTC().Add(72*time.Hour))

	// booking aktif pada instance masa depan, berbayar
	booking := bookingModel.BookingModel{
		BookingInstanceID:    future.SessionInstanceID,
		BookingUserID:        uuid.New(),
		BookingOrgID:         tpl.SessionTemplateOrgID,
		BookingNumberOfSpots: 1,
		BookingStatus:        bookingModel.BookingConfirmed,
	}
	require.NoError(t, h.db.Create(&booking).Error)
	require.NoError(t, h.db.Model(&bookingModel.BookingModel{}).
		Where("booking_id = ?", booking.BookingID).
		Update("booking_amount_paid", 1000).Error)

	removed, err := h.engine.InvalidateFutureInstances(ctx, tpl.SessionTemplateID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// masa lalu utuh, masa depan hilang
	var count int64
	require.NoError(t, h.db.Model(&instModel.SessionInstanceModel{}).
		Where("session_instance_template_id = ?", tpl.SessionTemplateID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var kept instModel.SessionInstanceModel
	require.NoError(t, h.db.First(&kept, "session_instance_template_id = ?", tpl.SessionTemplateID).Error)
	assert.Equal(t, past.SessionInstanceID, kept.SessionInstanceID)

	// booking masa depan dibatalkan dengan refund
	var fresh bookingModel.BookingModel
	require.NoError(t, h.db.First(&fresh, "booking_id = ?", booking.BookingID).Error)
	assert.Equal(t, bookingModel.BookingCancelled, fresh.BookingStatus)
	assert.Equal(t, []uuid.UUID{booking.BookingID}, h.gateway.refunded)
}
