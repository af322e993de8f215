// file: internals/features/booking/waitlist/service/waitlist_service_test.go
package service

import (
	"context"
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
	notifService "bookingku_backend/internals/features/notifications/service"
)

// fakeNotifier merekam siapa saja yang dinotifikasi, urut.
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
		&instModel.SessionInstanceModel{},
		&bookingModel.BookingModel{},
		&wlModel.WaitingListEntryModel{},
	))
	return db
}

type fixture struct {
	tpl  tmplModel.SessionTemplateModel
	inst instModel.SessionInstanceModel
}

func seedInstance(t *testing.T, db *gorm.DB, capacity int) fixture {
	t.Helper()
	tpl := tmplModel.SessionTemplateModel{
		SessionTemplateOrgID:           uuid.New(),
		SessionTemplateName:            "Evening Class",
		SessionTemplateCapacity:        capacity,
		SessionTemplateDurationMinutes: 60,
	}
	require.NoError(t, db.Create(&tpl).Error)

	start := time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC)
	inst := instModel.SessionInstanceModel{
		SessionInstanceTemplateID: tpl.SessionTemplateID,
		SessionInstanceOrgID:      tpl.SessionTemplateOrgID,
		SessionInstanceStartAt:    start,
		SessionInstanceEndAt:      start.Add(time.Hour),
		SessionInstanceStatus:     instModel.InstanceScheduled,
	}
	require.NoError(t, db.Create(&inst).Error)
	return fixture{tpl: tpl, inst: inst}
}

func seedBooking(t *testing.T, db *gorm.DB, fx fixture, spots int) bookingModel.BookingModel {
	t.Helper()
	b := bookingModel.BookingModel{
		BookingInstanceID:    fx.inst.SessionInstanceID,
		BookingUserID:        uuid.New(),
		BookingOrgID:         fx.tpl.SessionTemplateOrgID,
		BookingNumberOfSpots: spots,
		BookingStatus:        bookingModel.BookingConfirmed,
	}
	require.NoError(t, db.Create(&b).Error)
	return b
}

// join helper dengan created_at eksplisit supaya urutan FIFO deterministik
// (autoCreateTime bisa bertabrakan dalam satu milidetik).
func joinAt(t *testing.T, db *gorm.DB, svc *Service, fx fixture, email string, spots int, at time.Time) *wlModel.WaitingListEntryModel {
	t.Helper()
	_, entry, err := svc.Join(context.Background(), JoinInput{
		InstanceID:     fx.inst.SessionInstanceID,
		TemplateID:     fx.tpl.SessionTemplateID,
		Email:          email,
		RequestedSpots: spots,
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&wlModel.WaitingListEntryModel{}).
		Where("waiting_list_entry_id = ?", entry.WaitingListEntryID).
		Update("waiting_list_entry_created_at", at).Error)
	entry.WaitingListEntryCreatedAt = at
	return entry
}

func TestJoinAndPosition(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeNotifier{})
	fx := seedInstance(t, db, 4)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	a := joinAt(t, db, svc, fx, "a@example.com", 2, base)
	b := joinAt(t, db, svc, fx, "b@example.com", 1, base.Add(time.Minute))

	posA, err := svc.Position(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 1, posA)

	posB, err := svc.Position(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 2, posB)
}

func TestJoinIdempotentPerEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeNotifier{})
	fx := seedInstance(t, db, 4)
	ctx := context.Background()

	_, first, err := svc.Join(ctx, JoinInput{
		InstanceID:     fx.inst.SessionInstanceID,
		TemplateID:     fx.tpl.SessionTemplateID,
		Email:          "Dina@Example.com",
		RequestedSpots: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "dina@example.com", first.WaitingListEntryEmail)

	// re-join (case berbeda) → entry yang sama, bukan duplikat
	pos, again, err := svc.Join(ctx, JoinInput{
		InstanceID:     fx.inst.SessionInstanceID,
		TemplateID:     fx.tpl.SessionTemplateID,
		Email:          "dina@example.com",
		RequestedSpots: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, first.WaitingListEntryID, again.WaitingListEntryID)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 2, again.WaitingListEntryRequestedSpots) // request awal yang berlaku

	var count int64
	require.NoError(t, db.Model(&wlModel.WaitingListEntryModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestJoinInvalidSpots(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeNotifier{})
	fx := seedInstance(t, db, 4)

	_, _, err := svc.Join(context.Background(), JoinInput{
		InstanceID:     fx.inst.SessionInstanceID,
		TemplateID:     fx.tpl.SessionTemplateID,
		Email:          "x@example.com",
		RequestedSpots: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidSpots)
}

// FIFO ketat dengan skip: entry kepala yang terlalu besar di-skip DI TEMPAT,
// entry lebih kecil di belakangnya boleh lewat, dan kepala dievaluasi lagi di
// event pembebasan berikutnya tanpa kehilangan urutannya.
func TestPromoteFreedCapacityFIFOWithSkip(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	svc := NewService(db, notifier)
	fx := seedInstance(t, db, 4)
	ctx := context.Background()

	// instance penuh: satu booking 4 spot
	booking := seedBooking(t, db, fx, 4)

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	joinAt(t, db, svc, fx, "alice@example.com", 2, base)                 // kepala, butuh 2
	joinAt(t, db, svc, fx, "bob@example.com", 1, base.Add(time.Minute))  // butuh 1
	joinAt(t, db, svc, fx, "cara@example.com", 1, base.Add(2*time.Minute))

	// satu spot bebas (4 → 3)
	require.NoError(t, db.Model(&bookingModel.BookingModel{}).
		Where("booking_id = ?", booking.BookingID).
		Update("booking_number_of_spots", 3).Error)

	promoted, err := svc.PromoteFreedCapacity(ctx, fx.inst.SessionInstanceID)
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)
	// alice (2) tidak muat → skip; bob (1) dipromosikan
	assert.Equal(t, []string{"bob@example.com"}, notifier.waitlistEmails)

	// dua spot bebas lagi (3 → 2): sisa = 2
	require.NoError(t, db.Model(&bookingModel.BookingModel{}).
		Where("booking_id = ?", booking.BookingID).
		Update("booking_number_of_spots", 2).Error)

	promoted, err = svc.PromoteFreedCapacity(ctx, fx.inst.SessionInstanceID)
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)
	// alice masih kepala antrean dan sekarang muat; sisa habis → cara menunggu
	assert.Equal(t, []string{"bob@example.com", "alice@example.com"}, notifier.waitlistEmails)

	var pending []wlModel.WaitingListEntryModel
	require.NoError(t, db.
		Where("waiting_list_entry_instance_id = ?", fx.inst.SessionInstanceID).
		Where("waiting_list_entry_notified_at IS NULL").
		Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Equal(t, "cara@example.com", pending[0].WaitingListEntryEmail)
}

func TestPromoteFreedCapacityNoCapacity(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	svc := NewService(db, notifier)
	fx := seedInstance(t, db, 2)
	ctx := context.Background()

	seedBooking(t, db, fx, 2) // penuh
	joinAt(t, db, svc, fx, "waiting@example.com", 1, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))

	promoted, err := svc.PromoteFreedCapacity(ctx, fx.inst.SessionInstanceID)
	require.NoError(t, err)
	assert.Equal(t, 0, promoted)
	assert.Empty(t, notifier.waitlistEmails)
}

func TestPromoteFreedCapacityCancelledInstance(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	svc := NewService(db, notifier)
	fx := seedInstance(t, db, 2)
	ctx := context.Background()

	joinAt(t, db, svc, fx, "waiting@example.com", 1, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, db.Model(&instModel.SessionInstanceModel{}).
		Where("session_instance_id = ?", fx.inst.SessionInstanceID).
		Update("session_instance_status", instModel.InstanceCancelled).Error)

	promoted, err := svc.PromoteFreedCapacity(ctx, fx.inst.SessionInstanceID)
	require.NoError(t, err)
	assert.Equal(t, 0, promoted)
	assert.Empty(t, notifier.waitlistEmails)
}

func TestCheckEntry(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeNotifier{})
	fx := seedInstance(t, db, 4)
	ctx := context.Background()

	entry, err := svc.CheckEntry(ctx, fx.inst.SessionInstanceID, "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, entry)

	joinAt(t, db, svc, fx, "real@example.com", 1, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))

	entry, err = svc.CheckEntry(ctx, fx.inst.SessionInstanceID, "REAL@example.com")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "real@example.com", entry.WaitingListEntryEmail)
}
