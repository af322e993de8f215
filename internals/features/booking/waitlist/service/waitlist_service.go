// file: internals/features/booking/waitlist/service/waitlist_service.go
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	instModel "bookingku_backend/internals/features/booking/instances/model"
	availService "bookingku_backend/internals/features/booking/instances/service"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
	wlModel "bookingku_backend/internals/features/booking/waitlist/model"
	notifService "bookingku_backend/internals/features/notifications/service"
)

var (
	ErrInstanceNotFound = errors.New("session instance not found")
	ErrInvalidSpots     = errors.New("requested spots must be at least 1")
)

// Service: waiting list per instance, urutan FIFO ketat by (created_at, id).
type Service struct {
	DB           *gorm.DB
	Availability *availService.AvailabilityService
	Notifier     notifService.Notifier
}

func NewService(db *gorm.DB, notifier notifService.Notifier) *Service {
	return &Service{
		DB:           db,
		Availability: availService.NewAvailabilityService(db),
		Notifier:     notifier,
	}
}

type JoinInput struct {
	InstanceID     uuid.UUID
	TemplateID     uuid.UUID
	Email          string
	FirstName      *string
	RequestedSpots int
}

// Join mendaftarkan permintaan spot pada instance penuh. Caller yang memutuskan
// instance memang penuh; join saat tidak penuh tidak berbahaya (race saat spot
// baru saja bebas). Idempotent per email: re-join mengembalikan posisi existing.
func (s *Service) Join(ctx context.Context, in JoinInput) (int, *wlModel.WaitingListEntryModel, error) {
	if in.RequestedSpots < 1 {
		return 0, nil, ErrInvalidSpots
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	// re-join → posisi existing, bukan entry duplikat
	if existing, err := s.CheckEntry(ctx, in.InstanceID, email); err != nil {
		return 0, nil, err
	} else if existing != nil {
		pos, err := s.Position(ctx, existing)
		return pos, existing, err
	}

	entry := wlModel.WaitingListEntryModel{
		WaitingListEntryInstanceID:     in.InstanceID,
		WaitingListEntryTemplateID:     in.TemplateID,
		WaitingListEntryEmail:          email,
		WaitingListEntryFirstName:      in.FirstName,
		WaitingListEntryRequestedSpots: in.RequestedSpots,
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return 0, nil, err
	}

	pos, err := s.Position(ctx, &entry)
	return pos, &entry, err
}

// CheckEntry: entry belum-dinotifikasi milik email tsb pada instance (nil = tidak ada).
func (s *Service) CheckEntry(ctx context.Context, instanceID uuid.UUID, email string) (*wlModel.WaitingListEntryModel, error) {
	var entry wlModel.WaitingListEntryModel
	err := s.DB.WithContext(ctx).
		Where("waiting_list_entry_instance_id = ?", instanceID).
		Where("waiting_list_entry_email = ?", strings.ToLower(strings.TrimSpace(email))).
		Where("waiting_list_entry_notified_at IS NULL").
		Order("waiting_list_entry_created_at ASC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Position: rank 1-based di antara entry belum-dinotifikasi pada instance yang
// sama, urut (created_at, id) — id jadi tiebreak kalau timestamp bertabrakan.
func (s *Service) Position(ctx context.Context, entry *wlModel.WaitingListEntryModel) (int, error) {
	var ahead int64
	err := s.DB.WithContext(ctx).
		Model(&wlModel.WaitingListEntryModel{}).
		Where("waiting_list_entry_instance_id = ?", entry.WaitingListEntryInstanceID).
		Where("waiting_list_entry_notified_at IS NULL").
		Where(
			"waiting_list_entry_created_at < ? OR (waiting_list_entry_created_at = ? AND waiting_list_entry_id < ?)",
			entry.WaitingListEntryCreatedAt, entry.WaitingListEntryCreatedAt, entry.WaitingListEntryID,
		).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

// PromoteFreedCapacity: scan promosi, dipanggil pada SETIAP event yang
// menambah kapasitas (cancel, move-away, edit kapasitas).
//
// Kebijakan fairness: FIFO ketat dengan skip. Sisa kapasitas dihitung ulang
// fresh, lalu antrean dijalani berurutan; entry yang muat menerima notifikasi
// dan mengurangi sisa LOKAL untuk evaluasi entry berikutnya di scan yang sama.
// Entry yang terlalu besar di-skip di tempat (tidak pernah di-reorder) dan
// dievaluasi lagi di event pembebasan berikutnya.
//
// Promosi TIDAK membuat booking — user yang dinotifikasi booking lewat jalur
// normal, dan capacity check di createBooking yang benar-benar mengklaim spot.
func (s *Service) PromoteFreedCapacity(ctx context.Context, instanceID uuid.UUID) (int, error) {
	var inst instModel.SessionInstanceModel
	if err := s.DB.WithContext(ctx).
		First(&inst, "session_instance_id = ?", instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInstanceNotFound
		}
		return 0, err
	}
	if inst.SessionInstanceStatus == instModel.InstanceCancelled {
		return 0, nil // instance batal → tidak ada yang bisa dipromosikan
	}

	var tpl tmplModel.SessionTemplateModel
	if err := s.DB.WithContext(ctx).
		First(&tpl, "session_template_id = ?", inst.SessionInstanceTemplateID).Error; err != nil {
		return 0, err
	}

	remaining, err := s.Availability.RemainingForInstance(ctx, instanceID, tpl.SessionTemplateCapacity)
	if err != nil {
		return 0, err
	}
	if remaining <= 0 {
		return 0, nil
	}

	var entries []wlModel.WaitingListEntryModel
	if err := s.DB.WithContext(ctx).
		Where("waiting_list_entry_instance_id = ?", instanceID).
		Where("waiting_list_entry_notified_at IS NULL").
		Order("waiting_list_entry_created_at ASC, waiting_list_entry_id ASC").
		Find(&entries).Error; err != nil {
		return 0, err
	}

	promoted := 0
	for i := range entries {
		e := &entries[i]
		if e.WaitingListEntryRequestedSpots > remaining {
			continue // terlalu besar → skip di tempat, jangan reorder
		}
		now := time.Now().UTC()
		if err := s.DB.WithContext(ctx).
			Model(&wlModel.WaitingListEntryModel{}).
			Where("waiting_list_entry_id = ?", e.WaitingListEntryID).
			Where("waiting_list_entry_notified_at IS NULL"). // guard scan paralel
			Update("waiting_list_entry_notified_at", now).Error; err != nil {
			log.Printf("[WARN] promote entry %s gagal: %v", e.WaitingListEntryID, err)
			continue
		}
		e.WaitingListEntryNotifiedAt = &now

		if err := s.Notifier.NotifyWaitlistSpotAvailable(ctx, e); err != nil {
			// side effect fire-and-forget: notifikasi gagal tidak membatalkan promosi
			log.Printf("[WARN] notifikasi waitlist entry %s gagal: %v", e.WaitingListEntryID, err)
		}

		remaining -= e.WaitingListEntryRequestedSpots
		promoted++
		if remaining <= 0 {
			break
		}
	}
	return promoted, nil
}
