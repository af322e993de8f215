// file: internals/features/booking/instances/service/availability.go
package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingModel "bookingku_backend/internals/features/booking/bookings/model"
)

// SpotsRemaining: kapasitas - Σ spot booking confirmed/completed, floor 0.
// Booking cancelled tidak pernah dihitung.
func SpotsRemaining(capacity int, bookings []bookingModel.BookingModel) int {
	booked := 0
	for i := range bookings {
		if bookings[i].CountsTowardCapacity() {
			booked += bookings[i].BookingNumberOfSpots
		}
	}
	if booked >= capacity {
		return 0
	}
	return capacity - booked
}

// AvailabilityService: resolver kapasitas di atas store.
type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// RemainingForInstance menghitung ulang sisa spot satu instance dari DB.
// Dipanggil ulang DI DALAM request yang menulis (jangan percaya angka
// kapasitas hasil read sebelumnya).
func (s *AvailabilityService) RemainingForInstance(ctx context.Context, instanceID uuid.UUID, capacity int) (int, error) {
	var booked int64
	err := s.DB.WithContext(ctx).
		Model(&bookingModel.BookingModel{}).
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

type bookedRow struct {
	InstanceID uuid.UUID `gorm:"column:booking_instance_id"`
	Booked     int64     `gorm:"column:booked"`
}

// RemainingByInstance: bentuk batch untuk render kalender — satu query SUM
// ter-group, bukan satu query per instance.
func (s *AvailabilityService) RemainingByInstance(ctx context.Context, capacityByInstance map[uuid.UUID]int) (map[uuid.UUID]int, error) {
	remaining := make(map[uuid.UUID]int, len(capacityByInstance))
	if len(capacityByInstance) == 0 {
		return remaining, nil
	}

	ids := make([]uuid.UUID, 0, len(capacityByInstance))
	for id, capacity := range capacityByInstance {
		ids = append(ids, id)
		remaining[id] = capacity // default: belum ada booking
	}

	var rows []bookedRow
	err := s.DB.WithContext(ctx).
		Model(&bookingModel.BookingModel{}).
		Select("booking_instance_id, COALESCE(SUM(booking_number_of_spots), 0) AS booked").
		Where("booking_instance_id IN ?", ids).
		Where("booking_status IN ?", []bookingModel.BookingStatus{
			bookingModel.BookingConfirmed, bookingModel.BookingCompleted,
		}).
		Group("booking_instance_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		rem := capacityByInstance[r.InstanceID] - int(r.Booked)
		if rem < 0 {
			rem = 0
		}
		remaining[r.InstanceID] = rem
	}
	return remaining, nil
}
