// file: internals/features/booking/templates/service/generator.go
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	instModel "bookingku_backend/internals/features/booking/instances/model"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
)

// GeneratorService: materialisasi SessionInstance dari template + schedules.
// Idempotent — aman dipanggil berulang (trigger ganda konvergen ke set yang sama).
type GeneratorService struct {
	DB *gorm.DB
}

func NewGeneratorService(db *gorm.DB) *GeneratorService {
	return &GeneratorService{DB: db}
}

type occurrenceCandidate struct {
	StartAt time.Time // UTC
	EndAt   time.Time // UTC
}

// GenerateInstances meng-expand pola template jadi instance konkret dalam
// window generasi dan insert yang belum ada. Tidak pernah menghapus/mengubah
// instance existing — pembersihan saat edit schedule adalah langkah terpisah
// milik layer template.
func (s *GeneratorService) GenerateInstances(ctx context.Context, templateID uuid.UUID) (int, error) {
	var tpl tmplModel.SessionTemplateModel
	if err := s.DB.WithContext(ctx).
		Preload("SessionTemplateSchedules").
		First(&tpl, "session_template_id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTemplateNotFound
		}
		return 0, err
	}

	loc := ResolveOrgLocation(s.DB.WithContext(ctx), tpl.SessionTemplateOrgID)

	var candidates []occurrenceCandidate
	if tpl.SessionTemplateIsRecurring {
		if len(tpl.SessionTemplateSchedules) == 0 {
			return 0, ErrNoSchedules
		}
		candidates = expandWeekly(&tpl, loc)
	} else {
		if len(tpl.SessionTemplateOneOffEntries) == 0 {
			return 0, ErrNoSchedules
		}
		candidates = expandOneOff(&tpl, loc)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	// Existing set (kunci idempotensi: template_id + start UTC)
	var existingStarts []time.Time
	if err := s.DB.WithContext(ctx).
		Model(&instModel.SessionInstanceModel{}).
		Where("session_instance_template_id = ?", tpl.SessionTemplateID).
		Pluck("session_instance_start_at", &existingStarts).Error; err != nil {
		return 0, err
	}
	existing := make(map[int64]struct{}, len(existingStarts))
	for _, t := range existingStarts {
		existing[t.UTC().Unix()] = struct{}{}
	}

	created := 0
	for _, cand := range candidates {
		if _, ok := existing[cand.StartAt.Unix()]; ok {
			continue
		}
		inst := instModel.SessionInstanceModel{
			SessionInstanceTemplateID: tpl.SessionTemplateID,
			SessionInstanceOrgID:      tpl.SessionTemplateOrgID,
			SessionInstanceStartAt:    cand.StartAt,
			SessionInstanceEndAt:      cand.EndAt,
			SessionInstanceStatus:     instModel.InstanceScheduled,
		}
		if err := s.DB.WithContext(ctx).Create(&inst).Error; err != nil {
			// Gagal satu kandidat (termasuk unique violation dari generator
			// paralel) → log & lanjut; gap akan self-heal di invocation berikut.
			log.Printf("[WARN] generate instance template=%s start=%s: %v",
				tpl.SessionTemplateID, cand.StartAt.Format(time.RFC3339), err)
			continue
		}
		existing[cand.StartAt.Unix()] = struct{}{}
		created++
	}
	return created, nil
}

// expandWeekly: iterasi tiap hari kalender dalam window, match day-of-week
// per baris schedule, konversi jam dinding lokal → UTC per tanggal (DST-aware).
func expandWeekly(tpl *tmplModel.SessionTemplateModel, loc *time.Location) []occurrenceCandidate {
	from, to := generationWindow(tpl, loc)

	var out []occurrenceCandidate
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		for i := range tpl.SessionTemplateSchedules {
			sch := &tpl.SessionTemplateSchedules[i]
			if int(d.Weekday()) != sch.SessionScheduleDayOfWeek {
				continue
			}
			hh, mm, err := ParseTimeOfDay(sch.SessionScheduleStartTime)
			if err != nil {
				log.Printf("[WARN] schedule %s: %v (di-skip)", sch.SessionScheduleID, err)
				continue
			}
			start := LocalWallClock(d, hh, mm, loc).UTC()
			dur := time.Duration(tpl.EffectiveDuration(sch)) * time.Minute
			out = append(out, occurrenceCandidate{StartAt: start, EndAt: start.Add(dur)})
		}
	}
	return out
}

// expandOneOff: entry eksplisit date+time milik template non-recurring.
func expandOneOff(tpl *tmplModel.SessionTemplateModel, loc *time.Location) []occurrenceCandidate {
	dur := time.Duration(tpl.SessionTemplateDurationMinutes) * time.Minute

	var out []occurrenceCandidate
	for _, e := range tpl.SessionTemplateOneOffEntries {
		d, err := time.ParseInLocation("2006-01-02", e.Date, loc)
		if err != nil {
			log.Printf("[WARN] one-off entry date %q tidak valid (di-skip)", e.Date)
			continue
		}
		hh, mm, err := ParseTimeOfDay(e.Time)
		if err != nil {
			log.Printf("[WARN] one-off entry %q: %v (di-skip)", e.Date, err)
			continue
		}
		start := LocalWallClock(d, hh, mm, loc).UTC()
		out = append(out, occurrenceCandidate{StartAt: start, EndAt: start.Add(dur)})
	}
	return out
}

// generationWindow: [recurrence_start ?? hari ini, recurrence_end ?? hari ini+3 bulan],
// keduanya tanggal lokal inklusif.
func generationWindow(tpl *tmplModel.SessionTemplateModel, loc *time.Location) (time.Time, time.Time) {
	today := AnchorDate(time.Now().In(loc), loc)

	from := today
	if tpl.SessionTemplateRecurrenceStartDate != nil {
		from = AnchorDate(*tpl.SessionTemplateRecurrenceStartDate, loc)
	}
	to := today.AddDate(0, 3, 0)
	if tpl.SessionTemplateRecurrenceEndDate != nil {
		to = AnchorDate(*tpl.SessionTemplateRecurrenceEndDate, loc)
	}
	return from, to
}

/* =========================
   Lazy regeneration
========================= */

// EnsureUpcoming dipanggil async dari listing publik: template recurring yang
// masih hidup tapi tidak punya instance ke depan dalam horizon 3 bulan akan
// di-generate ulang. Request yang sedang jalan tidak menunggu.
func (s *GeneratorService) EnsureUpcoming(orgID uuid.UUID) {
	now := time.Now().UTC()
	horizon := now.AddDate(0, 3, 0)

	var ids []uuid.UUID
	err := s.DB.
		Model(&tmplModel.SessionTemplateModel{}).
		Where("session_template_org_id = ?", orgID).
		Where("session_template_is_recurring = ?", true).
		Where("session_template_recurrence_end_date IS NULL OR session_template_recurrence_end_date >= ?", now).
		Where(`EXISTS (
			SELECT 1 FROM session_schedules ss
			WHERE ss.session_schedule_template_id = session_templates.session_template_id
		)`).
		Where(`NOT EXISTS (
			SELECT 1 FROM session_instances si
			WHERE si.session_instance_template_id = session_templates.session_template_id
			  AND si.session_instance_start_at > ?
			  AND si.session_instance_start_at < ?
		)`, now, horizon).
		Pluck("session_template_id", &ids).Error
	if err != nil {
		log.Printf("[WARN] ensure-upcoming org=%s: %v", orgID, err)
		return
	}

	for _, id := range ids {
		if n, err := s.GenerateInstances(context.Background(), id); err != nil {
			log.Printf("[WARN] lazy generate template=%s: %v", id, err)
		} else if n > 0 {
			log.Printf("[INFO] lazy generate template=%s created=%d", id, n)
		}
	}
}
