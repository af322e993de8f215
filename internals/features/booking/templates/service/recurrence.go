// file: internals/features/booking/templates/service/recurrence.go
package service

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookingku_backend/internals/configs"
	tmplModel "bookingku_backend/internals/features/booking/templates/model"
)

/* =========================
   Day-of-week & time-of-day
========================= */

// Penyimpanan pakai 0..6 (Minggu=0, selaras time.Weekday);
// API menerima token mon..sun dan dinormalisasi di boundary DTO.
var dayTokens = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func ParseDayToken(s string) (time.Weekday, error) {
	if w, ok := dayTokens[strings.ToLower(strings.TrimSpace(s))]; ok {
		return w, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDayToken, s)
}

func DayToken(w time.Weekday) string {
	switch w {
	case time.Sunday:
		return "sun"
	case time.Monday:
		return "mon"
	case time.Tuesday:
		return "tue"
	case time.Wednesday:
		return "wed"
	case time.Thursday:
		return "thu"
	case time.Friday:
		return "fri"
	default:
		return "sat"
	}
}

var timeOfDayRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ParseTimeOfDay memvalidasi "HH:mm" (jam boleh satu digit) → (hour, minute).
func ParseTimeOfDay(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if !timeOfDayRe.MatchString(s) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	parts := strings.SplitN(s, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m, nil
}

/* =========================
   Timezone & wall clock
========================= */

// AnchorDate mengunci komponen tanggal t ke tengah malam pada loc.
func AnchorDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// LocalWallClock: tanggal (komponen Y/M/D dari date) + jam dinding lokal → instant.
// time.Date dengan loc memperhitungkan offset DST untuk tanggal TERSEBUT,
// bukan offset tetap — jam 09:00 lokal selalu benar lintas pergantian DST.
func LocalWallClock(date time.Time, hour, minute int, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

// ResolveOrgLocation memuat timezone IANA organisasi dari org_settings;
// fallback ke DEFAULT_TIMEZONE (Europe/London) kalau belum dikonfigurasi.
func ResolveOrgLocation(db *gorm.DB, orgID uuid.UUID) *time.Location {
	tz := configs.DefaultTimezone
	if tz == "" {
		tz = "Europe/London"
	}

	var setting tmplModel.OrgSettingModel
	if err := db.
		Where("org_setting_org_id = ?", orgID).
		First(&setting).Error; err == nil && strings.TrimSpace(setting.OrgSettingTimezone) != "" {
		tz = setting.OrgSettingTimezone
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("[WARN] timezone %q tidak valid untuk org %s, fallback Europe/London", tz, orgID)
		loc, _ = time.LoadLocation("Europe/London")
	}
	return loc
}
