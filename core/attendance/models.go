package attendance

import (
	"time"
)

// Status of one child on one class day. Transitions are triggered by explicit
// operator action only.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// PointsBreakdown is the five-category point tally backing a single
// attendance entry. All counters are non-negative.
type PointsBreakdown struct {
	ClassAttendance  int `json:"class_attendance"`
	PrayerAttendance int `json:"prayer_attendance"`
	PsalmRecitation  int `json:"psalm_recitation"`
	Scarf            int `json:"scarf"`
	Behavior         int `json:"behavior"`
}

func (p PointsBreakdown) Sum() int {
	return p.ClassAttendance + p.PrayerAttendance + p.PsalmRecitation + p.Scarf + p.Behavior
}

// Entry is one child's state within a Record.
type Entry struct {
	Status    Status          `json:"status"`
	EntryTime *time.Time      `json:"entry_time"` // set on first present/late, cleared on absent
	Points    PointsBreakdown `json:"points"`
}

// TotalPoints displays as zero whenever the child is absent, regardless of
// what is numerically stored. The absent transition already zeroes the
// breakdown; this is the second enforcement of the same invariant.
func (e Entry) TotalPoints() int {
	if e.Status == StatusAbsent {
		return 0
	}
	return e.Points.Sum()
}

// Record is the one-per-class-per-day ledger entry holding every child's
// status and points. Its id is the composite natural key "{classID}-{date}";
// saving the same key twice overwrites in place.
type Record struct {
	ID      string           `json:"id"`
	ClassID string           `json:"class_id"`
	Date    string           `json:"date"` // YYYY-MM-DD
	Entries map[string]Entry `json:"attendance_data"` // childID -> Entry
	SavedAt time.Time        `json:"saved_at"`
}

// RecordID builds the composite natural key of a (class, date) record.
func RecordID(classID, date string) string {
	return classID + "-" + date
}

// Settings configures the point value granted per status/category for one
// class. Lookups never fail closed: a class without settings resolves to
// DefaultSettings.
type Settings struct {
	Attendance     int `json:"attendance"`       // class attendance when present
	LateWithExcuse int `json:"late_with_excuse"` // class attendance when late
	Prayer         int `json:"prayer"`
	Psalm          int `json:"psalm"` // step for manual psalm adjustments
	Scarf          int `json:"scarf"`
	Behavior       int `json:"behavior"`
}

// DefaultSettings is the global fallback configuration for classes without
// stored settings.
var DefaultSettings = Settings{
	Attendance:     10,
	LateWithExcuse: 5,
	Prayer:         5,
	Psalm:          5,
	Scarf:          5,
	Behavior:       5,
}
