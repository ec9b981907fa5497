package attendance

import (
	"errors"
	"time"

	"github.com/girgism/khedma/core"
	"github.com/girgism/khedma/core/school"
)

var (
	// errors
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrSettingsNotFound = errors.New("points settings not found")
	ErrChildNotOnRecord = errors.New("child not on record")
	ErrChildAbsent      = errors.New("cannot adjust points while absent")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetRecord(classID, date string) (Record, error)
		QueryAllRecords() ([]Record, error)
		QueryRecordsByClassID(classID string) ([]Record, error)
		// SaveRecord upserts by Record.ID: an existing record for the same
		// (class, date) key is replaced in place, never duplicated.
		SaveRecord(rec Record) (Record, error)
		GetSettings(classID string) (Settings, error)
		SaveSettings(classID string, s Settings) error
	}

	// Roster is the slice of the school repository the ledger needs.
	Roster interface {
		QueryChildrenByClassID(classID string) ([]school.Child, error)
	}

	Service struct {
		repo   Repository
		roster Roster
	}
)

func NewService(repo Repository, roster Roster) *Service {
	return &Service{repo: repo, roster: roster}
}

// EditableRecord holds the transient editing state of one (class, date)
// attendance sheet. Transitions mutate it in memory only; nothing persists
// until Save.
type EditableRecord struct {
	ClassID  string
	Date     string // YYYY-MM-DD
	Entries  map[string]*Entry
	Settings Settings

	exists bool // a stored record exists for this key; flips only on confirmed save
}

// Exists reports whether a save would update a stored record rather than
// create one.
func (ed *EditableRecord) Exists() bool { return ed.exists }

func (ed *EditableRecord) entry(childID string) (*Entry, error) {
	e, ok := ed.Entries[childID]
	if !ok {
		return nil, ErrChildNotOnRecord
	}
	return e, nil
}

// SetStatus applies one explicit status transition to a child:
//   - present: entry time set to now if not already set; class attendance,
//     prayer and behavior take their configured values; psalm and scarf are
//     left untouched (manual categories).
//   - late: as present, except class attendance takes the late-with-excuse
//     value.
//   - absent: entry time cleared and all five categories forced to zero,
//     superseding any manually accumulated points.
func (ed *EditableRecord) SetStatus(childID string, status Status) error {
	if !status.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status"})
	}
	e, err := ed.entry(childID)
	if err != nil {
		return err
	}

	switch status {
	case StatusAbsent:
		e.EntryTime = nil
		e.Points = PointsBreakdown{}
	case StatusPresent, StatusLate:
		if e.EntryTime == nil {
			now := NowFunc().UTC()
			e.EntryTime = &now
		}
		att := ed.Settings.Attendance
		if status == StatusLate {
			att = ed.Settings.LateWithExcuse
		}
		e.Points.ClassAttendance = att
		e.Points.PrayerAttendance = ed.Settings.Prayer
		e.Points.Behavior = ed.Settings.Behavior
	}
	e.Status = status
	return nil
}

// AdjustPsalm applies a manual delta to a child's psalm recitation points.
// Rejected while the child is absent; the result is floor-clamped at zero.
// The other categories are not touched.
func (ed *EditableRecord) AdjustPsalm(childID string, delta int) error {
	e, err := ed.entry(childID)
	if err != nil {
		return err
	}
	if e.Status == StatusAbsent {
		return ErrChildAbsent
	}
	e.Points.PsalmRecitation += delta
	if e.Points.PsalmRecitation < 0 {
		e.Points.PsalmRecitation = 0
	}
	return nil
}

// AdjustScarf applies a manual delta to a child's scarf points, with the
// same rules as AdjustPsalm.
func (ed *EditableRecord) AdjustScarf(childID string, delta int) error {
	e, err := ed.entry(childID)
	if err != nil {
		return err
	}
	if e.Status == StatusAbsent {
		return ErrChildAbsent
	}
	e.Points.Scarf += delta
	if e.Points.Scarf < 0 {
		e.Points.Scarf = 0
	}
	return nil
}

// MarkAllPresent restarts every child from the present template: status
// present, entry time now, configured attendance/prayer/behavior points. No
// prior per-child state carries forward; manually accumulated psalm and scarf
// points are reset to zero, unlike the single-child present transition which
// preserves them.
func (ed *EditableRecord) MarkAllPresent() {
	now := NowFunc().UTC()
	for _, e := range ed.Entries {
		*e = Entry{
			Status:    StatusPresent,
			EntryTime: &now,
			Points: PointsBreakdown{
				ClassAttendance:  ed.Settings.Attendance,
				PrayerAttendance: ed.Settings.Prayer,
				Behavior:         ed.Settings.Behavior,
			},
		}
	}
}

// Total returns the displayed point total for a child, zero when absent.
func (ed *EditableRecord) Total(childID string) int {
	e, ok := ed.Entries[childID]
	if !ok {
		return 0
	}
	return e.TotalPoints()
}

// Open loads the (class, date) sheet for editing. With no stored record every
// roster child starts absent with zero points and no entry time. With a
// stored record, roster children missing from it (added to the class after
// the save) are synthesized as absent for display; the stored record is not
// mutated until an explicit Save.
func (svc *Service) Open(classID, date string) (*EditableRecord, error) {
	if err := validateKey(classID, date); err != nil {
		return nil, err
	}

	roster, err := svc.roster.QueryChildrenByClassID(classID)
	if err != nil {
		return nil, err
	}

	ed := &EditableRecord{
		ClassID:  classID,
		Date:     date,
		Entries:  make(map[string]*Entry, len(roster)),
		Settings: svc.ResolveSettings(classID),
	}

	rec, err := svc.repo.GetRecord(classID, date)
	switch err {
	case nil:
		ed.exists = true
		for childID, e := range rec.Entries {
			e := e
			ed.Entries[childID] = &e
		}
	case ErrRecordNotFound:
		// first open, all-absent sheet
	default:
		return nil, err
	}

	for _, chd := range roster {
		if _, ok := ed.Entries[chd.ID]; !ok {
			ed.Entries[chd.ID] = &Entry{Status: StatusAbsent}
		}
	}
	return ed, nil
}

// Save persists the sheet, overwriting any record stored under the same
// (class, date) key. On failure the error surfaces unchanged and the sheet is
// still considered unsaved; the exists flag flips only on confirmed success.
func (svc *Service) Save(ed *EditableRecord) (Record, error) {
	if err := validateKey(ed.ClassID, ed.Date); err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:      RecordID(ed.ClassID, ed.Date),
		ClassID: ed.ClassID,
		Date:    ed.Date,
		Entries: make(map[string]Entry, len(ed.Entries)),
		SavedAt: NowFunc().UTC(),
	}
	for childID, e := range ed.Entries {
		rec.Entries[childID] = *e
	}

	saved, err := svc.repo.SaveRecord(rec)
	if err != nil {
		return Record{}, err
	}
	ed.exists = true
	return saved, nil
}

// ResolveSettings returns the class's stored points configuration, falling
// back to DefaultSettings when absent. Resolution never fails closed.
func (svc *Service) ResolveSettings(classID string) Settings {
	s, err := svc.repo.GetSettings(classID)
	if err != nil {
		return DefaultSettings
	}
	return s
}

// SaveSettings stores a per-class points configuration, created lazily on
// first save.
func (svc *Service) SaveSettings(classID string, s Settings) error {
	if classID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "class_id", Error: "this field is required"})
	}
	return svc.repo.SaveSettings(classID, s)
}

func validateKey(classID, date string) error {
	var flds []core.FieldError
	if classID == "" {
		flds = append(flds, core.FieldError{Field: "class_id", Error: "this field is required"})
	}
	if date == "" {
		flds = append(flds, core.FieldError{Field: "date", Error: "this field is required"})
	} else if _, err := time.ParseInLocation(core.DateLayout, date, time.UTC); err != nil {
		flds = append(flds, core.FieldError{Field: "date", Error: "must be a valid date in YYYY-MM-DD format"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
