package memdb

import (
	"sort"

	"github.com/girgism/khedma/core/attendance"
)

type attendanceRepository struct {
	records  *recordTable
	settings *settingsTable
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{records: db.record, settings: db.settings}
}

func (repo *attendanceRepository) GetRecord(classID, date string) (attendance.Record, error) {
	repo.records.RLock()
	defer repo.records.RUnlock()

	if rec, ok := repo.records.table[attendance.RecordID(classID, date)]; ok {
		return cloneRecord(*rec), nil
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) query() []attendance.Record {
	records := make([]attendance.Record, 0, len(repo.records.table))
	for _, rec := range repo.records.table {
		records = append(records, cloneRecord(*rec))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records
}

func (repo *attendanceRepository) QueryAllRecords() ([]attendance.Record, error) {
	repo.records.RLock()
	defer repo.records.RUnlock()
	return repo.query(), nil
}

func (repo *attendanceRepository) QueryRecordsByClassID(classID string) ([]attendance.Record, error) {
	repo.records.RLock()
	defer repo.records.RUnlock()

	records := make([]attendance.Record, 0)
	for _, rec := range repo.query() {
		if rec.ClassID == classID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (repo *attendanceRepository) SaveRecord(rec attendance.Record) (attendance.Record, error) {
	repo.records.Lock()
	defer repo.records.Unlock()

	stored := cloneRecord(rec)
	repo.records.table[rec.ID] = &stored
	return rec, nil
}

func (repo *attendanceRepository) GetSettings(classID string) (attendance.Settings, error) {
	repo.settings.RLock()
	defer repo.settings.RUnlock()

	if s, ok := repo.settings.table[classID]; ok {
		return s, nil
	}
	return attendance.Settings{}, attendance.ErrSettingsNotFound
}

func (repo *attendanceRepository) SaveSettings(classID string, s attendance.Settings) error {
	repo.settings.Lock()
	defer repo.settings.Unlock()

	repo.settings.table[classID] = s
	return nil
}

// cloneRecord deep-copies the entries map so callers cannot alias stored
// state.
func cloneRecord(rec attendance.Record) attendance.Record {
	entries := make(map[string]attendance.Entry, len(rec.Entries))
	for id, e := range rec.Entries {
		entries[id] = e
	}
	rec.Entries = entries
	return rec
}
