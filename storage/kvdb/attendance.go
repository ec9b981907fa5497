package kvdb

import (
	"github.com/girgism/khedma/core/attendance"
)

const (
	recordsKey  = "attendance_records"
	settingsKey = "points_settings"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) GetRecord(classID, date string) (attendance.Record, error) {
	records, err := repo.QueryAllRecords()
	if err != nil {
		return attendance.Record{}, err
	}
	id := attendance.RecordID(classID, date)
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) QueryAllRecords() ([]attendance.Record, error) {
	var records []attendance.Record
	if err := repo.db.Load(recordsKey, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *attendanceRepository) QueryRecordsByClassID(classID string) ([]attendance.Record, error) {
	records, err := repo.QueryAllRecords()
	if err != nil {
		return nil, err
	}
	matched := make([]attendance.Record, 0)
	for _, rec := range records {
		if rec.ClassID == classID {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

func (repo *attendanceRepository) SaveRecord(rec attendance.Record) (attendance.Record, error) {
	var records []attendance.Record
	err := repo.db.Update(recordsKey, &records, func() error {
		for i := range records {
			if records[i].ID == rec.ID {
				records[i] = rec
				return nil
			}
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}
	return rec, nil
}

func (repo *attendanceRepository) GetSettings(classID string) (attendance.Settings, error) {
	var settings map[string]attendance.Settings
	if err := repo.db.Load(settingsKey, &settings); err != nil {
		return attendance.Settings{}, err
	}
	s, ok := settings[classID]
	if !ok {
		return attendance.Settings{}, attendance.ErrSettingsNotFound
	}
	return s, nil
}

func (repo *attendanceRepository) SaveSettings(classID string, s attendance.Settings) error {
	var settings map[string]attendance.Settings
	return repo.db.Update(settingsKey, &settings, func() error {
		if settings == nil {
			settings = make(map[string]attendance.Settings, 1)
		}
		settings[classID] = s
		return nil
	})
}
