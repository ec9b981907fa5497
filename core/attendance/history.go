package attendance

import (
	"math"
	"sort"
	"time"

	"github.com/girgism/khedma/core"
	"github.com/girgism/khedma/core/school"
)

// History is the reconstructed per-student attendance report of one class.
type History struct {
	// Dates lists the distinct recorded dates for the class, newest first.
	Dates []string `json:"dates"`
	// Grid maps studentID -> date -> recorded status. A student with no entry
	// on a date is simply missing from the inner map: "no record" is
	// distinguishable from "recorded absent".
	Grid map[string]map[string]Status `json:"grid"`
	// MonthlyPercent maps studentID -> attendance percentage over the current
	// calendar month. Zero recorded days this month means 0% for every
	// student, including students with records in prior months only.
	MonthlyPercent map[string]int `json:"monthly_percent"`
}

// BuildHistory reconstructs the per-student attendance matrix of a class from
// the full historical record set (the set is not role-scoped; history is
// always class-scoped by construction).
//
// The monthly window is the calendar month and year of now, compared on UTC
// days to avoid timezone-boundary drift. It is the current real-world month,
// not the most recent month with data: a class idle this month reports 0% for
// all students no matter how strong last month was.
func BuildHistory(records []Record, classID string, roster []school.Child, now time.Time) History {
	h := History{
		Dates:          []string{},
		Grid:           make(map[string]map[string]Status, len(roster)),
		MonthlyPercent: make(map[string]int, len(roster)),
	}
	for _, chd := range roster {
		h.Grid[chd.ID] = make(map[string]Status)
	}

	nowUTC := now.UTC()
	year, month := nowUTC.Year(), nowUTC.Month()

	var monthDays int
	presentDays := make(map[string]int, len(roster))
	seenDates := make(map[string]struct{})

	for _, rec := range records {
		if rec.ClassID != classID {
			continue
		}
		if _, ok := seenDates[rec.Date]; ok {
			continue // one record per (class, date) is the invariant; tolerate violations
		}
		seenDates[rec.Date] = struct{}{}
		h.Dates = append(h.Dates, rec.Date)

		inMonth := false
		if day, err := time.ParseInLocation(core.DateLayout, rec.Date, time.UTC); err == nil {
			inMonth = day.Year() == year && day.Month() == month
		}
		if inMonth {
			monthDays++
		}

		for _, chd := range roster {
			e, ok := rec.Entries[chd.ID]
			if !ok {
				continue // no record for this student that day, leave unset
			}
			h.Grid[chd.ID][rec.Date] = e.Status
			if inMonth && e.Status == StatusPresent {
				presentDays[chd.ID]++
			}
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(h.Dates)))

	for _, chd := range roster {
		if monthDays == 0 {
			h.MonthlyPercent[chd.ID] = 0
			continue
		}
		h.MonthlyPercent[chd.ID] = int(math.Round(100 * float64(presentDays[chd.ID]) / float64(monthDays)))
	}
	return h
}

// History builds the report for a class from the stored records and roster.
func (svc *Service) History(classID string) (History, error) {
	records, err := svc.repo.QueryRecordsByClassID(classID)
	if err != nil {
		return History{}, err
	}
	roster, err := svc.roster.QueryChildrenByClassID(classID)
	if err != nil {
		return History{}, err
	}
	return BuildHistory(records, classID, roster, NowFunc()), nil
}
