// Package memdb is an in-memory storage backend used by tests. It implements
// the same repository interfaces as the file-backed store, minus persistence.
package memdb

import (
	"sync"

	"github.com/girgism/khedma/core/attendance"
	"github.com/girgism/khedma/core/notification"
	"github.com/girgism/khedma/core/school"
	"github.com/girgism/khedma/core/user"
)

type (
	DB struct {
		user         *userTable
		level        *levelTable
		class        *classTable
		child        *childTable
		servant      *servantTable
		record       *recordTable
		settings     *settingsTable
		notification *notificationTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	levelTable struct {
		sync.RWMutex
		table map[string]*school.Level
	}
	classTable struct {
		sync.RWMutex
		table map[string]*school.Class
	}
	childTable struct {
		sync.RWMutex
		table map[string]*school.Child
	}
	servantTable struct {
		sync.RWMutex
		table map[string]*school.Servant
	}
	recordTable struct {
		sync.RWMutex
		table map[string]*attendance.Record // keyed by Record.ID
	}
	settingsTable struct {
		sync.RWMutex
		table map[string]attendance.Settings // keyed by class id
	}
	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		level:        &levelTable{table: make(map[string]*school.Level)},
		class:        &classTable{table: make(map[string]*school.Class)},
		child:        &childTable{table: make(map[string]*school.Child)},
		servant:      &servantTable{table: make(map[string]*school.Servant)},
		record:       &recordTable{table: make(map[string]*attendance.Record)},
		settings:     &settingsTable{table: make(map[string]attendance.Settings)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}
