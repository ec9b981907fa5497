package main

import (
	"encoding/json"
	"fmt"

	"github.com/girgism/khedma/core/attendance"
	"github.com/girgism/khedma/core/notification"
	"github.com/girgism/khedma/core/school"
	"github.com/girgism/khedma/core/user"
)

// storeDefaults lists every collection key the store serves, with the empty
// value initStore seeds it with.
var storeDefaults = []struct {
	key   string
	value interface{}
}{
	{"users", []user.User{}},
	{"levels", []school.Level{}},
	{"classes", []school.Class{}},
	{"children", []school.Child{}},
	{"servants", []school.Servant{}},
	{"attendance_records", []attendance.Record{}},
	{"points_settings", map[string]attendance.Settings{}},
	{"notifications", []notification.Notification{}},
}

// initStore seeds the key-value store with an empty document for every
// collection key that does not exist yet. Existing documents are never
// touched. With dryRun, missing keys are only reported.
func (cli *commandLine) initStore(dryRun bool) error {
	for _, def := range storeDefaults {
		var raw json.RawMessage
		if err := cli.db.Load(def.key, &raw); err != nil {
			return err
		}
		if raw != nil {
			fmt.Printf("%s: exists, skipped\n", def.key)
			continue
		}
		if dryRun {
			fmt.Printf("%s: missing, would be created\n", def.key)
			continue
		}
		if err := cli.db.Save(def.key, def.value); err != nil {
			return err
		}
		fmt.Printf("%s: created\n", def.key)
	}
	return nil
}
