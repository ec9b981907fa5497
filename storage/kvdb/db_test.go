package kvdb

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/girgism/khedma/core/user"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	dir, err := ioutil.TempDir("", "kvdb")
	if err != nil {
		t.Fatalf("TempDir() failed, %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed, %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDB_Load_missingKeyLeavesDefault(t *testing.T) {
	db := openTestDB(t)

	defaults := []string{"seed"}
	if err := db.Load("nothing", &defaults); err != nil {
		t.Fatalf("Load() failed, %v", err)
	}
	if len(defaults) != 1 || defaults[0] != "seed" {
		t.Errorf("Load() clobbered the caller default: %v", defaults)
	}
}

func TestDB_SaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)

	in := map[string]int{"a": 1, "b": 2}
	if err := db.Save("counts", in); err != nil {
		t.Fatalf("Save() failed, %v", err)
	}

	var out map[string]int
	if err := db.Load("counts", &out); err != nil {
		t.Fatalf("Load() failed, %v", err)
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Errorf("Load() = %v, want %v", out, in)
	}

	// no temp file left behind
	if _, err := os.Stat(filepath.Join(db.dir, "counts.json.tmp")); !os.IsNotExist(err) {
		t.Error("Save() left its temp file behind")
	}
}

func TestDB_Update_readsBeforeWrite(t *testing.T) {
	db := openTestDB(t)

	if err := db.Save("items", []string{"first"}); err != nil {
		t.Fatalf("Save() failed, %v", err)
	}

	// simulate another process replacing the document out from under us
	external, _ := json.Marshal([]string{"first", "external"})
	if err := ioutil.WriteFile(db.path("items"), external, 0o644); err != nil {
		t.Fatalf("WriteFile() failed, %v", err)
	}

	var items []string
	err := db.Update("items", &items, func() error {
		items = append(items, "mine")
		return nil
	})
	if err != nil {
		t.Fatalf("Update() failed, %v", err)
	}

	var out []string
	if err := db.Load("items", &out); err != nil {
		t.Fatalf("Load() failed, %v", err)
	}
	if len(out) != 3 || out[1] != "external" || out[2] != "mine" {
		t.Errorf("Update() = %v, want the external write composed under ours", out)
	}
}

func TestDB_Update_applyErrorAborts(t *testing.T) {
	db := openTestDB(t)

	if err := db.Save("items", []string{"first"}); err != nil {
		t.Fatalf("Save() failed, %v", err)
	}
	rev := db.Revision()

	var items []string
	err := db.Update("items", &items, func() error {
		items = nil
		return user.ErrNotFound
	})
	if err != user.ErrNotFound {
		t.Fatalf("Update() error = %v, want the apply error unchanged", err)
	}

	var out []string
	if err := db.Load("items", &out); err != nil {
		t.Fatalf("Load() failed, %v", err)
	}
	if len(out) != 1 || out[0] != "first" {
		t.Errorf("Update() persisted despite the apply error: %v", out)
	}
	if db.Revision() != rev {
		t.Error("Update() bumped the revision despite the apply error")
	}
}

func TestDB_Revision(t *testing.T) {
	db := openTestDB(t)

	rev := db.Revision()
	if err := db.Save("a", 1); err != nil {
		t.Fatalf("Save() failed, %v", err)
	}
	if err := db.Save("b", 2); err != nil {
		t.Fatalf("Save() failed, %v", err)
	}
	if got := db.Revision(); got != rev+2 {
		t.Errorf("Revision() = %d, want %d", got, rev+2)
	}
}

func TestDB_Watch_firesOnExternalWriteOnly(t *testing.T) {
	db := openTestDB(t)

	fired := make(chan struct{}, 8)
	db.Watch("items", func() { fired <- struct{}{} })

	// own write must not fire
	if err := db.Save("items", []string{"mine"}); err != nil {
		t.Fatalf("Save() failed, %v", err)
	}
	select {
	case <-fired:
		t.Fatal("Watch() fired for our own write")
	case <-time.After(200 * time.Millisecond):
	}

	// external write must fire and replace the cache
	external, _ := json.Marshal([]string{"theirs"})
	if err := ioutil.WriteFile(db.path("items"), external, 0o644); err != nil {
		t.Fatalf("WriteFile() failed, %v", err)
	}
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not fire for an external write")
	}

	var out []string
	if err := db.Load("items", &out); err != nil {
		t.Fatalf("Load() failed, %v", err)
	}
	if len(out) != 1 || out[0] != "theirs" {
		t.Errorf("Load() after external write = %v, want the external value", out)
	}
}

func TestUserRepository_roundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	usr := user.User{ID: "u1", Name: "Mina", Username: "mina", Email: "mina@test.cd"}
	if _, err := repo.CreateUser(usr); err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}

	got, err := repo.GetUserByUsernameOrEmail("mina@test.cd")
	if err != nil {
		t.Fatalf("GetUserByUsernameOrEmail() failed, %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("GetUserByUsernameOrEmail() = %+v, want u1", got)
	}

	got.Name = "Mina Adel"
	if _, err := repo.UpdateUser(got); err != nil {
		t.Fatalf("UpdateUser() failed, %v", err)
	}
	if got, _ = repo.GetUserByID("u1"); got.Name != "Mina Adel" {
		t.Errorf("GetUserByID() name = %s, want the update persisted", got.Name)
	}

	if _, err := repo.UpdateUser(user.User{ID: "ghost"}); err != user.ErrNotFound {
		t.Errorf("UpdateUser(ghost) error = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteUsersByID("u1"); err != nil {
		t.Fatalf("DeleteUsersByID() failed, %v", err)
	}
	if _, err := repo.GetUserByID("u1"); err != user.ErrNotFound {
		t.Errorf("GetUserByID() after delete error = %v, want ErrNotFound", err)
	}
}
