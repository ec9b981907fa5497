package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"testing"

	"github.com/girgism/khedma/core/user"
	"github.com/girgism/khedma/storage/kvdb"
	"github.com/girgism/khedma/storage/memdb"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := memdb.Open()
	if err != nil {
		t.Fatalf("memdb.Open() failed, %v", err)
	}
	usrRepo = memdb.NewUserRepository(db)

	// start CLI
	return &commandLine{
		usrRepo: usrRepo,
	}
}

func createUser(t *testing.T, name, uname, email, pwd string) user.User {
	t.Helper()

	usr := user.User{
		ID:       uname,
		Name:     name,
		Username: uname,
		Email:    email,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	usr, err := usrRepo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "User", "awe", "awe@test.cd", "mdr")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "mai", "-email", "mai@test.cd"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-name", "Mai", "-username", "mai", "-email", "mai@test.cd"}, extra: extra{pwd: "s3cr3t"}},
		{name: "create admin", args: []string{"adduser", "-name", "Abouna", "-username", "abouna", "-email", "abouna@test.cd", "-admin"}, extra: extra{pwd: "s3cr3t"}},
		{name: "update existing", args: []string{"adduser", "-username", "mai", "-email", "mai@test.cd"}, extra: extra{pwd: "n3w-s3cr3t"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := usrRepo.GetUserByUsername("abouna")
	if err != nil {
		t.Fatalf("GetUserByUsername() failed, %v", err)
	}
	if !usr.HasFullAccess() {
		t.Error("expected admin user to have full access")
	}
	if usr.IsActive == nil || !*usr.IsActive {
		t.Error("expected created user to be active")
	}
}

func Test_commandLine_initStore(t *testing.T) {
	dir, err := ioutil.TempDir("", "khedma-admin-test")
	if err != nil {
		t.Fatalf("TempDir() failed, %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	db, err := kvdb.Open(dir)
	if err != nil {
		t.Fatalf("kvdb.Open() failed, %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cli := &commandLine{db: db}

	// dry-run reports without writing
	if err := cli.run([]string{"admin", "initstore", "-dry-run"}); err != nil {
		t.Fatalf("cli.run() failed, %v", err)
	}
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() failed, %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files after dry-run, got %d", len(files))
	}

	if err := cli.run([]string{"admin", "initstore"}); err != nil {
		t.Fatalf("cli.run() failed, %v", err)
	}
	if files, err = ioutil.ReadDir(dir); err != nil {
		t.Fatalf("ReadDir() failed, %v", err)
	}
	if len(files) != len(storeDefaults) {
		t.Errorf("expected %d seeded collections, got %d files", len(storeDefaults), len(files))
	}

	// existing documents survive a re-run
	kvUsrRepo := kvdb.NewUserRepository(db)
	if _, err := kvUsrRepo.CreateUser(user.User{ID: "usr-1", Username: "mai"}); err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	if err := cli.run([]string{"admin", "initstore"}); err != nil {
		t.Fatalf("cli.run() failed, %v", err)
	}
	if _, err := kvUsrRepo.GetUserByID("usr-1"); err != nil {
		t.Errorf("GetUserByID() after initstore re-run failed, %v", err)
	}
}
