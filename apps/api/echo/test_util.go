package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/girgism/khedma/core/attendance"
	"github.com/girgism/khedma/core/notification"
	"github.com/girgism/khedma/core/school"
	"github.com/girgism/khedma/core/user"
	emailsvc "github.com/girgism/khedma/services/email"
	"github.com/girgism/khedma/storage/memdb"
)

type testEnv struct {
	server  Server
	db      *memdb.DB
	usrRepo user.Repository
	schRepo school.Repository
	attRepo attendance.Repository
	usrSvc  user.Service
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()

	db, err := memdb.Open()
	if err != nil {
		t.Fatalf("setupServer() failed: %v", err)
	}

	usrRepo := memdb.NewUserRepository(db)
	schRepo := memdb.NewSchoolRepository(db)
	attRepo := memdb.NewAttendanceRepository(db)
	notifRepo := memdb.NewNotificationRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewServiceMock(usrRepo, mailSvc) // reset mails sent synchronously

	srv := NewServer(&Options{
		Address:         ":0",
		DisableReqLogs:  true,
		UserSvc:         usrSvc,
		SchoolSvc:       school.NewService(schRepo),
		AttendanceSvc:   attendance.NewService(attRepo, schRepo),
		NotificationSvc: notification.NewService(notifRepo, usrRepo, mailSvc),
	})

	return &testEnv{
		server:  srv,
		db:      db,
		usrRepo: usrRepo,
		schRepo: schRepo,
		attRepo: attRepo,
		usrSvc:  usrSvc,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func createUser(t *testing.T, repo user.Repository, name, uname, email, pwd string, roles, levelIDs []string) user.User {
	t.Helper()

	now := time.Now().UTC()
	active := true
	usr := user.User{
		ID:        uname,
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		LevelIDs:  levelIDs,
		IsActive:  &active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}
