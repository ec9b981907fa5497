package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/girgism/khedma/core/attendance"
	"github.com/girgism/khedma/core/notification"
	"github.com/girgism/khedma/core/school"
	"github.com/girgism/khedma/core/scope"
	"github.com/girgism/khedma/core/user"
	emailsvc "github.com/girgism/khedma/services/email"
)

func seedSchool(t *testing.T, env *testEnv) {
	t.Helper()

	mustCreate := func(err error) {
		if err != nil {
			t.Fatalf("seedSchool() failed: %v", err)
		}
	}

	_, err := env.schRepo.CreateLevel(school.Level{ID: "lvl-prim", Name: "Primary"})
	mustCreate(err)
	_, err = env.schRepo.CreateLevel(school.Level{ID: "lvl-prep", Name: "Preparatory"})
	mustCreate(err)

	_, err = env.schRepo.CreateClass(school.Class{
		ID: "cls-p1", LevelID: "lvl-prim", Grade: "1", Name: "Grade 1",
		SupervisorName: "Mina Adel",
	})
	mustCreate(err)
	_, err = env.schRepo.CreateClass(school.Class{
		ID: "cls-j1", LevelID: "lvl-prep", Grade: "1", Name: "Prep 1",
		SupervisorName: "Kirollos Samir",
	})
	mustCreate(err)

	_, err = env.schRepo.CreateChild(school.Child{ID: "chd-1", ClassID: "cls-p1", Name: "Youssef"})
	mustCreate(err)
	_, err = env.schRepo.CreateChild(school.Child{ID: "chd-2", ClassID: "cls-p1", Name: "Demiana"})
	mustCreate(err)
	_, err = env.schRepo.CreateChild(school.Child{ID: "chd-3", ClassID: "cls-j1", Name: "Abanoub"})
	mustCreate(err)

	_, err = env.schRepo.CreateServant(school.Servant{ID: "srv-1", Name: "Mina Adel", Phone: "0100", NationalID: "298"})
	mustCreate(err)
}

func Test_userApi_login(t *testing.T) {
	env := setupServer(t)
	createUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "s3cr3t", []string{user.RoleGeneralSecretary}, nil)

	tests := []struct {
		name     string
		body     []byte
		wantCode int
	}{
		{name: "valid credentials", body: []byte(`{"username": "admin", "password": "s3cr3t"}`), wantCode: http.StatusOK},
		{name: "login with email", body: []byte(`{"username": "admin@test.cd", "password": "s3cr3t"}`), wantCode: http.StatusOK},
		{name: "wrong password", body: []byte(`{"username": "admin", "password": "nope"}`), wantCode: http.StatusBadRequest},
		{name: "unknown user", body: []byte(`{"username": "ghost", "password": "nope"}`), wantCode: http.StatusBadRequest},
		{name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			env.server.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling response failed: %v", err)
				}
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func Test_userApi_passwordReset(t *testing.T) {
	env := setupServer(t)
	createUser(t, env.usrRepo, "Mai Adel", "maiadel", "mai@test.cd", "s3cr3t", []string{user.RoleSecretary}, []string{"lvl-prim"})

	sent := len(emailsvc.SentMessages)

	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", []byte(`{"email": "mai@test.cd"}`))
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.Len(t, emailsvc.SentMessages, sent+1) {
		msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		assert.Contains(t, msg.Subject, "Password Reset")
	}

	// an unknown email is accepted without a mail going out
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset", []byte(`{"email": "ghost@test.cd"}`))
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, emailsvc.SentMessages, sent+1)
}

func Test_schoolApi_snapshotScoping(t *testing.T) {
	env := setupServer(t)
	seedSchool(t, env)

	admin := createUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "s3cr3t", []string{user.RoleGeneralSecretary}, nil)
	supervisor := createUser(t, env.usrRepo, "Mina Adel", "mina", "mina@test.cd", "s3cr3t", []string{user.RoleClassSupervisor}, nil)
	secretary := createUser(t, env.usrRepo, "Sara Fawzy", "sara", "sara@test.cd", "s3cr3t", []string{user.RoleLevelSecretary}, []string{"lvl-prep"})

	t.Run("unauthenticated", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/school")
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("full access sees everything", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/school", getToken(t, admin))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var snap scope.Snapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("unmarshalling snapshot failed: %v", err)
		}
		assert.Len(t, snap.Levels, 2)
		assert.Len(t, snap.Classes, 2)
		assert.Len(t, snap.Children, 3)
		assert.Len(t, snap.Servants, 1)
	})

	t.Run("class supervisor sees own class only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/school", getToken(t, supervisor))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var snap scope.Snapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("unmarshalling snapshot failed: %v", err)
		}
		if assert.Len(t, snap.Classes, 1) {
			assert.Equal(t, "cls-p1", snap.Classes[0].ID)
		}
		assert.Len(t, snap.Children, 2)
		if assert.Len(t, snap.Servants, 1) {
			assert.Equal(t, "srv-1", snap.Servants[0].ID)
		}
	})

	t.Run("level secretary sees assigned level, restricted servants", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/school", getToken(t, secretary))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var snap scope.Snapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("unmarshalling snapshot failed: %v", err)
		}
		if assert.Len(t, snap.Levels, 1) {
			assert.Equal(t, "lvl-prep", snap.Levels[0].ID)
		}
		assert.Len(t, snap.Children, 1)
		for _, srv := range snap.Servants {
			assert.Empty(t, srv.NationalID, "restricted servant fields must not leak")
		}
	})

	t.Run("writes are full-access only", func(t *testing.T) {
		body := marchallObj(t, school.NewLevel{Name: "Secondary"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/school/levels", getToken(t, supervisor), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/v1/school/levels", getToken(t, admin), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func Test_attendanceApi_flow(t *testing.T) {
	env := setupServer(t)
	seedSchool(t, env)

	supervisor := createUser(t, env.usrRepo, "Mina Adel", "mina", "mina@test.cd", "s3cr3t", []string{user.RoleClassSupervisor}, nil)
	token := getToken(t, supervisor)

	t.Run("open fresh sheet", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/records?class_id=cls-p1&date=2025-03-07", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp RecordResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		assert.False(t, resp.Exists)
		assert.Len(t, resp.Entries, 2)
		for childID, e := range resp.Entries {
			assert.Equal(t, attendance.StatusAbsent, e.Status)
			assert.Zero(t, resp.Totals[childID])
		}
		assert.Equal(t, attendance.DefaultSettings, resp.Settings)
	})

	t.Run("status and manual points", func(t *testing.T) {
		body := []byte(`{"class_id": "cls-p1", "date": "2025-03-07", "child_id": "chd-1", "status": "present"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/records/status", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp RecordResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		assert.True(t, resp.Exists)
		// attendance 10 + prayer 5 + behavior 5
		assert.Equal(t, 20, resp.Totals["chd-1"])

		body = []byte(`{"class_id": "cls-p1", "date": "2025-03-07", "child_id": "chd-1", "delta": 3}`)
		req, rec = newAuthRequest(http.MethodPost, "/v1/attendance/records/psalm", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		assert.Equal(t, 23, resp.Totals["chd-1"])

		// psalm on an absent child is rejected
		body = []byte(`{"class_id": "cls-p1", "date": "2025-03-07", "child_id": "chd-2", "delta": 3}`)
		req, rec = newAuthRequest(http.MethodPost, "/v1/attendance/records/psalm", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("mark all present", func(t *testing.T) {
		body := []byte(`{"class_id": "cls-p1", "date": "2025-03-07"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/records/mark-all-present", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp RecordResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		for childID, e := range resp.Entries {
			assert.Equal(t, attendance.StatusPresent, e.Status)
			// manual points reset on the bulk transition
			assert.Equal(t, 20, resp.Totals[childID])
		}
	})

	t.Run("history", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/history/cls-p1", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var hist attendance.History
		if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
			t.Fatalf("unmarshalling history failed: %v", err)
		}
		assert.Equal(t, []string{"2025-03-07"}, hist.Dates)
	})

	t.Run("invisible class is forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/records?class_id=cls-j1&date=2025-03-07", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bad date is a field error", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/records?class_id=cls-p1&date=07/03/2025", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_notificationApi(t *testing.T) {
	env := setupServer(t)

	admin := createUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "s3cr3t", []string{user.RoleGeneralSecretary}, nil)
	servant := createUser(t, env.usrRepo, "Mina Adel", "mina", "mina@test.cd", "s3cr3t", []string{user.RoleServant}, nil)

	t.Run("create is full-access only", func(t *testing.T) {
		body := marchallObj(t, notification.NewNotification{Title: "Trip", Body: "Saturday trip", Roles: []string{user.RoleServant}})
		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications", getToken(t, servant), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/v1/notifications", getToken(t, admin), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("query and mark read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/notifications", getToken(t, servant))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var notifs []notification.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &notifs); err != nil {
			t.Fatalf("unmarshalling notifications failed: %v", err)
		}
		if !assert.Len(t, notifs, 1) {
			return
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/notifications/"+notifs[0].ID+"/read", getToken(t, servant))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var n notification.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &n); err != nil {
			t.Fatalf("unmarshalling notification failed: %v", err)
		}
		assert.Contains(t, n.ReadBy, servant.ID)
	})
}
