package echoapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/girgism/khedma/core"
)

func Test_appHTTPErrorHandler_storageError(t *testing.T) {
	e := echo.New()
	handler := newAppHTTPErrorHandler(nil, nil)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "storage error",
			err:      core.NewStorageError("attendance_records", errors.New("disk full")),
			wantCode: http.StatusServiceUnavailable,
			wantMsg:  "storage unavailable, try again",
		},
		{
			name:     "wrapped storage error",
			err:      errors.Wrap(core.NewStorageError("users", errors.New("disk full")), "saving record"),
			wantCode: http.StatusServiceUnavailable,
			wantMsg:  "storage unavailable, try again",
		},
		{
			name:     "other error",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  http.StatusText(http.StatusInternalServerError),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			ctx := e.NewContext(req, rec)

			handler(tt.err, ctx)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body httpErr
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshalling response failed: %v", err)
			}
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}
