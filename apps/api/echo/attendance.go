package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/girgism/khedma/core"
	"github.com/girgism/khedma/core/attendance"
	"github.com/girgism/khedma/core/school"
	"github.com/girgism/khedma/core/scope"
	"github.com/girgism/khedma/core/user"
)

type attendanceApi struct {
	svc       *attendance.Service
	schoolSvc *school.Service
	usrSvc    user.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, schoolSvc *school.Service, usrSvc user.Service) {
	api := attendanceApi{
		svc:       svc,
		schoolSvc: schoolSvc,
		usrSvc:    usrSvc,
	}

	ag := g.Group("/attendance", jwt)
	ag.GET("/records", api.open)
	ag.POST("/records/status", api.setStatus)
	ag.POST("/records/psalm", api.adjustPsalm)
	ag.POST("/records/scarf", api.adjustScarf)
	ag.POST("/records/mark-all-present", api.markAllPresent)
	ag.GET("/history/:classID", api.history)
	ag.GET("/settings/:classID", api.settings)
	ag.PUT("/settings/:classID", api.saveSettings, fullAccessMiddleware())
}

type (
	RecordKeyRequest struct {
		ClassID string `json:"class_id" query:"class_id" validate:"required"`
		Date    string `json:"date" query:"date" validate:"required,date_"`
	}

	StatusRequest struct {
		RecordKeyRequest
		ChildID string `json:"child_id" validate:"required"`
		Status  string `json:"status" validate:"required"`
	}

	AdjustRequest struct {
		RecordKeyRequest
		ChildID string `json:"child_id" validate:"required"`
		Delta   int    `json:"delta"`
	}

	RecordResponse struct {
		ClassID  string                      `json:"class_id"`
		Date     string                      `json:"date"`
		Exists   bool                        `json:"exists"`
		Entries  map[string]attendance.Entry `json:"attendance_data"`
		Totals   map[string]int              `json:"totals"`
		Settings attendance.Settings         `json:"settings"`
	}
)

func (rk *RecordKeyRequest) Validate() error {
	rk.ClassID = core.CleanString(rk.ClassID)
	rk.Date = core.CleanString(rk.Date)
	return core.Validate.Struct(rk)
}

func (sr *StatusRequest) Validate() error {
	sr.ClassID = core.CleanString(sr.ClassID)
	sr.Date = core.CleanString(sr.Date)
	return core.Validate.Struct(sr)
}

func (ar *AdjustRequest) Validate() error {
	ar.ClassID = core.CleanString(ar.ClassID)
	ar.Date = core.CleanString(ar.Date)
	return core.Validate.Struct(ar)
}

// checkClassVisible rejects attendance access to classes outside the acting
// user's visibility scope.
func (api *attendanceApi) checkClassVisible(ctx echo.Context, classID string) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if usr.HasFullAccess() {
		return nil
	}

	var snap scope.Snapshot
	if snap.Levels, err = api.schoolSvc.QueryAllLevels(); err != nil {
		return errors.Wrap(err, "querying levels")
	}
	if snap.Classes, err = api.schoolSvc.QueryAllClasses(); err != nil {
		return errors.Wrap(err, "querying classes")
	}

	for _, cls := range scope.Project(&usr, snap).Classes {
		if cls.ID == classID {
			return nil
		}
	}
	return errHttpForbidden
}

func newRecordResponse(ed *attendance.EditableRecord) RecordResponse {
	entries := make(map[string]attendance.Entry, len(ed.Entries))
	totals := make(map[string]int, len(ed.Entries))
	for childID, e := range ed.Entries {
		entries[childID] = *e
		totals[childID] = ed.Total(childID)
	}
	return RecordResponse{
		ClassID:  ed.ClassID,
		Date:     ed.Date,
		Exists:   ed.Exists(),
		Entries:  entries,
		Totals:   totals,
		Settings: ed.Settings,
	}
}

// Handlers

func (api *attendanceApi) open(ctx echo.Context) error {
	var key RecordKeyRequest
	if err := ctx.Bind(&key); err != nil {
		return errors.Wrap(err, "binding to RecordKeyRequest")
	}
	if err := key.Validate(); err != nil {
		return err
	}
	if err := api.checkClassVisible(ctx, key.ClassID); err != nil {
		return err
	}

	ed, err := api.svc.Open(key.ClassID, key.Date)
	if err != nil {
		return errors.Wrap(err, "opening attendance record")
	}
	return ctx.JSON(http.StatusOK, newRecordResponse(ed))
}

func (api *attendanceApi) setStatus(ctx echo.Context) error {
	var data StatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if err := api.checkClassVisible(ctx, data.ClassID); err != nil {
		return err
	}

	return api.mutate(ctx, data.ClassID, data.Date, func(ed *attendance.EditableRecord) error {
		return ed.SetStatus(data.ChildID, attendance.Status(data.Status))
	})
}

func (api *attendanceApi) adjustPsalm(ctx echo.Context) error {
	var data AdjustRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdjustRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if err := api.checkClassVisible(ctx, data.ClassID); err != nil {
		return err
	}

	return api.mutate(ctx, data.ClassID, data.Date, func(ed *attendance.EditableRecord) error {
		return ed.AdjustPsalm(data.ChildID, data.Delta)
	})
}

func (api *attendanceApi) adjustScarf(ctx echo.Context) error {
	var data AdjustRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdjustRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if err := api.checkClassVisible(ctx, data.ClassID); err != nil {
		return err
	}

	return api.mutate(ctx, data.ClassID, data.Date, func(ed *attendance.EditableRecord) error {
		return ed.AdjustScarf(data.ChildID, data.Delta)
	})
}

func (api *attendanceApi) markAllPresent(ctx echo.Context) error {
	var key RecordKeyRequest
	if err := ctx.Bind(&key); err != nil {
		return errors.Wrap(err, "binding to RecordKeyRequest")
	}
	if err := key.Validate(); err != nil {
		return err
	}
	if err := api.checkClassVisible(ctx, key.ClassID); err != nil {
		return err
	}

	return api.mutate(ctx, key.ClassID, key.Date, func(ed *attendance.EditableRecord) error {
		ed.MarkAllPresent()
		return nil
	})
}

// mutate opens the sheet, applies fn and saves, returning the updated view.
func (api *attendanceApi) mutate(ctx echo.Context, classID, date string, fn func(*attendance.EditableRecord) error) error {
	ed, err := api.svc.Open(classID, date)
	if err != nil {
		return errors.Wrap(err, "opening attendance record")
	}

	if err := fn(ed); err != nil {
		switch errors.Cause(err) {
		case attendance.ErrChildNotOnRecord:
			return errHttpNotFound
		case attendance.ErrChildAbsent:
			return core.NewValidationError(err)
		}
		return err
	}

	if _, err := api.svc.Save(ed); err != nil {
		return errors.Wrap(err, "saving attendance record")
	}
	return ctx.JSON(http.StatusOK, newRecordResponse(ed))
}

func (api *attendanceApi) history(ctx echo.Context) error {
	classID := ctx.Param("classID")
	if err := api.checkClassVisible(ctx, classID); err != nil {
		return err
	}

	hist, err := api.svc.History(classID)
	if err != nil {
		return errors.Wrap(err, "building attendance history")
	}
	return ctx.JSON(http.StatusOK, hist)
}

func (api *attendanceApi) settings(ctx echo.Context) error {
	classID := ctx.Param("classID")
	if err := api.checkClassVisible(ctx, classID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.ResolveSettings(classID))
}

func (api *attendanceApi) saveSettings(ctx echo.Context) error {
	var data attendance.Settings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Settings")
	}
	if err := api.svc.SaveSettings(ctx.Param("classID"), data); err != nil {
		return errors.Wrap(err, "saving points settings")
	}
	return ctx.JSON(http.StatusOK, data)
}
