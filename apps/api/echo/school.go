package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/girgism/khedma/core/school"
	"github.com/girgism/khedma/core/scope"
	"github.com/girgism/khedma/core/user"
)

type schoolApi struct {
	svc       *school.Service
	usrSvc    user.Service
	projector *scope.Projector
	revision  func() uint64
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service, usrSvc user.Service, revision func() uint64) {
	api := schoolApi{
		svc:       svc,
		usrSvc:    usrSvc,
		projector: scope.NewProjector(),
		revision:  revision,
	}

	sg := g.Group("/school", jwt)

	// scoped snapshot: every authenticated user sees only their slice
	sg.GET("", api.snapshot)

	lg := sg.Group("/levels")
	lg.POST("", api.createLevel, fullAccessMiddleware())
	lg.GET("", api.queryLevels)
	lg.GET("/:id", api.retrieveLevel)
	lg.PUT("/:id", api.updateLevel, fullAccessMiddleware())
	lg.DELETE("/:id", api.destroyLevel, fullAccessMiddleware())

	cg := sg.Group("/classes")
	cg.POST("", api.createClass, fullAccessMiddleware())
	cg.GET("", api.queryClasses)
	cg.GET("/:id", api.retrieveClass)
	cg.PUT("/:id", api.updateClass, fullAccessMiddleware())
	cg.DELETE("/:id", api.destroyClass, fullAccessMiddleware())

	chg := sg.Group("/children")
	chg.POST("", api.createChild, fullAccessMiddleware())
	chg.GET("", api.queryChildren)
	chg.GET("/:id", api.retrieveChild)
	chg.PUT("/:id", api.updateChild, fullAccessMiddleware())
	chg.DELETE("/:id", api.destroyChild, fullAccessMiddleware())

	svg := sg.Group("/servants")
	svg.POST("", api.createServant, fullAccessMiddleware())
	svg.GET("", api.queryServants)
	svg.GET("/:id", api.retrieveServant, fullAccessMiddleware())
	svg.PUT("/:id", api.updateServant, fullAccessMiddleware())
	svg.DELETE("/:id", api.destroyServant, fullAccessMiddleware())
}

// scopedSnapshot assembles the four collections and projects them for the
// acting user.
func (api *schoolApi) scopedSnapshot(ctx echo.Context) (scope.Snapshot, error) {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return scope.Snapshot{}, errors.Wrap(err, "getting context user")
	}

	// the revision must be read before the collections are queried so that a
	// write landing mid-assembly keys the memo at the older revision
	var rev uint64
	if api.revision != nil {
		rev = api.revision()
	}

	snap, err := api.fullSnapshot()
	if err != nil {
		return scope.Snapshot{}, err
	}

	if api.revision != nil {
		return api.projector.Project(&usr, snap, rev), nil
	}
	return scope.Project(&usr, snap), nil
}

func (api *schoolApi) fullSnapshot() (scope.Snapshot, error) {
	var snap scope.Snapshot
	var err error
	if snap.Levels, err = api.svc.QueryAllLevels(); err != nil {
		return snap, errors.Wrap(err, "querying levels")
	}
	if snap.Classes, err = api.svc.QueryAllClasses(); err != nil {
		return snap, errors.Wrap(err, "querying classes")
	}
	if snap.Children, err = api.svc.QueryAllChildren(); err != nil {
		return snap, errors.Wrap(err, "querying children")
	}
	if snap.Servants, err = api.svc.QueryAllServants(); err != nil {
		return snap, errors.Wrap(err, "querying servants")
	}
	return snap, nil
}

func (api *schoolApi) snapshot(ctx echo.Context) error {
	snap, err := api.scopedSnapshot(ctx)
	if err != nil {
		return err
	}
	if snap.Levels == nil {
		snap.Levels = []school.Level{}
	}
	if snap.Classes == nil {
		snap.Classes = []school.Class{}
	}
	if snap.Children == nil {
		snap.Children = []school.Child{}
	}
	if snap.Servants == nil {
		snap.Servants = []school.Servant{}
	}
	return ctx.JSON(http.StatusOK, snap)
}

// Levels

func (api *schoolApi) createLevel(ctx echo.Context) error {
	var data school.NewLevel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLevel")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	lvl, err := api.svc.CreateLevel(data)
	if err != nil {
		return errors.Wrap(err, "creating level")
	}
	return ctx.JSON(http.StatusCreated, lvl)
}

func (api *schoolApi) queryLevels(ctx echo.Context) error {
	snap, err := api.scopedSnapshot(ctx)
	if err != nil {
		return err
	}
	if snap.Levels == nil {
		snap.Levels = []school.Level{}
	}
	return ctx.JSON(http.StatusOK, snap.Levels)
}

func (api *schoolApi) retrieveLevel(ctx echo.Context) error {
	snap, err := api.scopedSnapshot(ctx)
	if err != nil {
		return err
	}
	for _, lvl := range snap.Levels {
		if lvl.ID == ctx.Param("id") {
			return ctx.JSON(http.StatusOK, lvl)
		}
	}
	return errHttpNotFound
}

func (api *schoolApi) updateLevel(ctx echo.Context) error {
	lvl, err := api.svc.GetLevel(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrLevelNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding level by ID")
	}
	if err := ctx.Bind(&lvl); err != nil {
		return errors.Wrap(err, "binding to Level")
	}
	lvl.ID = ctx.Param("id")
	lvl, err = api.svc.UpdateLevel(lvl)
	if err != nil {
		return errors.Wrap(err, "updating level")
	}
	return ctx.JSON(http.StatusOK, lvl)
}

func (api *schoolApi) destroyLevel(ctx echo.Context) error {
	if err := api.svc.DeleteLevels(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting level")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Classes

func (api *schoolApi) createClass(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	cls, err := api.svc.CreateClass(data)
	if err != nil {
		if errors.Cause(err) == school.ErrLevelNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *schoolApi) queryClasses(ctx echo.Context) error {
	snap, err := api.scopedSnapshot(ctx)
	if err != nil {
		return err
	}
	if snap.Classes == nil {
		snap.Classes = []school.Class{}
	}
	return ctx.JSON(http.StatusOK, snap.Classes)
}

func (api *schoolApi) retrieveClass(ctx echo.Context) error {
	snap, err := api.scopedSnapshot(ctx)
	if err != nil {
		return err
	}
	for _, cls := range snap.Classes {
		if cls.ID == ctx.Param("id") {
			return ctx.JSON(http.StatusOK, cls)
		}
	}
	return errHttpNotFound
}

func (api *schoolApi) updateClass(ctx echo.Context) error {
	cls, err := api.svc.GetClass(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding class by ID")
	}
	if err := ctx.Bind(&cls); err != nil {
		return errors.Wrap(err, "binding to Class")
	}
	cls.ID = ctx.Param("id")
	cls, err = api.svc.UpdateClass(cls)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *schoolApi) destroyClass(ctx echo.Context) error {
	if err := api.svc.DeleteClasses(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Children

func (api *schoolApi) createChild(ctx echo.Context) error {
	var data school.NewChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChild")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	chd, err := api.svc.CreateChild(data)
	if err != nil {
		if errors.Cause(err) == school.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating child")
	}
	return ctx.JSON(http.StatusCreated, chd)
}

func (api *schoolApi) queryChildren(ctx echo.Context) error {
	snap, err := api.scopedSnapshot(ctx)
	if err != nil {
		return err
	}
	children := snap.Children
	if classID := ctx.QueryParam("class_id"); classID != "" {
		filtered := make([]school.Child, 0, len(children))
		for _, chd := range children {
			if chd.ClassID == classID {
				filtered = append(filtered, chd)
			}
		}
		children = filtered
	}
	if children == nil {
		children = []school.Child{}
	}
	return ctx.JSON(http.StatusOK, children)
}

func (api *schoolApi) retrieveChild(ctx echo.Context) error {
	snap, err := api.scopedSnapshot(ctx)
	if err != nil {
		return err
	}
	for _, chd := range snap.Children {
		if chd.ID == ctx.Param("id") {
			return ctx.JSON(http.StatusOK, chd)
		}
	}
	return errHttpNotFound
}

func (api *schoolApi) updateChild(ctx echo.Context) error {
	chd, err := api.svc.GetChild(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrChildNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding child by ID")
	}
	if err := ctx.Bind(&chd); err != nil {
		return errors.Wrap(err, "binding to Child")
	}
	chd.ID = ctx.Param("id")
	chd, err = api.svc.UpdateChild(chd)
	if err != nil {
		return errors.Wrap(err, "updating child")
	}
	return ctx.JSON(http.StatusOK, chd)
}

func (api *schoolApi) destroyChild(ctx echo.Context) error {
	if err := api.svc.DeleteChildren(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting child")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Servants

func (api *schoolApi) createServant(ctx echo.Context) error {
	var data school.NewServant
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewServant")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	srv, err := api.svc.CreateServant(data)
	if err != nil {
		return errors.Wrap(err, "creating servant")
	}
	return ctx.JSON(http.StatusCreated, srv)
}

func (api *schoolApi) queryServants(ctx echo.Context) error {
	snap, err := api.scopedSnapshot(ctx)
	if err != nil {
		return err
	}
	if snap.Servants == nil {
		snap.Servants = []school.Servant{}
	}
	return ctx.JSON(http.StatusOK, snap.Servants)
}

func (api *schoolApi) retrieveServant(ctx echo.Context) error {
	srv, err := api.svc.GetServant(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrServantNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding servant by ID")
	}
	return ctx.JSON(http.StatusOK, srv)
}

func (api *schoolApi) updateServant(ctx echo.Context) error {
	srv, err := api.svc.GetServant(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrServantNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding servant by ID")
	}
	if err := ctx.Bind(&srv); err != nil {
		return errors.Wrap(err, "binding to Servant")
	}
	srv.ID = ctx.Param("id")
	srv, err = api.svc.UpdateServant(srv)
	if err != nil {
		return errors.Wrap(err, "updating servant")
	}
	return ctx.JSON(http.StatusOK, srv)
}

func (api *schoolApi) destroyServant(ctx echo.Context) error {
	if err := api.svc.DeleteServants(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting servant")
	}
	return ctx.NoContent(http.StatusNoContent)
}
