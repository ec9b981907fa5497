package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/girgism/khedma/core/notification"
	"github.com/girgism/khedma/core/user"
)

type notificationApi struct {
	svc    *notification.Service
	usrSvc user.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service, usrSvc user.Service) {
	api := notificationApi{svc: svc, usrSvc: usrSvc}

	ng := g.Group("/notifications", jwt)
	ng.POST("", api.create, fullAccessMiddleware())
	ng.GET("", api.query)
	ng.POST("/:id/read", api.markRead)
	ng.DELETE("/:id", api.destroy, fullAccessMiddleware())
}

func (api *notificationApi) create(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	n, err := api.svc.Create(data, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *notificationApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	notifs, err := api.svc.QueryForUser(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	n, err := api.svc.MarkRead(ctx.Param("id"), ctxUsr.ID)
	if err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *notificationApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return ctx.NoContent(http.StatusNoContent)
}
