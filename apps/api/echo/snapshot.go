package echoapi

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escolaware/horario/core/schedule"
	"github.com/escolaware/horario/core/snapshot"
	"github.com/escolaware/horario/core/user"
)

type snapshotApi struct {
	svc      *snapshot.Service
	schedSvc *schedule.Service
	usrSvc   *user.Service
}

func registerSnapshotAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *snapshot.Service,
	schedSvc *schedule.Service,
	usrSvc *user.Service,
) {
	api := snapshotApi{svc: svc, schedSvc: schedSvc, usrSvc: usrSvc}

	sg := g.Group("/snapshots", jwt)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.GET("/:id/diff/:grupoId", api.diff)
	sg.POST("", api.create, editorMiddleware())
	sg.POST("/:id/restaurar", api.restore, editorMiddleware())
	sg.DELETE("/:id", api.destroy, editorMiddleware())
}

func (api *snapshotApi) create(ctx echo.Context) error {
	var data snapshot.NewSnapshot
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSnapshot")
	}

	// no explicit payload: capture the live timetable
	if data.Dados == nil {
		tt, err := api.schedSvc.Timetable(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "capturing live timetable")
		}
		data.Dados = tt
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	snap, err := api.svc.Create(ctx.Request().Context(), data, actor)
	if err != nil {
		return errors.Wrap(err, "creating snapshot")
	}
	return ctx.JSON(http.StatusCreated, snap)
}

func (api *snapshotApi) query(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limite"))

	snaps, err := api.svc.List(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "listing snapshots")
	}
	return ctx.JSON(http.StatusOK, snaps)
}

func (api *snapshotApi) retrieve(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	snap, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == snapshot.ErrNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "getting snapshot")
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *snapshotApi) destroy(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == snapshot.ErrNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "deleting snapshot")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *snapshotApi) restore(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.Restore(ctx.Request().Context(), id, actor); err != nil {
		if errors.Cause(err) == snapshot.ErrNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "restoring snapshot")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *snapshotApi) diff(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}
	grupoID := ctx.Param("grupoId")

	rctx := ctx.Request().Context()
	live, err := api.schedSvc.Timetable(rctx)
	if err != nil {
		return errors.Wrap(err, "querying live timetable")
	}

	if ctx.QueryParam("formato") == "texto" {
		snap, err := api.svc.Get(rctx, id)
		if err != nil {
			if errors.Cause(err) == snapshot.ErrNotFound {
				return errHTTPNotFound
			}
			return errors.Wrap(err, "getting snapshot")
		}
		text, err := snapshot.UnifiedDiff(snap, grupoID, live, api.schedSvc.Layout())
		if err != nil {
			if errors.Cause(err) == snapshot.ErrUnknownGroup {
				return errHTTPNotFound
			}
			return errors.Wrap(err, "rendering unified diff")
		}
		return ctx.String(http.StatusOK, text)
	}

	diffs, err := api.svc.Diff(rctx, id, grupoID, live)
	if err != nil {
		switch errors.Cause(err) {
		case snapshot.ErrNotFound, snapshot.ErrUnknownGroup:
			return errHTTPNotFound
		}
		return errors.Wrap(err, "diffing snapshot")
	}
	return ctx.JSON(http.StatusOK, diffs)
}
