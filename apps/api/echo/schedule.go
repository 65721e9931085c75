package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escolaware/horario/core/schedule"
	"github.com/escolaware/horario/core/user"
	exportsvc "github.com/escolaware/horario/services/export"
)

type scheduleApi struct {
	svc    *schedule.Service
	usrSvc *user.Service
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schedule.Service, usrSvc *user.Service) {
	api := scheduleApi{svc: svc, usrSvc: usrSvc}

	hg := g.Group("/horarios", jwt)

	// reads: every authenticated profile
	hg.GET("", api.query)
	hg.GET("/conflitos", api.conflicts)
	hg.GET("/:grupoId", api.retrieve)
	hg.GET("/:grupoId/professores", api.teacherGrade)
	hg.GET("/:grupoId/turmas", api.classGrade)
	hg.GET("/:grupoId/alertas", api.alerts)

	// writes: editing profiles only
	hg.POST("", api.save, editorMiddleware())
	hg.DELETE("/:grupoId/:dia/:slotId", api.clearSlot, editorMiddleware())
	hg.DELETE("/:grupoId", api.clearGroup, editorMiddleware())

	eg := g.Group("/export/horarios", jwt)
	eg.GET("/:grupoId/professores.csv", api.exportTeacherGrid)
	eg.GET("/:grupoId/turmas.csv", api.exportClassGrid)
}

func (api *scheduleApi) query(ctx echo.Context) error {
	tt, err := api.svc.Timetable(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying timetable")
	}
	return ctx.JSON(http.StatusOK, tt)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	horario, err := api.svc.GroupTimetable(ctx.Request().Context(), ctx.Param("grupoId"))
	if err != nil {
		if errors.Cause(err) == schedule.ErrUnknownGroup {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "querying group timetable")
	}
	return ctx.JSON(http.StatusOK, horario)
}

func (api *scheduleApi) teacherGrade(ctx echo.Context) error {
	grade, err := api.svc.TeacherGrade(ctx.Request().Context(), ctx.Param("grupoId"))
	if err != nil {
		if errors.Cause(err) == schedule.ErrUnknownGroup {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "building teacher grade")
	}
	return ctx.JSON(http.StatusOK, grade)
}

func (api *scheduleApi) classGrade(ctx echo.Context) error {
	grade, err := api.svc.ClassGrade(ctx.Request().Context(), ctx.Param("grupoId"))
	if err != nil {
		if errors.Cause(err) == schedule.ErrUnknownGroup {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "building class grade")
	}
	return ctx.JSON(http.StatusOK, grade)
}

func (api *scheduleApi) conflicts(ctx echo.Context) error {
	conflitos, err := api.svc.Conflicts(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "checking conflicts")
	}
	return ctx.JSON(http.StatusOK, conflitos)
}

func (api *scheduleApi) alerts(ctx echo.Context) error {
	alertas, err := api.svc.Alerts(ctx.Request().Context(), ctx.Param("grupoId"))
	if err != nil {
		if errors.Cause(err) == schedule.ErrUnknownGroup {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "checking alerts")
	}
	return ctx.JSON(http.StatusOK, alertas)
}

func (api *scheduleApi) save(ctx echo.Context) error {
	var data schedule.SlotInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SlotInput")
	}

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	res, err := api.svc.SaveSlot(ctx.Request().Context(), data, actor)
	if err != nil {
		return err
	}
	code := http.StatusOK
	if res.Criado {
		code = http.StatusCreated
	}
	return ctx.JSON(code, res)
}

func (api *scheduleApi) clearSlot(ctx echo.Context) error {
	slotID, err := strconv.Atoi(ctx.Param("slotId"))
	if err != nil {
		return errHTTPNotFound
	}
	data := schedule.ClearInput{
		GrupoID: ctx.Param("grupoId"),
		Dia:     ctx.Param("dia"),
		SlotID:  slotID,
	}

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.ClearSlot(ctx.Request().Context(), data, actor); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) clearGroup(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.ClearGroup(ctx.Request().Context(), ctx.Param("grupoId"), actor); err != nil {
		if errors.Cause(err) == schedule.ErrUnknownGroup {
			return errHTTPNotFound
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) exportTeacherGrid(ctx echo.Context) error {
	grupoID := ctx.Param("grupoId")
	grade, err := api.svc.TeacherGrade(ctx.Request().Context(), grupoID)
	if err != nil {
		if errors.Cause(err) == schedule.ErrUnknownGroup {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "building teacher grade")
	}

	layout := api.svc.Layout()
	grupo, _ := layout.Group(grupoID)

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "horario-professores-"+grupoID+".csv"))
	res.WriteHeader(http.StatusOK)
	return exportsvc.WriteTeacherGrid(res, grade, layout.Dias, grupo.LessonCount())
}

func (api *scheduleApi) exportClassGrid(ctx echo.Context) error {
	grupoID := ctx.Param("grupoId")
	grade, err := api.svc.ClassGrade(ctx.Request().Context(), grupoID)
	if err != nil {
		if errors.Cause(err) == schedule.ErrUnknownGroup {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "building class grade")
	}

	layout := api.svc.Layout()
	grupo, _ := layout.Group(grupoID)

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "horario-turmas-"+grupoID+".csv"))
	res.WriteHeader(http.StatusOK)
	return exportsvc.WriteClassGrid(res, grade, layout.Dias, grupo.LessonCount())
}
