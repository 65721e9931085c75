package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escolaware/horario/core/audit"
)

type auditApi struct {
	svc *audit.Service
}

func registerAuditAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *audit.Service) {
	api := auditApi{svc: svc}

	ag := g.Group("/historico", jwt)
	ag.GET("", api.query)
	ag.GET("/estatisticas", api.statistics)
	ag.GET("/horario/:grupoId/:dia/:slotId", api.slotHistory)
}

func (api *auditApi) query(ctx echo.Context) error {
	filter := bindFilter(ctx)
	entries, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying audit entries")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *auditApi) slotHistory(ctx echo.Context) error {
	slotID, err := strconv.Atoi(ctx.Param("slotId"))
	if err != nil {
		return errHTTPNotFound
	}

	entries, err := api.svc.SlotHistory(ctx.Request().Context(), ctx.Param("grupoId"), ctx.Param("dia"), slotID)
	if err != nil {
		return errors.Wrap(err, "querying slot history")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *auditApi) statistics(ctx echo.Context) error {
	var filter audit.StatsFilter
	filter.DataInicio, filter.DataFim = bindDateRange(ctx)

	stats, err := api.svc.Statistics(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying audit statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// bindFilter reads the optional query params; malformed values are dropped
// rather than rejected.
func bindFilter(ctx echo.Context) audit.Filter {
	filter := audit.Filter{
		GrupoID: ctx.QueryParam("grupoId"),
		Dia:     ctx.QueryParam("dia"),
	}
	if v, err := strconv.Atoi(ctx.QueryParam("slotId")); err == nil {
		filter.SlotID = v
	}
	if v, err := strconv.Atoi(ctx.QueryParam("usuarioId")); err == nil {
		filter.UsuarioID = v
	}
	if k, err := audit.ParseKind(ctx.QueryParam("tipoAlteracao")); err == nil {
		filter.TipoAlteracao = k
	}
	if v, err := strconv.Atoi(ctx.QueryParam("limite")); err == nil && v > 0 {
		filter.Limite = v
	}
	filter.DataInicio, filter.DataFim = bindDateRange(ctx)
	return filter
}

// bindDateRange parses dataInicio/dataFim, accepting RFC3339 or a bare date.
// A bare dataFim date stretches to the end of that day (inclusive bounds).
func bindDateRange(ctx echo.Context) (inicio, fim time.Time) {
	inicio, _ = parseTimeParam(ctx.QueryParam("dataInicio"))
	fim, dateOnly := parseTimeParam(ctx.QueryParam("dataFim"))
	if dateOnly {
		fim = fim.Add(24*time.Hour - time.Nanosecond)
	}
	return inicio, fim
}

func parseTimeParam(s string) (t time.Time, dateOnly bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
