package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"MacroCast/internal/domain/models"
	"MacroCast/internal/usecase"
	xhttp "MacroCast/pkg/http"
	"MacroCast/pkg/http/middleware"
	xlogger "MacroCast/pkg/logger"
)

// MacroEchoHandler serves macro forecasts over echo.
type MacroEchoHandler struct {
	logger    *xlogger.Logger
	forecasts usecase.MacroForecaster
	limiter   *middleware.Limiter
}

// NewMacroEchoHandler creates the handler. limiter may be nil to disable
// per-client rate limiting.
func NewMacroEchoHandler(logger *xlogger.Logger, forecasts usecase.MacroForecaster, limiter *middleware.Limiter) *MacroEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &MacroEchoHandler{logger: logger, forecasts: forecasts, limiter: limiter}
}

func (h *MacroEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/ml/v1")
	if h.limiter != nil {
		g.Use(middleware.RateLimit(h.limiter))
	}
	g.GET("/macro/:series", h.Macro)
}

// Macro returns the bare ForecastResult JSON on success.
func (h *MacroEchoHandler) Macro(c echo.Context) error {
	req := &models.MacroForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	horizon, verr := parseHorizon(req.Horizon)
	if verr != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{*verr})
	}

	res, err := h.forecasts.GetMacroForecast(c.Request().Context(), req.Series, req.From, horizon)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.mapError(req.Series, err))
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return c.JSON(http.StatusOK, res)
}

// parseHorizon returns nil for a blank value.
func parseHorizon(raw string) (*int, *xhttp.ValidationError) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &xhttp.ValidationError{
			Code:    "ERR_INTEGER",
			Field:   "horizonte",
			Message: "horizonte must be an integer",
		}
	}
	if v > models.MaxRequestHorizon {
		limit := strconv.Itoa(models.MaxRequestHorizon)
		return nil, &xhttp.ValidationError{
			Code:    "ERR_MAX",
			Field:   "horizonte",
			Message: "horizonte must be less than or equal to " + limit,
			Params:  map[string]interface{}{"max": limit},
		}
	}
	return &v, nil
}

func (h *MacroEchoHandler) mapError(series string, err error) *xhttp.AppError {
	switch {
	case models.IsClientError(err):
		return xhttp.NewAppError(errorCode(err), "", err.Error(), http.StatusBadRequest).WithError(err)
	case models.IsSourceError(err):
		h.logger.Warn("macro source error", xlogger.String("series", series), xlogger.Error(err))
		return xhttp.BadGatewayError(err.Error()).WithError(err)
	default:
		h.logger.Error("macro forecast failed", xlogger.String("series", series), xlogger.Error(err))
		return xhttp.InternalError("failed to build forecast").WithError(err)
	}
}

var errorCodes = []struct {
	err  error
	code string
}{
	{models.ErrInvalidInput, "ERR_INVALID_INPUT"},
	{models.ErrUnknownSeries, "ERR_UNKNOWN_SERIES"},
	{models.ErrInvalidDateFormat, "ERR_INVALID_DATE"},
	{models.ErrInvertedRange, "ERR_INVERTED_RANGE"},
	{models.ErrInvalidHorizon, "ERR_INVALID_HORIZON"},
	{models.ErrEmptySeries, "ERR_EMPTY_SERIES"},
}

func errorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "ERR_BAD_REQUEST"
}
