package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"PriceCast/internal/domain/models"
	domsvc "PriceCast/internal/domain/service"
	"PriceCast/internal/forecast"
	xhttp "PriceCast/pkg/http"
	xlogger "PriceCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler serves the prediction and market data routes.
type ForecastEchoHandler struct {
	logger     *xlogger.Logger
	forecaster domsvc.Forecaster
	history    domsvc.HistoryService
}

func NewForecastEchoHandler(logger *xlogger.Logger, forecaster domsvc.Forecaster, history domsvc.HistoryService) *ForecastEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ForecastEchoHandler{logger: logger, forecaster: forecaster, history: history}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/predict", h.Predict)
	e.GET("/stock-data", h.StockData)
	e.GET("/models", h.Models)
	e.GET("/forecasts/recent", h.Recent)
}

func (h *ForecastEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.AppErrorResponse(c, verr)
	}

	prices, nullAt := req.Prices()
	if nullAt >= 0 {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_VALIDATION", "closing_prices",
			fmt.Sprintf("value at index %d must be a finite non-negative number", nullAt), http.StatusBadRequest).
			WithParam("index", nullAt))
	}

	res, err := h.forecaster.Forecast(c.Request().Context(), forecast.Request{
		Prices:  prices,
		Model:   req.Model,
		Horizon: *req.FutureDays,
	})
	if err != nil {
		appErr := toAppError(err)
		if appErr.Status >= 500 {
			h.logger.Error("predict usecase error", xlogger.String("model", req.Model), xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, appErr)
	}

	return xhttp.SuccessResponse(c, models.PredictResponse{
		Predictions:      res.Predictions,
		Model:            string(res.Model),
		Horizon:          res.Horizon,
		RequestedHorizon: res.RequestedHorizon,
		Clamped:          res.Clamped,
	})
}

func (h *ForecastEchoHandler) StockData(c echo.Context) error {
	req := &models.StockDataRequest{
		Symbol:   strings.TrimSpace(c.QueryParam("symbol")),
		Period:   strings.TrimSpace(c.QueryParam("period")),
		Interval: strings.TrimSpace(c.QueryParam("interval")),
	}
	if req.Symbol == "" || req.Period == "" || req.Interval == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(msgMissingParams))
	}
	if verr := xhttp.ValidateStruct(req); verr != nil {
		return xhttp.AppErrorResponse(c, verr)
	}

	hist, err := h.history.History(c.Request().Context(), models.HistoryQuery{
		Symbol:   req.Symbol,
		Period:   req.Period,
		Interval: req.Interval,
	})
	if err != nil {
		appErr := toAppError(err)
		if appErr.Status >= 500 {
			h.logger.Error("stock data usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, appErr)
	}

	return xhttp.SuccessResponse(c, models.NewStockDataResponse(hist))
}

func (h *ForecastEchoHandler) Models(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.forecaster.Catalog())
}

func (h *ForecastEchoHandler) Recent(c echo.Context) error {
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("limit must be a positive integer").WithField("limit"))
		}
		limit = n
	}

	recs, err := h.forecaster.Recent(c.Request().Context(), strings.ToLower(c.QueryParam("model")), limit)
	if err != nil {
		h.logger.Error("recent forecasts error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	if recs == nil {
		recs = []*models.ForecastRecord{}
	}
	return xhttp.SuccessResponse(c, recs)
}
