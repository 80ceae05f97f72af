package api

import (
	"context"
	"errors"

	domrepo "PriceCast/internal/domain/repository"
	"PriceCast/internal/forecast"
	xhttp "PriceCast/pkg/http"
)

const (
	msgMissingParams = "Missing required parameters"
	msgNoData        = "No data found for the given stock symbol and period"
	msgPredictFailed = "prediction failed"
)

// toAppError maps use case errors onto HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var verr *forecast.ValidationError
	var ierr *forecast.InternalError
	switch {
	case errors.As(err, &verr):
		return xhttp.NewAppError("ERR_VALIDATION", verr.Field, verr.Reason, 400).WithError(err)
	case errors.As(err, &ierr):
		return xhttp.InternalError(msgPredictFailed).WithError(err)
	case errors.Is(err, domrepo.ErrNoData):
		return xhttp.NotFoundError(msgNoData).WithError(err)
	case errors.Is(err, domrepo.ErrUpstreamUnavailable):
		return xhttp.ServiceUnavailableError("market data provider unavailable, retry later").WithError(err)
	case errors.Is(err, domrepo.ErrUpstream):
		return xhttp.BadGatewayError("market data provider error").WithError(err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return xhttp.ServiceUnavailableError("request timed out").WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
