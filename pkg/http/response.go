package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes data as the JSON body with statusCode.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, data)
}

// SuccessResponse writes a 200 response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// InternalServerErrorResponse writes a generic 500.
func InternalServerErrorResponse(c echo.Context) error {
	return DataResponse(c, http.StatusInternalServerError, InternalError("Something went wrong"))
}

// AppErrorResponse writes err as {error, code, field?} with its status.
// Errors that are not *AppError become a generic 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DataResponse(c, appErr.Status, appErr)
	}
	return InternalServerErrorResponse(c)
}

// ErrorHandler renders errors escaping handlers, including echo's own
// 404/405 and binder errors, in the AppError shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		_ = DataResponse(c, he.Code, NewAppError(codeForStatus(he.Code), "", msg, he.Code))
		return
	}
	_ = AppErrorResponse(c, err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "ERR_BAD_REQUEST"
	case http.StatusNotFound:
		return "ERR_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "ERR_METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "ERR_RATE_LIMITED"
	case http.StatusRequestEntityTooLarge:
		return "ERR_TOO_LARGE"
	default:
		if status >= 500 {
			return "ERR_INTERNAL"
		}
		return "ERR_UNKNOWN"
	}
}
