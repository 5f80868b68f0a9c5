package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes the API envelope with a matching HTTP status.
func DataResponse(c echo.Context, statusCode int, message string, data any) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: message,
		Data:    data,
	})
}

func BadRequestResponse(c echo.Context, message string, data any) error {
	return DataResponse(c, http.StatusBadRequest, message, data)
}

func InternalServerErrorResponse(c echo.Context) error {
	return DataResponse(c, http.StatusInternalServerError, "", "Something went wrong")
}

// AppErrorResponse writes an AppError with its own status; anything else is a 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DataResponse(c, appErr.Status, appErr.Message, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
