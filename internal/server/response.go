package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"shop-api/internal/models"
	pkgmdw "shop-api/internal/server/middleware"
)

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

const (
	statusSuccess = "Success"
	statusError   = "Error"
)

func success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Status: statusSuccess, Data: data})
}

func successMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Response{Status: statusSuccess, Message: message})
}

// ErrorHandler renders every failure as the error envelope. AppErrors keep
// their message and status code; anything unrecognized becomes a 500.
func ErrorHandler(log pkgmdw.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := http.StatusText(http.StatusInternalServerError)

		var appErr *models.AppError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.StatusCode
			message = appErr.Message
		case errors.As(err, &httpErr):
			status = httpErr.Code
			message = fmt.Sprint(httpErr.Message)
		}

		resp := Response{Status: statusError, Message: message}
		if err := c.JSON(status, resp); err != nil {
			log.Errorw("could not write error response", "code", status, "response_body", resp)
		}
	}
}
