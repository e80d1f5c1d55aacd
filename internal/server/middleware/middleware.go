package middleware

import (
	"github.com/labstack/echo/v4"
)

var DefaultSkipper = func(c echo.Context) bool {
	return false
}

type Skipper func(c echo.Context) bool

type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Debugw(template string, args ...interface{})
	Infow(template string, args ...interface{})
	Warnw(template string, args ...interface{})
	Errorw(template string, args ...interface{})
}
