package controller

import "github.com/labstack/echo/v4"

type HistoryController interface {
	Get(c echo.Context) error
	Export(c echo.Context) error
}
