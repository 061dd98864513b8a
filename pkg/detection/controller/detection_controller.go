package controller

import "github.com/labstack/echo/v4"

type DetectionController interface {
	Upload(c echo.Context) error
	Save(c echo.Context) error
}
