package controller

import "github.com/labstack/echo/v4"

type FarmerController interface {
	Save(c echo.Context) error
}
