package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

// NewはEchoを組み立ててルートを登録する
func New(
	cfg config.Config,
	authH *handler.AuthHandler,
	storeH *handler.StoreHandler,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	RegisterRoutes(e, cfg, authH, storeH, productH, cartH)

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
