package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	authH *handler.AuthHandler,
	storeH *handler.StoreHandler,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
) {
	//ヘルスチェック
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authH.RegisterRoutes(e)
	storeH.RegisterRoutes(e, cfg)
	productH.RegisterRoutes(e, cfg)
	cartH.RegisterRoutes(e, cfg)
}
