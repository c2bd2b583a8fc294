package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// AuthJWTが保存したuser_idを取り出す
func getUserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	userID, ok := v.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// /storesのHTTP
type StoreHandler struct {
	uc *usecase.StoreUsecase
}

// DI
func NewStoreHandler(uc *usecase.StoreUsecase) *StoreHandler {
	return &StoreHandler{uc: uc}
}

type CreateStoreRequest struct {
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	Description  string `json:"description"`
	Plan         string `json:"plan"`
}

// 識別子系フィールドはRawMessageで受けて、送られてきたら弾く
type UpdateStoreRequest struct {
	BusinessName *string `json:"business_name"`
	BusinessType *string `json:"business_type"`
	Description  *string `json:"description"`
	Plan         *string `json:"plan"`
	IsActive     *bool   `json:"is_active"`

	Slug      json.RawMessage `json:"slug"`
	Domain    json.RawMessage `json:"domain"`
	Analytics json.RawMessage `json:"analytics"`
}

type AnalyticsRequest struct {
	Visitors int64           `json:"visitors"`
	Orders   int64           `json:"orders"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type CheckDomainResponse struct {
	Available bool `json:"available"`
}

// /stores配下を登録
func (h *StoreHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	authRequired := middleware.AuthJWT(cfg)

	e.POST("/stores", h.create, authRequired)
	e.GET("/stores", h.list)
	e.GET("/stores/check-domain/:domain", h.checkDomain)
	e.GET("/stores/:id", h.detail)
	e.PUT("/stores/:id", h.update, authRequired)
	e.PATCH("/stores/:id/deactivate", h.deactivate, authRequired)
	e.DELETE("/stores/:id", h.remove, authRequired)
	e.PATCH("/stores/:id/analytics", h.incrementAnalytics)
}

func (h *StoreHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreateStoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateStore(c.Request().Context(), userID, usecase.CreateStoreInput{
		BusinessName: req.BusinessName,
		BusinessType: model.BusinessType(req.BusinessType),
		Description:  req.Description,
		Plan:         model.Plan(req.Plan),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *StoreHandler) list(c echo.Context) error {
	var active *bool
	if v := c.QueryParam("active"); v != "" {
		switch v {
		case "true":
			b := true
			active = &b
		case "false":
			b := false
			active = &b
		default:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid active"})
		}
	}

	out, err := h.uc.ListStores(c.Request().Context(), usecase.ListStoresInput{
		Search: c.QueryParam("search"),
		UserID: c.QueryParam("user"),
		Plan:   c.QueryParam("plan"),
		Active: active,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) detail(c echo.Context) error {
	out, err := h.uc.GetStore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) update(c echo.Context) error {
	if _, ok := getUserIDFromContext(c); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req UpdateStoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	// slug/domain/analyticsはこの経路では変更不可
	if len(req.Slug) > 0 || len(req.Domain) > 0 || len(req.Analytics) > 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "immutable field"})
	}

	in := usecase.UpdateStoreInput{
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.BusinessName != nil {
		in.BusinessName = req.BusinessName
	}
	if req.BusinessType != nil {
		bt := model.BusinessType(*req.BusinessType)
		in.BusinessType = &bt
	}
	if req.Plan != nil {
		p := model.Plan(*req.Plan)
		in.Plan = &p
	}

	out, err := h.uc.UpdateStore(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) deactivate(c echo.Context) error {
	if _, ok := getUserIDFromContext(c); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.DeactivateStore(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "store deactivated"})
}

func (h *StoreHandler) remove(c echo.Context) error {
	if _, ok := getUserIDFromContext(c); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.DeleteStore(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "store deleted"})
}

func (h *StoreHandler) incrementAnalytics(c echo.Context) error {
	var req AnalyticsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.IncrementAnalytics(c.Request().Context(), c.Param("id"), usecase.AnalyticsDeltaInput{
		Visitors: req.Visitors,
		Orders:   req.Orders,
		Revenue:  req.Revenue,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) checkDomain(c echo.Context) error {
	available, err := h.uc.CheckDomainAvailable(c.Request().Context(), c.Param("domain"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, CheckDomainResponse{Available: available})
}
