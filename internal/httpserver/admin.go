package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-gateway/internal/domain"
	couponsvc "storefront-gateway/internal/service/coupon"
)

func (h *handlers) adminProducts(c *gin.Context) {
	res := h.deps.Catalog.LoadAdminProducts(c.Request.Context())
	respondResult(c, res, gin.H{"products": h.deps.Catalog.AdminProducts()})
}

func (h *handlers) adminCreateProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	respondResult(c, h.deps.Catalog.SaveProduct(c.Request.Context(), p, true), nil)
}

func (h *handlers) adminUpdateProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	p.ID = c.Param("id")
	respondResult(c, h.deps.Catalog.SaveProduct(c.Request.Context(), p, false), nil)
}

func (h *handlers) adminDeleteProduct(c *gin.Context) {
	respondResult(c, h.deps.Catalog.DeleteProduct(c.Request.Context(), c.Param("id")), nil)
}

func (h *handlers) adminOrders(c *gin.Context) {
	res := h.deps.Catalog.LoadOrders(c.Request.Context())
	respondResult(c, res, gin.H{"orders": h.deps.Catalog.Orders()})
}

func (h *handlers) adminDeleteAllOrders(c *gin.Context) {
	respondResult(c, h.deps.Catalog.DeleteAllOrders(c.Request.Context()), nil)
}

func (h *handlers) adminCoupons(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		if n, err := parsePage(raw); err == nil {
			page = n
		}
	}
	res := h.deps.Coupon.List(c.Request.Context(), page)
	respondResult(c, res, gin.H{"coupons": h.deps.Coupon.Coupons()})
}

type couponDraftRequest struct {
	domain.AdminCoupon
	DueDateInput string `json:"due_date_input"`
}

func (h *handlers) adminCreateCoupon(c *gin.Context) {
	var req couponDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	draft := couponsvc.CreateDraft{AdminCoupon: req.AdminCoupon, DueDateInput: req.DueDateInput}
	respondResult(c, h.deps.Coupon.Create(c.Request.Context(), draft), nil)
}

func (h *handlers) adminUpdateCoupon(c *gin.Context) {
	var coupon domain.AdminCoupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	coupon.ID = c.Param("id")
	respondResult(c, h.deps.Coupon.Update(c.Request.Context(), coupon), nil)
}

func (h *handlers) adminDeleteCoupon(c *gin.Context) {
	respondResult(c, h.deps.Coupon.Delete(c.Request.Context(), c.Param("id")), nil)
}
