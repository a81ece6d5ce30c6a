package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartsvc "storefront-gateway/internal/service/cart"
)

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.deps.Cart.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cart})
}

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Qty       int64  `json:"qty"`
}

func (h *handlers) addToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}
	if err := h.deps.Cart.Add(c.Request.Context(), req.ProductID, req.Qty); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.deps.Cart.Cart()})
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	if err := h.deps.Cart.Update(c.Request.Context(), c.Param("id"), req.ProductID, req.Qty); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.deps.Cart.Cart()})
}

type removeQuantityRequest struct {
	ProductID string `json:"product_id"`
	RemoveQty int64  `json:"remove_qty"`
}

func (h *handlers) removeCartItem(c *gin.Context) {
	var req removeQuantityRequest
	// An empty body removes the whole line; a remove_qty removes part of it.
	if err := c.ShouldBindJSON(&req); err == nil && req.RemoveQty > 0 {
		if err := h.deps.Cart.RemoveQuantity(c.Request.Context(), c.Param("id"), req.ProductID, req.RemoveQty); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": h.deps.Cart.Cart()})
		return
	}
	if err := h.deps.Cart.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.deps.Cart.Cart()})
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.deps.Cart.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type couponRequest struct {
	Code string `json:"code"`
}

func (h *handlers) applyCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	coupon, err := h.deps.Cart.ApplyCoupon(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"coupon":      coupon,
		"final_total": h.deps.Cart.Cart().DisplayFinalTotal(),
	}})
}

func (h *handlers) removeCoupon(c *gin.Context) {
	h.deps.Cart.RemoveCoupon(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) createOrder(c *gin.Context) {
	var form cartsvc.OrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	orderID, err := h.deps.Cart.CreateOrder(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orderId": orderID})
}
