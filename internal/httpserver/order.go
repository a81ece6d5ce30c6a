package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.Order.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *handlers) payOrder(c *gin.Context) {
	order, err := h.deps.Order.Pay(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *handlers) products(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		if n, err := parsePage(raw); err == nil {
			page = n
		}
	}
	products, pagination, err := h.deps.Catalog.Products(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"products":   products,
		"pagination": pagination,
	})
}

func (h *handlers) product(c *gin.Context) {
	product, err := h.deps.Catalog.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}
