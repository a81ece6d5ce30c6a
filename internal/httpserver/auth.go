package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type signinRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password required"})
		return
	}
	creds, err := h.deps.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:    h.cookieName,
		Value:   creds.Token,
		Path:    "/",
		Expires: creds.ExpiresAt,
	})
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   creds.Token,
		"expired": creds.ExpiresAt.UnixMilli(),
	})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.Auth.Logout(c.Request.Context()); err != nil {
		h.logger.Printf("logout: %v", err)
	}
	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// clearSessionCookies expires the session cookie across every path/domain
// combination it may have been set under. Clearing a cookie that was never
// set is harmless, so over-clearing is fine.
func (h *handlers) clearSessionCookies(c *gin.Context) {
	host := c.Request.Host
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	domains := []string{host, ""}
	paths := []string{"/", "/dashboard", ""}
	for _, domain := range domains {
		for _, path := range paths {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:    h.cookieName,
				Value:   "",
				Path:    path,
				Domain:  domain,
				Expires: time.Unix(0, 0),
				MaxAge:  -1,
			})
		}
	}
}

func (h *handlers) checkAuth(c *gin.Context) {
	token, _ := c.Cookie(h.cookieName)
	if !h.deps.Auth.Check(c.Request.Context(), token) {
		h.clearSessionCookies(c)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// requireAuth gates admin routes: the session cookie must hold a token the
// upstream confirms. A failed check resets the session before rejecting.
func (h *handlers) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(h.cookieName)
		if !h.deps.Auth.Check(c.Request.Context(), token) {
			h.clearSessionCookies(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthenticated"})
			return
		}
		c.Next()
	}
}
