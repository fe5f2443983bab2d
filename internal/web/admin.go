package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const adminCookie = "admin_token"

// initAdmin generates the session token and resolves credentials. Outside
// production, missing credentials fall back to development defaults.
func (s *Server) initAdmin() error {
	token, err := generateToken()
	if err != nil {
		return err
	}
	s.adminToken = token
	s.adminUsername = s.cfg.AdminUsername
	s.adminPassword = s.cfg.AdminPassword

	if !s.cfg.AdminEnabled() && !s.cfg.IsProduction() {
		s.adminUsername, s.adminPassword = "admin", "admin123"
		s.logger.Warn("using default admin credentials; set ADMIN_USERNAME and ADMIN_PASSWORD")
	}
	return nil
}

func (s *Server) adminAvailable() bool {
	return s.adminUsername != "" && s.adminPassword != ""
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate admin token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func equalStrings(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// adminAuth checks the session cookie.
func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || !equalStrings(token, s.adminToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) requireStore(c *gin.Context) bool {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "handoff log disabled"})
		return false
	}
	return true
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	if !s.adminAvailable() {
		s.logger.Info("admin routes disabled: no credentials configured")
		return
	}

	r.POST("/admin/login", s.limiter.Middleware(), func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")
		client := s.hashIP(c.ClientIP())

		if !equalStrings(username, s.adminUsername) || !equalStrings(password, s.adminPassword) {
			s.logger.Warn("failed admin login", "client", client)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, s.adminToken, 3600*24, "/admin", "", s.cfg.IsProduction(), true)
		s.logger.Info("admin login", "client", client)
		c.JSON(http.StatusOK, gin.H{"message": "logged in"})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", s.cfg.IsProduction(), true)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	})

	admin := r.Group("/admin", s.adminAuth())

	admin.GET("/dashboard", func(c *gin.Context) {
		if !s.requireStore(c) {
			return
		}
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error("failed to load admin stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
			return
		}
		recent, err := s.store.Recent(c.Request.Context(), 20)
		if err != nil {
			s.logger.Error("failed to load handoffs", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load handoffs"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"stats": stats, "recent": recent})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		if !s.requireStore(c) {
			return
		}
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error("failed to load admin stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/api/handoffs", func(c *gin.Context) {
		if !s.requireStore(c) {
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit <= 0 || limit > 500 {
			limit = 50
		}
		recs, err := s.store.Recent(c.Request.Context(), limit)
		if err != nil {
			s.logger.Error("failed to load handoffs", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load handoffs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"handoffs": recs})
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		if !s.requireStore(c) {
			return
		}
		removed, err := s.store.Cleanup(c.Request.Context(), s.cfg.VisitRetention)
		if err != nil {
			s.logger.Error("privacy cleanup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	})
}
