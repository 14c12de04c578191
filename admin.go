// admin.go - privacy-conscious visitor log and admin pages
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kinn00kinn/portfolio/internal/store"
)

const (
	visitorRetention = 365 * 24 * time.Hour
	cleanupInterval  = 24 * time.Hour
	recentVisitorCap = 200
)

// AdminStats is the dashboard payload.
type AdminStats struct {
	*store.VisitorStats
	LiveSessions int `json:"live_sessions"`
}

func (s *server) initAdminToken() {
	s.adminToken = generateAdminToken()
	s.hashingSalt = generateAdminToken() // Use for IP hashing

	log.Printf("Admin access available at: /admin/login")
	if gin.Mode() == gin.DebugMode {
		log.Printf("Admin token (dev only): %s", s.adminToken)
	}
	log.Println("Privacy: Visitor tracking enabled with hashed IP addresses")
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate admin token:", err)
	}
	return hex.EncodeToString(bytes)
}

// hashIP is consistent per IP for the lifetime of the process.
func (s *server) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + s.hashingSalt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (s *server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("admin_token")
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// untrackedPrefixes are never written to the visitor log.
var untrackedPrefixes = []string{
	"/static/", "/images/", "/admin/", "/favicon", "/privacy", "/ws", "/typewriter",
}

func (s *server) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range untrackedPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		go s.trackVisitor(c.ClientIP(), c.GetHeader("User-Agent"), path)
		c.Next()
	}
}

func (s *server) trackVisitor(ip, userAgent, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.visitors.Record(ctx, s.hashIP(ip), userAgent, path); err != nil {
		log.Printf("Error recording visitor: %v", err)
	}
}

func (s *server) cleanupOldVisitorData(ctx context.Context) (int64, error) {
	removed, err := s.visitors.Cleanup(ctx, visitorRetention)
	if err != nil {
		log.Printf("Error cleaning up old visitor data: %v", err)
		return 0, err
	}
	if removed > 0 {
		log.Printf("Privacy cleanup: Removed %d visitor records older than 12 months", removed)
	}
	return removed, nil
}

// runVisitorCleanup prunes the visitor log now and then once a day.
func (s *server) runVisitorCleanup(ctx context.Context) {
	s.cleanupOldVisitorData(ctx)
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupOldVisitorData(ctx)
		}
	}
}

func (s *server) getAdminStats(ctx context.Context) (*AdminStats, error) {
	stats, err := s.visitors.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminStats{VisitorStats: stats, LiveSessions: s.hub.Count()}, nil
}

func (s *server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title": "Privacy Policy",
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
		if userOK && passOK {
			// Set secure cookie (24 hours)
			c.SetCookie("admin_token", s.adminToken, 3600*24, "/admin", "", false, true)
			log.Printf("Admin login successful from %s", s.hashIP(c.ClientIP()))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		log.Printf("Failed admin login attempt from %s", s.hashIP(c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title": "Admin Login",
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie("admin_token", "", -1, "/admin", "", false, true)
		log.Printf("Admin logout from %s", s.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(s.adminAuthMiddleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.getAdminStats(c.Request.Context())
		if err != nil {
			log.Printf("Error loading admin stats: %v", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"title": "Dashboard",
			"stats": stats,
		})
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.getAdminStats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		visitors, err := s.visitors.Recent(c.Request.Context(), recentVisitorCap)
		if err != nil {
			log.Printf("Error loading visitors: %v", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"title":    "Visitors",
			"visitors": visitors,
		})
	})

	// Privacy compliance endpoint: prunes everything past the retention window.
	adminGroup.POST("/privacy/delete-visitor-data", func(c *gin.Context) {
		removed, err := s.cleanupOldVisitorData(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup completed", "removed": removed})
	})

	// Admin statistics export (for backups or analysis)
	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.getAdminStats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		log.Printf("Admin stats exported by %s", s.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}
