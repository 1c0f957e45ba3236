package handler

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"absensi/internal/attendance"
	"absensi/internal/auth"
	"absensi/internal/config"
	"absensi/internal/export"
	"absensi/internal/store"
)

// Handler serves the HTTP surface over the attendance write path and its
// read-only views.
type Handler struct {
	svc   *attendance.Service
	repo  *attendance.Repository
	feed  *attendance.Feed
	db    *store.DB
	redis *store.Redis // nil when not configured
	cfg   config.App
}

// New wires a handler.
func New(svc *attendance.Service, repo *attendance.Repository, feed *attendance.Feed, db *store.DB, redis *store.Redis, cfg config.App) *Handler {
	return &Handler{svc: svc, repo: repo, feed: feed, db: db, redis: redis, cfg: cfg}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	dbHealthy := h.db != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	body := gin.H{"status": "ok", "db": dbHealthy}
	if h.redis != nil {
		body["redis"] = h.redis.Healthy(c.Request.Context())
	}
	c.JSON(status, body)
}

// ---------- Submission ----------

type submitRequest struct {
	Name     string `form:"name" json:"name"`
	Class    string `form:"class" json:"class"`
	Status   string `form:"status" json:"status"`
	Honeypot string `form:"hp_field" json:"hp_field"`
}

// Submit records one attendance event. Distinguishable outcomes:
// 201 accepted, 204 silently discarded (honeypot), 429 too fast,
// 400 missing name, 409 already submitted today, 500 internal.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBind(&req); err != nil {
		submissionsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.svc.Submit(c.Request.Context(), attendance.Submission{
		Name:     req.Name,
		Class:    req.Class,
		Status:   req.Status,
		Honeypot: req.Honeypot,
		Address:  c.ClientIP(),
	})
	switch {
	case err == nil && rec == nil:
		submissionsTotal.WithLabelValues("honeypot").Inc()
		c.Status(http.StatusNoContent)
	case err == nil:
		submissionsTotal.WithLabelValues("accepted").Inc()
		c.JSON(http.StatusCreated, gin.H{"ok": true, "record": rec})
	case errors.Is(err, attendance.ErrRateLimited):
		submissionsTotal.WithLabelValues("rate_limited").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrNameRequired):
		submissionsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrDuplicate):
		submissionsTotal.WithLabelValues("duplicate").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		submissionsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// ---------- Admin session ----------

type loginRequest struct {
	Pass string `form:"pass" json:"pass"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.cfg.AdminPass == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin login not configured"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Pass), []byte(h.cfg.AdminPass)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		return
	}

	token, exp, err := auth.Issue("admin", h.cfg.JWTIssuer, h.cfg.SessionSecret, h.cfg.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session issue failed"})
		return
	}
	c.SetCookie(auth.SessionCookie, token, int(time.Until(exp).Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true, "expires_at": exp.Unix()})
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ---------- Read surface (admin only) ----------

func (h *Handler) ListRecords(c *gin.Context) {
	ascending := c.DefaultQuery("order", "desc") == "asc"
	records, err := h.repo.ListAll(c.Request.Context(), ascending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// Feed streams each newly accepted record as a server-sent event. The
// loop ends when the client disconnects or the server shuts down.
func (h *Handler) Feed(c *gin.Context) {
	ch, cancel := h.feed.Subscribe()
	defer cancel()
	feedSubscribers.Inc()
	defer feedSubscribers.Dec()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case rec, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("attendance", rec)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func (h *Handler) ExportCSV(c *gin.Context) {
	records, err := h.repo.ListAll(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.CSVName+`"`)
	c.Header("Content-Type", "text/csv")
	if err := export.WriteCSV(c.Writer, records); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func (h *Handler) ExportZIP(c *gin.Context) {
	records, err := h.repo.ListAll(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="absensi.zip"`)
	c.Header("Content-Type", "application/zip")
	if err := export.WriteArchive(c.Writer, records, time.Now()); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// Backup returns the whole store as a download: the database file for the
// sqlite backend, a JSON dump otherwise. Rows committed under WAL live in
// the -wal sidecar until a checkpoint, so checkpoint first or the served
// file misses them.
func (h *Handler) Backup(c *gin.Context) {
	if h.db.FilePath != "" {
		if err := h.db.Checkpoint(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.FileAttachment(h.db.FilePath, "absensi.db")
		return
	}
	records, err := h.repo.ListAll(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.Header("Content-Disposition", `attachment; filename="absensi.json"`)
	c.JSON(http.StatusOK, records)
}
