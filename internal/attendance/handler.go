package attendance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
	// 設定値（rfid.min_interval_minutes）。リクエスト毎に読み直さない。
	minIntervalMinutes int
}

// RegisterRoutes: ingest はリーダ端末から認証なしで叩かれるため、
// 管理系ルートと分けて登録する。
func RegisterRoutes(ingest gin.IRoutes, r gin.IRoutes, svc *Service, minIntervalMinutes int) {
	h := &Handler{svc: svc, minIntervalMinutes: minIntervalMinutes}

	ingest.POST("/attendances/badge", h.RegisterBadge)

	r.POST("/attendances/manual", h.RegisterManual)
	r.POST("/attendances/:attendance_id/validate", h.Validate)
	r.GET("/attendances", h.List)
	r.GET("/attendances/stats", h.Stats)
}

// POST /attendances/badge
// 拒否（未登録バッジ等）も200で返す。リーダ側は outcome を見て表示を変える。
func (h *Handler) RegisterBadge(c *gin.Context) {
	var req RegisterBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	out := h.svc.RegisterByBadge(c.Request.Context(), req.BadgeCode, req.OriginDevice, h.minIntervalMinutes)
	c.JSON(http.StatusOK, out)
}

// POST /attendances/manual
func (h *Handler) RegisterManual(c *gin.Context) {
	var req RegisterManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	kind := Kind(req.Kind)
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "kind must be one of entry/exit/break_out/break_in/manual"))
		return
	}
	// RequireAuth が詰めた操作ユーザを記録に残す
	registeredBy := c.GetString("user_id")
	out := h.svc.RegisterManual(c.Request.Context(), req.EmployeeID, kind, req.Note, registeredBy)
	c.JSON(http.StatusOK, out)
}

// POST /attendances/:attendance_id/validate
func (h *Handler) Validate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("attendance_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "attendance_id must be a number"))
		return
	}
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	ok := h.svc.Validate(c.Request.Context(), id, req.Accepted, req.Note)
	if !ok {
		c.JSON(http.StatusNotFound, apiErr(CodeNotFound, "attendance not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// GET /attendances
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if v := c.Query("employee_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			u := uint(n)
			q.EmployeeID = &u
		}
	}
	if v := c.Query("area_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			u := uint(n)
			q.AreaID = &u
		}
	}
	if v := c.Query("from"); v != "" {
		q.From = &v
	}
	if v := c.Query("to"); v != "" {
		q.To = &v
	}
	if v := c.Query("validated"); v != "" {
		b := v == "true" || v == "1"
		q.Validated = &b
	}
	q.Limit = atoiDef(c.Query("limit"), DefaultPageLimit)
	q.Offset = atoiDef(c.Query("offset"), 0)

	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

// GET /attendances/stats?from=&to=&top=
func (h *Handler) Stats(c *gin.Context) {
	req := StatsRequest{
		From: c.Query("from"),
		To:   c.Query("to"),
		Top:  atoiDef(c.Query("top"), 10),
	}
	res, err := h.svc.Stats(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ===== helpers =====

func atoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}

type errDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func apiErr(code Code, msg string) errDTO {
	var e errDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func apiErrFrom(err error) errDTO {
	if api, ok := err.(*APIError); ok {
		return apiErr(api.Code, api.Message)
	}
	return apiErr(CodeInternal, "internal error")
}
