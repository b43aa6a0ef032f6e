package employees

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/employees", h.Create)
	r.GET("/employees", h.List)
	r.GET("/employees/:employee_id", h.Get)
	r.PATCH("/employees/:employee_id", h.Patch)
	r.DELETE("/employees/:employee_id", h.Deactivate)
	r.GET("/employees/by-badge/:badge_code", h.GetByBadge)
	r.POST("/employees/import", h.Import)
}

// POST /employees
func (h *Handler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	e, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusCreated, e.toDTO())
}

// GET /employees
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if v := c.Query("area_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			u := uint(n)
			q.AreaID = &u
		}
	}
	if v := c.Query("active"); v != "" {
		b := v == "true" || v == "1"
		q.Active = &b
	}
	q.Search = c.Query("search")
	q.Limit = atoiDef(c.Query("limit"), DefaultPageLimit)
	q.Offset = atoiDef(c.Query("offset"), 0)

	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	out := make([]EmployeeResponse, 0, len(items))
	for _, e := range items {
		out = append(out, e.toDTO())
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "total": total})
}

// GET /employees/:employee_id
func (h *Handler) Get(c *gin.Context) {
	id, ok := paramID(c, "employee_id")
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, e.toDTO())
}

// GET /employees/by-badge/:badge_code
func (h *Handler) GetByBadge(c *gin.Context) {
	e, err := h.svc.GetByBadge(c.Request.Context(), c.Param("badge_code"))
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, e.toDTO())
}

// PATCH /employees/:employee_id
func (h *Handler) Patch(c *gin.Context) {
	id, ok := paramID(c, "employee_id")
	if !ok {
		return
	}
	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	e, err := h.svc.Patch(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, e.toDTO())
}

// DELETE /employees/:employee_id（ソフト削除）
func (h *Handler) Deactivate(c *gin.Context) {
	id, ok := paramID(c, "employee_id")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

// POST /employees/import（multipart: file）
func (h *Handler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "file field is required"))
		return
	}
	if fh.Size > MaxImportBytes {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "import file exceeds 5MB limit"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, apiErr(CodeInternal, "internal error"))
		return
	}
	defer f.Close()

	res, err := h.svc.Import(c.Request.Context(), f)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ===== helpers =====

func paramID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, name+" must be a number"))
		return 0, false
	}
	return uint(n), true
}

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
