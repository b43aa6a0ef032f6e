package documents

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/documents", h.Upload)
	r.GET("/documents", h.List)
	r.GET("/documents/:document_id", h.Get)
	r.GET("/documents/:document_id/download", h.Download)
	r.DELETE("/documents/:document_id", h.Deactivate)
}

// POST /documents（multipart: file + 任意の reference_date/description/area_id）
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid("file field is required"))
		return
	}
	meta := UploadMeta{UploadedBy: c.GetString("user_id")}
	if v := c.PostForm("reference_date"); v != "" {
		meta.ReferenceDate = &v
	}
	if v := c.PostForm("description"); v != "" {
		meta.Description = &v
	}
	if v := c.PostForm("area_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrInvalid("area_id must be a number"))
			return
		}
		u := uint(n)
		meta.AreaID = &u
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrInternal("failed to read upload"))
		return
	}
	defer f.Close()

	doc, err := h.svc.Upload(c.Request.Context(), fh.Filename, f, fh.Size, meta)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// GET /documents
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if v := c.Query("area_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			u := uint(n)
			q.AreaID = &u
		}
	}
	if v := c.Query("limit"); v != "" {
		q.Limit, _ = strconv.Atoi(v)
	}
	if v := c.Query("offset"); v != "" {
		q.Offset, _ = strconv.Atoi(v)
	}
	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

// GET /documents/:document_id
func (h *Handler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	doc, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// GET /documents/:document_id/download
func (h *Handler) Download(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	doc, f, err := h.svc.Open(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Header("Content-Type", doc.MimeType)
	c.Header("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	http.ServeContent(c.Writer, c.Request, doc.FileName, doc.UploadedAt, f)
}

// DELETE /documents/:document_id
func (h *Handler) Deactivate(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		c.JSON(toHTTPStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

func paramID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("document_id"), 10, 32)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, ErrInvalid("invalid document_id"))
		return 0, false
	}
	return uint(n), true
}
