package files

import (
	"creativehub/bizerror"
	"creativehub/session"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	PathFiles = "/api/files"
)

type restHandler struct {
	manager ManagerTraits
}

func RegisterFilesRestAPI(r *gin.Engine, m ManagerTraits, middleWares ...gin.HandlerFunc) {
	h := &restHandler{manager: m}
	g := r.Group(PathFiles, middleWares...)
	g.POST("", h.handleUpload)
	g.GET(":uuid", h.handleDownload)
}

func (h *restHandler) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Field: "file", Cause: errors.New("file is required")})
	}
	f, err := header.Open()
	if err != nil {
		panic(err)
	}
	defer f.Close()

	record, err := h.manager.Create(c.Request.Context(), &Upload{
		Name: header.Filename, ContentType: header.Header.Get("Content-Type"), Size: header.Size, Content: f,
	}, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func (h *restHandler) handleDownload(c *gin.Context) {
	record, r, err := h.manager.Open(c.Request.Context(), c.Param("uuid"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	defer r.Close()

	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, record.Size, contentType, r,
		map[string]string{"Content-Disposition": `attachment; filename="` + record.Name + `"`})
}
