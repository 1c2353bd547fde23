package notification

import (
	"creativehub/bizerror"
	"creativehub/common"
	"creativehub/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var PathNotifications = "/api/notifications"

type pageQuery struct {
	Page int `form:"page,default=1" validate:"min=1"`
	Size int `form:"size,default=20" validate:"min=1,max=100"`
}

func RegisterNotificationsRestAPI(r *gin.Engine, outbox Outbox, middleWares ...gin.HandlerFunc) {
	validate := validator.New()
	g := r.Group(PathNotifications, middleWares...)
	g.GET("", func(c *gin.Context) {
		q := pageQuery{}
		if err := c.ShouldBindQuery(&q); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		if err := validate.Struct(q); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		s := session.ExtractSessionFromGinContext(c)
		if !s.Authenticated() {
			panic(bizerror.ErrUnauthenticated)
		}
		notifications, err := outbox.List(c.Request.Context(), s.Identity.ID, q.Page, q.Size)
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, &common.PagedBody{List: notifications, Total: uint64(len(notifications))})
	})
	g.POST(":id/read", func(c *gin.Context) {
		id, err := types.ParseID(c.Param("id"))
		if err != nil {
			panic(&bizerror.ErrBadParam{Field: "id", Cause: err})
		}
		s := session.ExtractSessionFromGinContext(c)
		if !s.Authenticated() {
			panic(bizerror.ErrUnauthenticated)
		}
		if err := outbox.MarkRead(c.Request.Context(), s.Identity.ID, id); err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, &common.MessageBody{Message: "Notification read."})
	})
}
