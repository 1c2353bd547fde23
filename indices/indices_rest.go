package indices

import (
	"creativehub/bizerror"
	"creativehub/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	PathIndexRequests = "/api/index-requests"
)

type indexRequestQuery struct {
	Rebuild bool `form:"rebuild"`
}

func RegisterIndicesRestAPI(r *gin.Engine, s *Synchronizer, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", func(c *gin.Context) {
		query := indexRequestQuery{}
		if err := c.ShouldBindQuery(&query); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		success, err := s.ScheduleBy(session.ExtractSessionFromGinContext(c), query.Rebuild)
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, gin.H{"result": success})
	})
}
