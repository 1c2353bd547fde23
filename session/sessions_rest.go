package session

import (
	"creativehub/bizerror"
	"net/http"

	"github.com/gin-gonic/gin"
)

var PathSession = "/api/session"

// RegisterSessionRestAPI exposes the current session; middleWares guard the read only,
// logging out needs no valid session.
func RegisterSessionRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.Group(PathSession, middleWares...).GET("", detailSession)
	r.DELETE(PathSession, logout)
}

func detailSession(c *gin.Context) {
	s := ExtractSessionFromGinContext(c)
	if !s.Authenticated() {
		panic(bizerror.ErrUnauthenticated)
	}
	c.JSON(http.StatusOK, s)
}

func logout(c *gin.Context) {
	token, _ := c.Cookie(KeySecToken) // ErrNoCookie
	if token != "" {
		TokenCache.Delete(token)
	}
	c.SetCookie(KeySecToken, "", -1, "/", "", false, true)
	c.AbortWithStatus(http.StatusNoContent)
}
