package testinfra

import (
	"creativehub/authority"
	"creativehub/session"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// ExecuteRequest serves req and returns status, body and headers.
func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp
}

// BuildSession build a signed-in session with the given perms.
func BuildSession(uid types.ID, userUUID string, perms ...string) *session.Session {
	return &session.Session{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, UUID: userUUID, Name: "user" + uid.String()},
		Perms:    authority.Permissions(perms),
	}
}

// InjectSession is a middleware putting s into every request, replacing the auth filter in tests.
func InjectSession(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.InjectSessionIntoGinContext(c, s)
		c.Next()
	}
}
