package bizerror_test

import (
	"creativehub/bizerror"
	"creativehub/testinfra"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func routerPanicking(err interface{}) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	router.GET("/panic", func(c *gin.Context) {
		panic(err)
	})
	router.GET("/error", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("wrapped: %w", bizerror.ErrForbidden))
	})
	return router
}

func TestErrorHandling(t *testing.T) {
	RegisterTestingT(t)

	cases := []struct {
		name   string
		err    interface{}
		status int
		body   string
	}{
		{"bad param with field", &bizerror.ErrBadParam{Field: "selected_creatives", Cause: errors.New("empty selection")},
			http.StatusBadRequest, `{"code":"common.bad_param","message":"empty selection","data":{"field":"selected_creatives"}}`},
		{"bad param without field", &bizerror.ErrBadParam{},
			http.StatusBadRequest, `{"code":"common.bad_param","message":"common.bad_param","data":null}`},
		{"unprocessable", &bizerror.ErrUnprocessable{Code: "project.reference_not_applicant", Field: "selected_creatives", Cause: errors.New("x is not an applicant")},
			http.StatusUnprocessableEntity, `{"code":"project.reference_not_applicant","message":"x is not an applicant","data":{"field":"selected_creatives"}}`},
		{"conflict", &bizerror.ErrConflict{Code: "project.illegal_transition", Message: "Project can not be published."},
			http.StatusConflict, `{"code":"project.illegal_transition","message":"Project can not be published.","data":null}`},
		{"persistence", &bizerror.ErrPersistence{Cause: errors.New("disk full")},
			http.StatusInternalServerError, `{"code":"common.persistence_failure","message":"failed to persist changes","data":null}`},
		{"forbidden", bizerror.ErrForbidden,
			http.StatusForbidden, `{"code":"security.forbidden","message":"access forbidden","data":null}`},
		{"unauthenticated", bizerror.ErrUnauthenticated,
			http.StatusUnauthorized, `{"code":"common.unauthenticated","message":"unauthenticated","data":null}`},
		{"stale write", fmt.Errorf("commit: %w", bizerror.ErrConcurrentModification),
			http.StatusConflict, `{"code":"common.concurrent_modification","message":"record was modified concurrently, reload and retry","data":null}`},
		{"gorm not found", gorm.ErrRecordNotFound,
			http.StatusNotFound, `{"code":"common.record_not_found","message":"record not found","data":null}`},
		{"not error value", "boom",
			http.StatusInternalServerError, `{"code":"common.internal_server_error","message":"boom","data":null}`},
	}

	for _, c := range cases {
		c := c
		t.Run("should respond "+c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/panic", nil)
			status, body, _ := testinfra.ExecuteRequest(req, routerPanicking(c.err))
			Expect(status).To(Equal(c.status))
			Expect(body).To(MatchJSON(c.body))
		})
	}

	t.Run("should handle errors attached to gin context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/error", nil)
		status, body, _ := testinfra.ExecuteRequest(req, routerPanicking(nil))
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden","message":"access forbidden","data":null}`))
	})
}
