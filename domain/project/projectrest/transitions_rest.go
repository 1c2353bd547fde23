package projectrest

import (
	"creativehub/bizerror"
	"creativehub/common"
	"creativehub/domain/lifecycle"
	"creativehub/domain/project"
	"creativehub/domain/state"
	"creativehub/domain/transition"
	"creativehub/session"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const CodeIllegalTransition = "project.illegal_transition"

type MediateRequest struct {
	SelectedCreatives []string `json:"selected_creatives"`
}

type CompleteRequest struct {
	Results []transition.ResultEntry `json:"results"`
}

type RejectionDetail struct {
	Transition string `json:"transition"`
	State      string `json:"state"`
	Reason     string `json:"reason"`
}

// transitionEndpoint adapts one transition to POST /api/projects/:uuid/<name>.
// done is the past participle used in messages, e.g. "submitted".
type transitionEndpoint struct {
	name   string
	done   string
	invoke func(c *gin.Context, uuid string, s *session.Session) (*project.Project, error)
}

func (h *restHandler) transitionEndpoints() []transitionEndpoint {
	return []transitionEndpoint{
		{name: state.Submit, done: "submitted", invoke: func(c *gin.Context, uuid string, s *session.Session) (*project.Project, error) {
			return h.transitions.Submit(c.Request.Context(), uuid, s)
		}},
		{name: state.Publish, done: "published", invoke: func(c *gin.Context, uuid string, s *session.Session) (*project.Project, error) {
			return h.transitions.Publish(c.Request.Context(), uuid, s)
		}},
		{name: state.Mediate, done: "mediated", invoke: func(c *gin.Context, uuid string, s *session.Session) (*project.Project, error) {
			return h.transitions.Mediate(c.Request.Context(), uuid, func() ([]string, error) {
				req := MediateRequest{}
				if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
					return nil, &bizerror.ErrBadParam{Cause: err}
				}
				return req.SelectedCreatives, nil
			}, s)
		}},
		{name: state.Complete, done: "completed", invoke: func(c *gin.Context, uuid string, s *session.Session) (*project.Project, error) {
			return h.transitions.Complete(c.Request.Context(), uuid, func() ([]transition.ResultEntry, error) {
				req := CompleteRequest{}
				if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
					return nil, &bizerror.ErrBadParam{Cause: err}
				}
				return req.Results, nil
			}, s)
		}},
		{name: state.Reset, done: "reset", invoke: func(c *gin.Context, uuid string, s *session.Session) (*project.Project, error) {
			return h.transitions.Reset(c.Request.Context(), uuid, s)
		}},
	}
}

func (e transitionEndpoint) handle(c *gin.Context) {
	_, err := e.invoke(c, c.Param("uuid"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		var rejected *lifecycle.TransitionRejected
		if errors.As(err, &rejected) {
			panic(&bizerror.ErrConflict{
				Code:    CodeIllegalTransition,
				Message: "Project can not be " + e.done + ".",
				Data:    &RejectionDetail{Transition: rejected.Transition, State: rejected.State, Reason: rejected.Reason},
				Cause:   err,
			})
		}
		panic(err)
	}
	c.JSON(http.StatusOK, &common.MessageBody{Message: "Project " + e.done + "."})
}
