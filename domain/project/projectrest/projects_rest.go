package projectrest

import (
	"creativehub/bizerror"
	"creativehub/domain/project"
	"creativehub/domain/state"
	"creativehub/domain/transition"
	"creativehub/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	PathProjects = "/api/projects"
	PathWorkflow = "/api/workflow"
)

type restHandler struct {
	projects    project.ManagerTraits
	transitions transition.ManagerTraits
	machine     *state.StateMachine
	validator   *validator.Validate
}

func RegisterProjectsRestAPI(r *gin.Engine, projects project.ManagerTraits, transitions transition.ManagerTraits,
	machine *state.StateMachine, middleWares ...gin.HandlerFunc) {

	h := &restHandler{projects: projects, transitions: transitions, machine: machine, validator: validator.New()}

	g := r.Group(PathProjects, middleWares...)
	g.POST("", h.handleCreate)
	g.GET(":uuid", h.handleDetail)
	g.GET(":uuid/transitions", h.handleTransitions)
	g.POST(":uuid/applicants", h.handleApply)
	for _, e := range h.transitionEndpoints() {
		g.POST(":uuid/"+e.name, e.handle)
	}

	r.Group(PathWorkflow, middleWares...).GET("", h.handleWorkflow)
}

func (h *restHandler) handleCreate(c *gin.Context) {
	creation := project.ProjectCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	p, err := h.projects.Create(c.Request.Context(), &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, p)
}

func (h *restHandler) handleDetail(c *gin.Context) {
	p, err := h.projects.Detail(c.Request.Context(), c.Param("uuid"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, p)
}

func (h *restHandler) handleTransitions(c *gin.Context) {
	transitions, err := h.transitions.Transitions(c.Request.Context(), c.Param("uuid"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, transitions)
}

func (h *restHandler) handleApply(c *gin.Context) {
	applicant, err := h.projects.Apply(c.Request.Context(), c.Param("uuid"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, applicant)
}

func (h *restHandler) handleWorkflow(c *gin.Context) {
	c.JSON(http.StatusOK, h.machine)
}
