package app

import (
	"creativehub/bizerror"
	"creativehub/client/es"
	"creativehub/domain/access"
	"creativehub/domain/lifecycle"
	"creativehub/domain/project"
	"creativehub/domain/project/projectrest"
	"creativehub/domain/state"
	"creativehub/domain/transition"
	"creativehub/event"
	"creativehub/files"
	"creativehub/indices"
	"creativehub/indices/search"
	"creativehub/infra/tracing"
	"creativehub/metrics"
	"creativehub/notification"
	"creativehub/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const ServiceName = "creativehub"

// Components are the wired services behind the http engine. Optional ones are nil
// when their backend is disabled, and their endpoints are not registered.
type Components struct {
	Machine     *state.StateMachine
	Projects    project.ManagerTraits
	Transitions transition.ManagerTraits
	Outbox      notification.Outbox

	Files        files.ManagerTraits
	Documents    es.DocumentStore
	Synchronizer *indices.Synchronizer
}

// NewDomain wires the project and lifecycle services on top of store.
func NewDomain(machine *state.StateMachine, store project.Store, resolver files.Resolver,
	dispatcher event.Dispatcher) (*project.Manager, *transition.Manager) {

	policy := access.NewRolePolicy()
	projects := project.NewManager(store, policy, machine, dispatcher)
	coordinator := transition.NewCoordinator(store, resolver, dispatcher)
	transitions := transition.NewManager(store, policy, lifecycle.NewGuard(machine), coordinator)
	return projects, transitions
}

func NewEngine(c *Components, auth gin.HandlerFunc) *gin.Engine {
	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), metrics.RequestMetrics(), bizerror.ErrorHandling())

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, ServiceName)
	})
	metrics.RegisterMetricsRestAPI(engine)
	session.RegisterSessionRestAPI(engine, auth)

	projectrest.RegisterProjectsRestAPI(engine, c.Projects, c.Transitions, c.Machine, auth)
	notification.RegisterNotificationsRestAPI(engine, c.Outbox, auth)
	if c.Files != nil {
		files.RegisterFilesRestAPI(engine, c.Files, auth)
	}
	if c.Documents != nil {
		search.RegisterSearchRestAPI(engine, c.Documents, auth)
	}
	if c.Synchronizer != nil {
		indices.RegisterIndicesRestAPI(engine, c.Synchronizer, auth)
	}
	return engine
}

// Migrate creates or updates every table of the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&project.Project{}, &project.Applicant{}, &project.Participant{}, &project.Result{},
		&event.EventRecord{}, &files.FileRecord{}, &notification.Notification{},
	).Error
}
