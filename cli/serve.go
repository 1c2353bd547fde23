package cli

import (
	"creativehub/app"
	"creativehub/authority"
	"creativehub/client/es"
	"creativehub/client/s3"
	"creativehub/config"
	"creativehub/domain/project"
	"creativehub/event"
	"creativehub/files"
	"creativehub/indices"
	"creativehub/infra/tracing"
	"creativehub/notification"
	"creativehub/session"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

const redeliverBatchSize = 100

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the http service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			return serve(c)
		},
	}
}

func serve(c *config.AppConfig) error {
	logrus.Info("service start")

	if c.TracingEnabled {
		closer, err := tracing.InitTracerFromEnv(app.ServiceName)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer closer.Close()
	}

	machine, err := loadMachine(c.WorkflowFile)
	if err != nil {
		return fmt.Errorf("load workflow: %w", err)
	}
	if c.SessionTokensFile != "" {
		if _, err := session.LoadTokensFile(c.SessionTokensFile); err != nil {
			return fmt.Errorf("load session tokens: %w", err)
		}
	}

	ds, err := connect(c)
	if err != nil {
		return err
	}
	defer ds.Stop()
	// database migration (race condition)
	if err := app.Migrate(ds.GormDB()); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	storage, err := s3.NewClient(s3.BucketConfigFromEnv())
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}
	fileManager := files.NewManager(ds, storage)

	store := project.NewGormStore(ds)
	bus := event.NewBus()
	relay := event.NewRelay(ds, bus)
	projects, transitions := app.NewDomain(machine, store, fileManager, relay)

	outbox := notification.NewGormOutbox(ds)
	notifier := notification.NewNotifier(store, outbox, func() []session.Identity {
		return session.IdentitiesWithRole(authority.SystemAdmin)
	})
	bus.Subscribe(notification.NotifierEventHandlerName, notifier.HandleEvent)

	components := &app.Components{Machine: machine, Projects: projects, Transitions: transitions, Outbox: outbox}
	if c.OSSEnabled {
		components.Files = fileManager
	}

	if c.ElasticsearchEnabled {
		client, err := es.CreateClientFromEnv()
		if err != nil {
			return fmt.Errorf("elasticsearch client: %w", err)
		}
		indexer := indices.NewIndexer(store, client)
		bus.Subscribe(indices.ProjectIndexEventHandlerName, indexer.HandleEvent)

		synchronizer := indices.NewSynchronizer(indexer, rate.NewLimiter(rate.Limit(c.ReindexRate), 1))
		crontab, err := synchronizer.StartCron(c.ReindexCron)
		if err != nil {
			return fmt.Errorf("reindex cron: %w", err)
		}
		defer crontab.Stop()
		components.Documents = client
		components.Synchronizer = synchronizer
	}

	redeliver, err := relay.StartCron(c.RedeliverCron, redeliverBatchSize)
	if err != nil {
		return fmt.Errorf("redeliver cron: %w", err)
	}
	defer redeliver.Stop()

	engine := app.NewEngine(components, session.SimpleAuthFilter())
	return app.StartHTTPServer(c.HTTPAddress, engine)
}
