package indices

import (
	"context"
	"creativehub/bizerror"
	"creativehub/session"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var SyncBatchSize = 500

// Synchronizer rebuilds the whole project index, one run at a time.
type Synchronizer struct {
	indexer *Indexer
	limiter *rate.Limiter

	lock    sync.Mutex
	running bool
}

// NewSynchronizer paces document writes with limiter; a nil limiter means unthrottled.
func NewSynchronizer(indexer *Indexer, limiter *rate.Limiter) *Synchronizer {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Synchronizer{indexer: indexer, limiter: limiter}
}

func (s *Synchronizer) Running() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.running
}

// FullSync indexes every stored project. Failures of single projects are collected, not fatal.
func (s *Synchronizer) FullSync(ctx context.Context) (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			if e, ok := ret.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	var errs *multierror.Error
	for page := 1; ; page++ {
		projects, err := s.indexer.source.LoadProjects(ctx, page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices full sync: error on retrieve projects(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			return multierror.Append(errs, err).ErrorOrNil()
		}
		if len(projects) == 0 {
			logrus.Infof("indices full sync: there are no more projects to index")
			return errs.ErrorOrNil()
		}

		for _, p := range projects {
			if err := s.limiter.Wait(ctx); err != nil {
				return multierror.Append(errs, err).ErrorOrNil()
			}
			detail, err := s.indexer.source.Detail(ctx, p.UUID)
			if err == nil {
				err = s.indexer.IndexProject(ctx, detail)
			}
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("project %s: %w", p.UUID, err))
			}
		}
	}
}

// Rebuild drops the project index before a full sync, so documents of projects
// no longer stored disappear as well.
func (s *Synchronizer) Rebuild(ctx context.Context) error {
	if err := s.indexer.docs.DropIndex(ctx, ProjectIndexName); err != nil {
		return fmt.Errorf("drop index %s: %w", ProjectIndexName, err)
	}
	logrus.Infof("indices rebuild: index %s dropped", ProjectIndexName)
	return s.FullSync(ctx)
}

// Schedule starts a background full sync, or a rebuild, unless one is already running.
func (s *Synchronizer) Schedule(rebuild bool) bool {
	s.lock.Lock()
	if s.running {
		s.lock.Unlock()
		return false
	}
	s.running = true
	s.lock.Unlock()

	go func() {
		defer func() {
			s.lock.Lock()
			s.running = false
			s.lock.Unlock()
		}()
		run := s.FullSync
		if rebuild {
			run = s.Rebuild
		}
		if err := run(context.Background()); err != nil {
			logrus.Errorf("indices full sync: %v", err)
		}
	}()
	return true
}

// ScheduleBy is Schedule restricted to system administrators.
func (s *Synchronizer) ScheduleBy(sec *session.Session, rebuild bool) (bool, error) {
	if sec == nil || !sec.Perms.IsSystemAdmin() {
		return false, bizerror.ErrForbidden
	}
	return s.Schedule(rebuild), nil
}

// StartCron schedules full syncs with a seconds-precision cron spec, e.g. "0 0 23 * * ?".
func (s *Synchronizer) StartCron(spec string) (*cron.Cron, error) {
	crontab := cron.New(cron.WithSeconds())
	if _, err := crontab.AddFunc(spec, func() { s.Schedule(false) }); err != nil {
		return nil, err
	}
	crontab.Start()
	return crontab, nil
}
