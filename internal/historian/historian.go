// internal/historian/historian.go
package historian

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/sirco-master/chess-online/internal/models"
)

// Source yields archived actions in the order the relay produced them.
type Source interface {
	// PopBatch removes up to n entries and reports how many were removed,
	// including any that could not be decoded.
	PopBatch(ctx context.Context, n int) (actions []models.GameAction, popped int, err error)
	Requeue(ctx context.Context, actions []models.GameAction) error
}

// Sink persists a batch atomically.
type Sink interface {
	InsertGameActions(ctx context.Context, actions []models.GameAction) error
}

// Service moves game actions from the Redis queue into Postgres on a fixed schedule.
type Service struct {
	source    Source
	sink      Sink
	batchSize int
	interval  time.Duration
	log       *logrus.Entry

	sched gocron.Scheduler
}

// NewService builds a historian that flushes up to batchSize actions every interval.
func NewService(source Source, sink Sink, batchSize int, interval time.Duration, logger *logrus.Logger) *Service {
	return &Service{
		source:    source,
		sink:      sink,
		batchSize: batchSize,
		interval:  interval,
		log:       logger.WithField("component", "historian"),
	}
}

// Flush drains the queue batch by batch until it is empty or a write fails.
// A batch that cannot be written is put back for the next run.
func (s *Service) Flush(ctx context.Context) (int, error) {
	total := 0
	for {
		batch, popped, err := s.source.PopBatch(ctx, s.batchSize)
		if err != nil {
			return total, fmt.Errorf("pop batch: %w", err)
		}
		if popped == 0 {
			return total, nil
		}
		if len(batch) == 0 {
			continue
		}

		if err := s.sink.InsertGameActions(ctx, batch); err != nil {
			if rqErr := s.source.Requeue(ctx, batch); rqErr != nil {
				s.log.Errorf("failed to requeue %d actions, dropping them: %v", len(batch), rqErr)
			}
			return total, fmt.Errorf("insert batch: %w", err)
		}
		total += len(batch)

		if popped < s.batchSize {
			return total, nil
		}
	}
}

// Start schedules Flush every interval. Runs never overlap.
func (s *Service) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			n, err := s.Flush(ctx)
			if err != nil {
				s.log.Errorf("flush failed after %d actions: %v", n, err)
				return
			}
			if n > 0 {
				s.log.Infof("Flushed %d actions to DB.", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule flush job: %w", err)
	}
	s.sched = sched
	sched.Start()
	s.log.Infof("historian started, flushing every %s", s.interval)
	return nil
}

// Stop shuts the scheduler down and runs one last flush.
func (s *Service) Stop(ctx context.Context) error {
	if s.sched != nil {
		if err := s.sched.Shutdown(); err != nil {
			s.log.Warnf("scheduler shutdown: %v", err)
		}
	}
	n, err := s.Flush(ctx)
	if n > 0 {
		s.log.Infof("Flushed %d actions to DB on shutdown.", n)
	}
	return err
}
