package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"studyreels/internal/metrics"
)

type OrphanReelDeleter interface {
	DeleteOrphans(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrphanSweeper periodically removes reels that never received questions.
// Reel and question writes are transactional, so this only catches rows
// left behind by crashes or manual edits.
type OrphanSweeper struct {
	cron    *cron.Cron
	reels   OrphanReelDeleter
	minAge  time.Duration
	timeout time.Duration
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewOrphanSweeper(reels OrphanReelDeleter, minAge time.Duration, log logrus.FieldLogger) *OrphanSweeper {
	if minAge <= 0 {
		minAge = 10 * time.Minute
	}
	return &OrphanSweeper{
		cron:    cron.New(),
		reels:   reels,
		minAge:  minAge,
		timeout: time.Minute,
		log:     log.WithField("worker", "orphan_sweeper"),
		now:     time.Now,
	}
}

func (s *OrphanSweeper) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, func() {
		_, _ = s.Sweep(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule orphan sweep failed: %w", err)
	}
	s.cron.Start()
	s.log.WithField("schedule", schedule).Info("orphan sweep scheduled")
	return nil
}

func (s *OrphanSweeper) Sweep(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	deleted, err := s.reels.DeleteOrphans(ctx, s.now().Add(-s.minAge))
	if err != nil {
		s.log.WithError(err).Error("orphan sweep failed")
		return 0, err
	}
	if deleted > 0 {
		metrics.OrphanReelsSwept.Add(float64(deleted))
		s.log.WithField("deleted", deleted).Info("orphan reels removed")
	}
	return deleted, nil
}

// Stop waits for a running sweep to finish.
func (s *OrphanSweeper) Stop() {
	<-s.cron.Stop().Done()
}
