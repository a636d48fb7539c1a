package processor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
	"github.com/AryaKesharwani/erp-next-contract/pkg/tracing"
)

var (
	// ErrSchedulerAlreadyRunning is returned when trying to start an already running scheduler
	ErrSchedulerAlreadyRunning = errors.New("scheduler already running")
)

const (
	// DefaultInterval is the default time between processing cycles
	DefaultInterval = 300 * time.Second

	// DefaultBatchSize is the number of documents to fetch per cycle
	DefaultBatchSize = 50
)

// DocumentSource lists documents for the processing cycle.
type DocumentSource interface {
	GetDocuments(ctx context.Context, limit int) ([]models.Document, error)
}

// Sweeper runs the contract expiration sweep.
type Sweeper interface {
	CheckContractExpirations(ctx context.Context) error
}

// SchedulerConfig holds scheduler settings
type SchedulerConfig struct {
	Interval  time.Duration
	BatchSize int
}

// Scheduler runs the processing cycle on a fixed interval. The first cycle
// runs immediately on start.
type Scheduler struct {
	source    DocumentSource
	processor *Processor
	sweeper   Sweeper
	config    SchedulerConfig
	logger    ectologger.Logger

	stopCh   chan struct{}
	stoppedC chan struct{}
	running  bool
	mu       sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(source DocumentSource, processor *Processor, sweeper Sweeper, config SchedulerConfig, logger ectologger.Logger) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}

	return &Scheduler{
		source:    source,
		processor: processor,
		sweeper:   sweeper,
		config:    config,
		logger:    logger,
		stopCh:    make(chan struct{}),
		stoppedC:  make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSchedulerAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	s.logger.WithContext(ctx).Infof("Starting scheduler: interval=%s batch_size=%d",
		s.config.Interval, s.config.BatchSize)

	go s.pollLoop(ctx)

	return nil
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)

	select {
	case <-s.stoppedC:
		s.logger.WithContext(ctx).Info("Scheduler stopped gracefully")
	case <-ctx.Done():
		s.logger.WithContext(ctx).Warn("Scheduler shutdown timed out")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) pollLoop(ctx context.Context) {
	defer close(s.stoppedC)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.runCycle(ctx)

	for {
		select {
		case <-s.stopCh:
			s.logger.WithContext(ctx).Debug("Scheduler poll loop stopping")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle processes one batch of documents, then sweeps expirations.
func (s *Scheduler) runCycle(ctx context.Context) {
	ctx, span := tracing.StartSpan(ctx, "processor.Scheduler.runCycle")
	defer span.End()

	start := time.Now()

	docs, err := s.source.GetDocuments(ctx, s.config.BatchSize)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to fetch documents")
	}

	processed := 0
	for _, doc := range docs {
		select {
		case <-s.stopCh:
			return
		default:
		}

		if err := s.processor.ProcessDocument(ctx, doc); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("document_id", doc.ID).Error("Failed to process document")
			continue
		}
		processed++
	}

	if err := s.sweeper.CheckContractExpirations(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Contract expiration sweep failed")
	}

	s.logger.WithContext(ctx).Infof("Processing cycle completed: documents=%d processed=%d duration=%s",
		len(docs), processed, time.Since(start))
}
