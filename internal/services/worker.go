package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerStopped = errors.New("worker stopped")

type SubmissionJob struct {
	SessionID  uuid.UUID
	Session    AnalysisSession
	Submission *Submission
}

// Worker runs submissions begun by HTTP handlers and sweeps idle sessions.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(job SubmissionJob) error
}

type worker struct {
	registry      SessionRegistry
	jobQueue      chan SubmissionJob
	concurrency   int
	sessionTTL    time.Duration
	sweepInterval time.Duration
	wg            sync.WaitGroup
	stopChan      chan struct{}
	stopOnce      sync.Once
}

func NewWorker(
	registry SessionRegistry,
	concurrency int,
	sessionTTL time.Duration,
	sweepInterval time.Duration,
) Worker {
	return &worker{
		registry:      registry,
		jobQueue:      make(chan SubmissionJob, 100),
		concurrency:   concurrency,
		sessionTTL:    sessionTTL,
		sweepInterval: sweepInterval,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	if w.sweepInterval > 0 && w.sessionTTL > 0 {
		w.wg.Add(1)
		go w.sweepIdleSessions()
	}

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker. Jobs still queued are aborted so their sessions
// do not stay in Submitting.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()

		for {
			select {
			case job := <-w.jobQueue:
				job.Session.Abort(job.Submission, ErrWorkerStopped)
			default:
				log.Println("✅ Worker stopped")
				return
			}
		}
	})
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(job SubmissionJob) error {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue submission %s\n", job.Submission.ID)
		return ErrWorkerStopped
	default:
	}

	select {
	case w.jobQueue <- job:
		log.Printf("📥 Submission %s enqueued for session %s\n", job.Submission.ID, job.SessionID)
		return nil
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue submission %s\n", job.Submission.ID)
		return ErrWorkerStopped
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log.Printf("🚀 Worker %d started processing jobs\n", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case job := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing submission %s\n", workerID, job.Submission.ID)
			vm := job.Session.Run(ctx, job.Submission)
			log.Printf("✅ Worker #%d finished submission %s (%s)\n", workerID, job.Submission.ID, vm.Status)
		}
	}
}

func (w *worker) sweepIdleSessions() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	log.Println("🔄 Starting idle session sweeper")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Idle session sweeper stopped")
			return
		case <-ticker.C:
			if removed := w.registry.SweepIdle(w.sessionTTL); removed > 0 {
				log.Printf("📋 Swept %d idle sessions\n", removed)
			}
		}
	}
}
