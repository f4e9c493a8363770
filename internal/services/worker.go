package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-analyzer/internal/models"
	"alfredoptarigan/cv-analyzer/internal/repositories"
)

// PersistJob records the outcome of one pipeline run for storage. Result
// is nil when the run failed.
type PersistJob struct {
	AnalysisID uuid.UUID
	Result     *models.AnalysisResult
	ErrMessage string
	Duration   time.Duration
}

// ResultWriter persists pipeline outcomes off the request path, so a slow
// database never delays the event stream the client is watching.
type ResultWriter interface {
	Start()
	Stop()
	Enqueue(job PersistJob)
}

type resultWriter struct {
	analysisRepo repositories.AnalysisRepository
	log          *zap.Logger
	jobQueue     chan PersistJob
	concurrency  int
	wg           sync.WaitGroup
	stopChan     chan struct{}
}

func NewResultWriter(
	analysisRepo repositories.AnalysisRepository,
	concurrency int,
	queueSize int,
	log *zap.Logger,
) ResultWriter {
	if log == nil {
		log = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &resultWriter{
		analysisRepo: analysisRepo,
		log:          log,
		jobQueue:     make(chan PersistJob, queueSize),
		concurrency:  concurrency,
		stopChan:     make(chan struct{}),
	}
}

// Start implements ResultWriter.
func (w *resultWriter) Start() {
	w.log.Info("starting result writer", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(i + 1)
	}
}

// Stop implements ResultWriter. Drains nothing: jobs already dequeued
// finish, queued jobs are dropped.
func (w *resultWriter) Stop() {
	close(w.stopChan)
	w.wg.Wait()
	w.log.Info("result writer stopped")
}

// Enqueue implements ResultWriter.
func (w *resultWriter) Enqueue(job PersistJob) {
	select {
	case w.jobQueue <- job:
	case <-w.stopChan:
		w.log.Warn("result writer stopped, dropping job",
			zap.String("analysis_id", job.AnalysisID.String()))
	default:
		// A full queue means the database is badly behind; losing the
		// persisted copy is preferable to blocking request handling.
		w.log.Warn("result queue full, dropping job",
			zap.String("analysis_id", job.AnalysisID.String()))
	}
}

func (w *resultWriter) processJobs(workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case job := <-w.jobQueue:
			if err := w.persist(job); err != nil {
				w.log.Error("failed to persist analysis",
					zap.Int("worker", workerID),
					zap.String("analysis_id", job.AnalysisID.String()),
					zap.Error(err))
			}
		}
	}
}

func (w *resultWriter) persist(job PersistJob) error {
	if job.Result == nil {
		return w.analysisRepo.MarkFailed(job.AnalysisID, job.ErrMessage)
	}

	payload, err := json.Marshal(job.Result)
	if err != nil {
		return err
	}
	return w.analysisRepo.MarkCompleted(job.AnalysisID, string(payload), job.Duration)
}
