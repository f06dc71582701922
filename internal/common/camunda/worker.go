// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"
)

// JobHandler is the signature every worker package exposes as Handle.
type JobHandler func(client worker.JobClient, job entities.Job)

// WorkerOptions configures a single job worker subscription.
type WorkerOptions struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
	Handler       JobHandler
}

// Worker owns one open job subscription. Closing it stops polling but
// leaves the shared client connection up for the remaining workers.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job worker on the client's connection.
func (c *Client) NewWorker(opts WorkerOptions, logger *zap.Logger) *Worker {
	builder := c.client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(worker.JobHandler(opts.Handler)).
		MaxJobsActive(opts.MaxJobsActive)

	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}

	jobWorker := builder.Open()

	logger.Info("worker started",
		zap.String("taskType", opts.TaskType),
		zap.Int("maxJobsActive", opts.MaxJobsActive),
		zap.Duration("timeout", opts.Timeout),
	)

	return &Worker{
		worker:   jobWorker,
		logger:   logger,
		taskType: opts.TaskType,
	}
}

// TaskType reports which job type this worker polls.
func (w *Worker) TaskType() string {
	return w.taskType
}

// Close stops polling and waits for in-flight handlers to return.
func (w *Worker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
