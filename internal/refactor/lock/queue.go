package lock

import "github.com/amarbel-llc/mill/internal/millerr"

// JobKind enumerates the filesystem-mutating operations the queue accepts.
type JobKind string

const (
	JobCreate JobKind = "create"
	JobWrite  JobKind = "write"
	JobDelete JobKind = "delete"
	JobRename JobKind = "rename"
)

// Job is one unit of work submitted to the queue.
type Job struct {
	Kind    JobKind
	Path    string
	NewPath string // for JobRename
	Content []byte // for JobCreate/JobWrite
}

// Result reports a job's outcome. Jobs never stop the worker; each reports
// independently.
type Result struct {
	Job Job
	Err error
}

// Queue is a FIFO job queue that any goroutine may submit to, processed by
// a single background worker, used by auxiliary tools that mutate files
// outside of an Executor-managed Plan.
type Queue struct {
	jobs    chan Job
	results chan Result
	done    chan struct{}
}

func NewQueue(buffer int) *Queue {
	q := &Queue{
		jobs:    make(chan Job, buffer),
		results: make(chan Result, buffer),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Submit enqueues a job. Blocks if the buffer is full.
func (q *Queue) Submit(j Job) {
	q.jobs <- j
}

// Results returns the channel of completed job outcomes.
func (q *Queue) Results() <-chan Result {
	return q.results
}

// Close stops accepting new jobs and waits for the worker to drain.
func (q *Queue) Close() {
	close(q.jobs)
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)
	defer close(q.results)
	for job := range q.jobs {
		q.results <- Result{Job: job, Err: process(job)}
	}
}

func process(j Job) error {
	switch j.Kind {
	case JobCreate, JobWrite:
		return writeFile(j.Path, j.Content)
	case JobDelete:
		return removeFile(j.Path)
	case JobRename:
		return renameFile(j.Path, j.NewPath)
	default:
		return millerr.New(millerr.InvalidRequest, "unknown job kind", map[string]any{"kind": string(j.Kind)})
	}
}
