package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/bacon/engine/core"
)

// JobTask is a unit of work run on a worker goroutine. Its result callbacks
// run later on the logic thread, from Update.
type JobTask struct {
	Name string
	// Required. Runs on a worker.
	OnStart func() (interface{}, error)
	// Optional. Called with the result of OnStart when it succeeded.
	OnComplete func(result interface{})
	// Optional. Called with the error of OnStart when it failed.
	OnFailure func(err error)
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

// The max number of job results that can be stored at once.
const MAX_JOB_RESULTS int = 512

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	mu      sync.Mutex
	results []jobResult
	closed  bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = fmt.Errorf("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
		results:    make([]jobResult, 0, MAX_JOB_RESULTS),
	}

	js.start()
	core.LogDebug("Job system started with %d workers.", numWorkers)

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := job.OnStart()
				if err != nil {
					core.LogError("job %s failed: %s", job.Name, err)
				}
				js.storeResult(jobResult{task: job, result: result, err: err})
			}
		}()
	}
}

func (js *JobSystem) storeResult(r jobResult) {
	js.mu.Lock()
	defer js.mu.Unlock()
	if len(js.results) >= MAX_JOB_RESULTS {
		core.LogWarn("job result queue full, dropping result of %s", r.task.Name)
		return
	}
	js.results = append(js.results, r)
}

/**
 * @brief Shuts the job system down. Queued jobs still run, their results
 * are discarded.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	js.mu.Unlock()

	close(js.jobQueue)
	js.wg.Wait()

	js.mu.Lock()
	js.results = nil
	js.mu.Unlock()
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle, on the
 * logic thread: runs the callbacks of every finished job.
 */
func (js *JobSystem) Update() int {
	js.mu.Lock()
	done := js.results
	js.results = make([]jobResult, 0, MAX_JOB_RESULTS)
	js.mu.Unlock()

	for _, r := range done {
		if r.err != nil {
			if r.task.OnFailure != nil {
				r.task.OnFailure(r.err)
			}
			continue
		}
		if r.task.OnComplete != nil {
			r.task.OnComplete(r.result)
		}
	}
	return len(done)
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full. Must not race with Shutdown.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.mu.Lock()
	closed := js.closed
	js.mu.Unlock()
	if closed {
		return ErrJobSystemClosed
	}
	if jt.OnStart == nil {
		return fmt.Errorf("job %s has no entry point", jt.Name)
	}
	js.jobQueue <- jt
	return nil
}
