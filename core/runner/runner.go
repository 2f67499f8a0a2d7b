package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a unit of work executed by Run
type Task struct {
	Label string
	Fn    func(ctx context.Context) error
}

// Outcome records the result of one task. A task's outcome is only
// written once the task has fully completed, success or failure.
type Outcome struct {
	Label string
	Err   error
}

// Fulfilled reports whether the task completed without error
func (o Outcome) Fulfilled() bool {
	return o.Err == nil
}

// ErrInvalidConcurrency is returned when the concurrency limit is not positive
var ErrInvalidConcurrency = errors.New("concurrency limit must be positive")

// Run executes tasks with at most limit in flight at any instant and
// returns one outcome per task, in submission order regardless of
// completion order. A failing task never aborts its siblings; Run only
// errors on an invalid limit, before any task starts.
func Run(ctx context.Context, tasks []Task, limit int) ([]Outcome, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidConcurrency, limit)
	}

	outcomes := make([]Outcome, len(tasks))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, task := range tasks {
		sem <- struct{}{} // Acquire a worker slot, blocks at the cap.
		wg.Add(1)

		go func(i int, task Task) {
			defer func() {
				<-sem // Release the worker slot.
				wg.Done()
			}()

			outcomes[i] = Outcome{Label: task.Label, Err: task.Fn(ctx)}
		}(i, task)
	}

	wg.Wait()
	return outcomes, nil
}
