package internal

import (
	"sync"
	"time"
)

// BaseTask keeps the state, result data and timing shared by all tasks. It
// is safe to read while the task runs.
type BaseTask struct {
	mu sync.RWMutex

	state    TaskState
	data     TaskData
	err      error
	started  time.Time
	finished time.Time
}

func (t *BaseTask) SetState(state TaskState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state == TaskStateRunning {
		t.started = time.Now()
	}
	t.state = state
}

func (t *BaseTask) SetData(key, val string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.data == nil {
		t.data = make(TaskData)
	}
	t.data[key] = val
}

func (t *BaseTask) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.finished = time.Now()
	if t.err != nil {
		t.state = TaskStateFailed
	} else {
		t.state = TaskStateComplete
	}
}

func (t *BaseTask) Fail(err error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.err = err
	return err
}

func (t *BaseTask) Result() TaskResult {
	t.mu.RLock()
	defer t.mu.RUnlock()

	data := make(TaskData, len(t.data))
	for k, v := range t.data {
		data[k] = v
	}
	return TaskResult{
		State: t.state,
		Error: t.err,
		Data:  data,
	}
}

// Elapsed is how long the task ran, or has been running.
func (t *BaseTask) Elapsed() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch {
	case t.started.IsZero():
		return 0
	case t.finished.IsZero():
		return time.Since(t.started)
	}
	return t.finished.Sub(t.started)
}

func (t *BaseTask) State() TaskState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *BaseTask) Error() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}
