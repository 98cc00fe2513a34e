package internal

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type TaskState int

const (
	TaskStatePending TaskState = iota
	TaskStateRunning
	TaskStateComplete
	TaskStateFailed
)

func (t TaskState) String() string {
	switch t {
	case TaskStatePending:
		return "pending"
	case TaskStateRunning:
		return "running"
	case TaskStateComplete:
		return "complete"
	case TaskStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TaskData holds what a task reports about its work, e.g. the target and
// chunk count of a sent line.
type TaskData map[string]string

type TaskResult struct {
	State TaskState `json:"state"`
	Error error     `json:"error"`
	Data  TaskData  `json:"data"`
}

// Task is one unit of pipeline work: sending a line or reloading the quirk
// functions.
type Task interface {
	State() TaskState
	Result() TaskResult
	Error() error
	Elapsed() time.Duration
	Run() error
}

var (
	_ Task = (*SendTask)(nil)
	_ Task = (*FuncTask)(nil)
)

// RunTask runs task and logs its outcome under name with the data it
// reported. The task's own error is returned.
func RunTask(name string, task Task) error {
	err := task.Run()

	res := task.Result()
	fields := log.Fields{"task": name, "state": res.State, "elapsed": task.Elapsed()}
	for k, v := range res.Data {
		fields[k] = v
	}
	entry := log.WithFields(fields)
	if err != nil {
		entry.WithError(err).Warn("task failed")
		return err
	}
	entry.Debug("task complete")
	return nil
}
