package internal

// FuncTask runs a plain function as a task; the watcher uses it for quirk
// function reloads.
type FuncTask struct {
	*BaseTask

	f func() error
}

func NewFuncTask(f func() error) *FuncTask {
	return &FuncTask{
		BaseTask: &BaseTask{},

		f: f,
	}
}

func (t *FuncTask) Run() error {
	defer t.Done()
	t.SetState(TaskStateRunning)

	if err := t.f(); err != nil {
		return t.Fail(err)
	}
	return nil
}
