package internal

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/quirks"
)

// DefaultReloadDelay groups bursts of file events into one reload.
const DefaultReloadDelay = 250 * time.Millisecond

// Watcher reloads the quirk functions whenever a function file in the
// functions directory changes.
type Watcher struct {
	fns   *quirks.Functions
	dir   string
	delay time.Duration

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	timer  *time.Timer
	last   *FuncTask
	reload func(*FuncTask)
}

func NewWatcher(dir string, fns *quirks.Functions) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		fns:     fns,
		dir:     dir,
		delay:   DefaultReloadDelay,
		watcher: fw,
		done:    make(chan struct{}),
	}, nil
}

// OnReload sets a callback run after every reload.
func (w *Watcher) OnReload(f func(*FuncTask)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reload = f
}

// Last returns the most recent reload task, or nil.
func (w *Watcher) Last() *FuncTask {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func isFuncFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
		return false
	}
	switch filepath.Ext(base) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.run)
}

func (w *Watcher) run() {
	task := NewFuncTask(w.fns.Reload)
	if err := RunTask("reload", task); err != nil {
		log.WithError(err).WithField("dir", w.dir).Warn("error reloading quirk functions")
	} else {
		log.WithField("dir", w.dir).Infof("reloaded quirk functions in %s", task.Elapsed())
	}

	w.mu.Lock()
	w.last = task
	f := w.reload
	w.mu.Unlock()

	if f != nil {
		f(task)
	}
}

// Start watches the directory in the background until Stop.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !isFuncFile(ev.Name) {
					continue
				}
				log.Debugf("quirk function file event: %s", ev)
				w.schedule()
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Error("error watching quirk functions")
			case <-w.done:
				return
			}
		}
	}()
}

func (w *Watcher) Stop() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}
