package internal

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/quirks"
)

func TestIsFuncFile(t *testing.T) {
	assert.True(t, isFuncFile("/x/leet.yaml"))
	assert.True(t, isFuncFile("leet.yml"))
	assert.False(t, isFuncFile("_draft.yaml"))
	assert.False(t, isFuncFile(".leet.yaml.swp"))
	assert.False(t, isFuncFile("notes.txt"))
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	fns := quirks.NewFunctions(quirks.DirLoader(dir))
	_, ok := fns.Current().Lookup("leet")
	require.False(t, ok)

	w, err := NewWatcher(dir, fns)
	require.NoError(t, err)
	w.delay = 10 * time.Millisecond

	reloads := make(chan *FuncTask, 8)
	w.OnReload(func(task *FuncTask) { reloads <- task })
	w.Start()
	defer w.Stop()

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "leet.yaml"), []byte(`
replace:
  - from: e
    to: "3"
`), 0600))

	select {
	case task := <-reloads:
		assert.NotEqual(t, TaskStatePending, task.State())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	assert.Eventually(t, func() bool {
		fn, ok := fns.Current().Lookup("leet")
		return ok && fn("eel") == "33l"
	}, 5*time.Second, 20*time.Millisecond)
	assert.NotNil(t, w.Last())
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), quirks.NewFunctions())
	assert.Error(t, err)
}
