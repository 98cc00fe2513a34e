package internal

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
)

func TestInitials(t *testing.T) {
	for handle, expected := range map[string]string{
		"ghostDunk":         "GD",
		"carcinoGeneticist": "CG",
		"GhostDunk":         "GG",
		"pesterchum":        "P",
		"":                  "XX",
	} {
		assert.Equal(t, expected, Initials(handle), handle)
	}
}

func TestProfileColorCmd(t *testing.T) {
	assert.Equal(t, "255,0,0", NewProfile("a", "#ff0000").ColorCmd())
	assert.Equal(t, "0,0,255", NewProfile("a", "blue").ColorCmd())
	assert.Equal(t, "0,0,0", NewProfile("a", "").ColorCmd())
}

func TestProfileFilename(t *testing.T) {
	assert.Equal(t, "ghostdunk.js", ProfileFilename("ghostDunk"))
	assert.Equal(t, "profile.js", ProfileFilename("!!!"))
}

const legacyProfile = `{
	"handle": "ghostDunk",
	"color": "#ff0000",
	"theme": "pesterchum",
	"randoms": false,
	"quirks": [
		{"type": "prefix", "value": "> ", "group": "Speech"},
		{"type": "replace", "from": "s", "to": "z", "checkstate": 2},
		{"type": "teleport"}
	]
}`

func TestLoadProfile(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "ghostdunk.js")
	require.NoError(t, ioutil.WriteFile(path, []byte(legacyProfile), 0600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal("ghostDunk", p.Handle)
	assert.Equal("255,0,0", p.ColorCmd())
	assert.Equal(2, p.Quirks.Len())
	assert.True(p.Quirks.Quirks()[1].Exclude())
	assert.False(p.Dirty())

	require.NoError(t, p.Quirks.Remove(p.Quirks.Quirks()[0].ID()))
	assert.True(p.Dirty())

	out := filepath.Join(dir, "saved", "ghostdunk.js")
	require.NoError(t, p.Save(out))
	assert.False(p.Dirty())

	data, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal("pesterchum", raw["theme"])
	assert.Equal(false, raw["randoms"])

	again, err := LoadProfile(out)
	require.NoError(t, err)
	require.Equal(t, 1, again.Quirks.Len())
	rec := again.Quirks.Records()[0]
	assert.Equal(types.QuirkReplace, rec.Type)
	assert.True(rec.Exclude)
	assert.Equal(p.Quirks.Hash(), again.Quirks.Hash())
}

func TestLoadOrCreateProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.js")

	p, err := LoadOrCreateProfile(path, "newChum", "#00ff00")
	require.NoError(t, err)
	assert.Equal(t, "newChum", p.Handle)
	assert.Equal(t, 0, p.Quirks.Len())
	require.NoError(t, p.Save(""))

	again, err := LoadOrCreateProfile(path, "other", "")
	require.NoError(t, err)
	assert.Equal(t, "newChum", again.Handle)

	assert.ErrorIs(t, NewProfile("x", "").Save(""), ErrProfilePathMissing)
}
