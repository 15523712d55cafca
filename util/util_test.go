package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jsphweid/kerngrid/model"
	"github.com/stretchr/testify/assert"
)

func TestGatherAllPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mid", "b.txt", "sub/c.mid", "sub/d.musicxml"} {
		path := filepath.Join(dir, name)
		os.MkdirAll(filepath.Dir(path), 0777)
		os.WriteFile(path, []byte{}, 0666)
	}
	isMidi := func(s string) bool { return strings.HasSuffix(s, ".mid") }

	assert := assert.New(t)
	assert.Equal([]string{filepath.Join(dir, "a.mid"), filepath.Join(dir, "sub/c.mid")}, GatherAllPaths(dir, 0, isMidi))
	assert.Len(GatherAllPaths(dir, 1, isMidi), 1)
}

func TestBinaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.dat")
	manifest := model.Manifest{
		0: {Source: "a.mid", Output: "x.krn"},
		1: {Source: "b.xml", Error: "no parts"},
	}
	CreateBinary(path, manifest)

	assert.Equal(t, manifest, ReadBinaryOrPanic[model.Manifest](path))
}

func TestReadBinaryOrPanicMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		ReadBinaryOrPanic[model.Manifest](filepath.Join(t.TempDir(), "nope"))
	})
}

func TestRecreateOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	t.Setenv("KERNGRID_OUT_PATH", dir)
	os.MkdirAll(dir, 0777)
	os.WriteFile(filepath.Join(dir, "stale.krn"), []byte("x"), 0666)

	assert := assert.New(t)
	assert.Equal(dir, RecreateOutputDir())
	entries, err := os.ReadDir(dir)
	assert.Nil(err)
	assert.Empty(entries)
}

func TestNumberHelpers(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint64(6), Sum([]uint8{1, 2, 3}))
	assert.Equal(7, Max([]int{2, 7, 4}))
	assert.Equal(0, Max([]int{}))
	assert.Equal([]string{"a", "b", "c"}, GetKeys(map[string]int{"c": 1, "a": 2, "b": 3}))
}
