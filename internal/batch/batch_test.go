// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probechain/lupy/translate"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.py":         "x = 1\n",
		"a.py":         "x = 1\n",
		"pkg/c.py":     "x = 1\n",
		"pkg/data.txt": "data",
	})
	sources, assets, err := Discover(root)
	require.NoError(t, err)
	want := []string{filepath.Join(root, "a.py"), filepath.Join(root, "b.py"), filepath.Join(root, "pkg", "c.py")}
	if diff := cmp.Diff(want, sources); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{filepath.Join(root, "pkg", "data.txt")}, assets)

	_, _, err = Discover(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestMirror(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pkg/c.py": "", "single": ""})

	got, err := Mirror(root, "out", filepath.Join(root, "pkg", "c.py"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "pkg", "c.lua"), got)

	single := filepath.Join(root, "single")
	got, err = Mirror(single, "out", single)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "single.lua"), got)
}

func TestRun(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeTree(t, in, map[string]string{
		"good.py":      "x = 1\nprint(x)\n",
		"empty.py":     "",
		"bad.py":       "print(y)\n",
		"nested/ok.py": "for i in range(3):\n\tprint(i)\n",
		"notes.md":     "# notes",
	})
	tr, err := translate.New(translate.Config{})
	require.NoError(t, err)

	var announced []string
	report, err := Run(context.Background(), tr, Config{Input: in, Output: out, Workers: 3, CopyAssets: true}, func(r Result) {
		announced = append(announced, r.Source)
	})
	require.NoError(t, err)
	assert.Len(t, announced, 5)
	assert.Len(t, report.Results, 5)
	assert.NotEmpty(t, report.RunID)

	// empty.py has no trailing newline and bad.py fails the checker.
	assert.Equal(t, 2, report.Failed())
	kinds := make(map[string]translate.Kind)
	for _, r := range report.Results {
		kinds[filepath.Base(r.Source)] = r.Kind
	}
	assert.Equal(t, translate.Semantic, kinds["bad.py"])
	assert.Equal(t, translate.NoNewLine, kinds["empty.py"])

	lua, err := os.ReadFile(filepath.Join(out, "good.lua"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\nprint(x)\n", string(lua))
	lua, err = os.ReadFile(filepath.Join(out, "nested", "ok.lua"))
	require.NoError(t, err)
	assert.Equal(t, "for i = 0, 2 do\n    print(i)\nend\n", string(lua))
	_, err = os.Stat(filepath.Join(out, "bad.lua"))
	assert.True(t, os.IsNotExist(err))
	notes, err := os.ReadFile(filepath.Join(out, "notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "# notes", string(notes))

	var buf bytes.Buffer
	report.Render(&buf)
	assert.Contains(t, buf.String(), "semantic error")
	assert.Contains(t, buf.String(), "2 FAILED")
}

func TestRunWithoutAssets(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeTree(t, in, map[string]string{"a.py": "x = 1\n", "notes.md": "x"})
	tr, err := translate.New(translate.Config{})
	require.NoError(t, err)

	report, err := Run(context.Background(), tr, Config{Input: in, Output: out}, nil)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.True(t, strings.HasSuffix(report.Results[0].Target, "a.lua"))
	_, err = os.Stat(filepath.Join(out, "notes.md"))
	assert.True(t, os.IsNotExist(err))
}
