package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fragments = `>est1_0_8
ACGTACGT
>est2_6_14
GTTTGGCC
>est3_9_16
TGGCCAA
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func input(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ests.fa")
	require.NoError(t, os.WriteFile(path, []byte(fragments), 0o644))
	return path
}

func TestAssembleToStdout(t *testing.T) {
	out, err := run(t, "assemble", input(t), "--window", "2", "--word", "2", "--threshold", "0")
	require.NoError(t, err)
	assert.Equal(t, ">contig 1\nACGTACGTTTGGCCAA\n", out)
}

func TestAssembleOutputs(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{}
	for _, name := range []string{"out", "singletons", "counts", "branches", "dot"} {
		files[name] = filepath.Join(dir, name)
	}
	out, err := run(t, "assemble", input(t), "--window", "2", "--word", "2", "--threshold", "0",
		"--out", files["out"], "--singletons", files["singletons"], "--counts", files["counts"],
		"--branches", files["branches"], "--dot", files["dot"], "--serial")
	require.NoError(t, err)
	assert.Empty(t, out)

	read := func(name string) string {
		data, err := os.ReadFile(files[name])
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, ">contig 1\nACGTACGTTTGGCCAA\n", read("out"))
	assert.Empty(t, read("singletons"))
	assert.Contains(t, read("counts"), "contig 1\test1_0_8\t3\t16")
	assert.Empty(t, read("branches"))
	dot := read("dot")
	assert.Contains(t, dot, "similarity")
	assert.Contains(t, dot, "overlaps")
	assert.Contains(t, dot, "est2_6_14")
}

func TestAssembleExternalTree(t *testing.T) {
	tree := filepath.Join(t.TempDir(), "tree.txt")
	require.NoError(t, os.WriteFile(tree, []byte("# from to weight\n0 1 0\n1 2 0\n"), 0o644))

	out, err := run(t, "assemble", input(t), "--window", "2", "--word", "2", "--threshold", "0", "--tree", tree)
	require.NoError(t, err)
	assert.Equal(t, ">contig 1\nACGTACGTTTGGCCAA\n", out)
}

func TestAssembleSettingsFile(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("overlap:\n  window: 2\n  word: 2\n  threshold: 0\n"), 0o644))

	out, err := run(t, "assemble", input(t), "--settings", settings)
	require.NoError(t, err)
	assert.Equal(t, ">contig 1\nACGTACGTTTGGCCAA\n", out)
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"assemble"}},
		{"absent file", []string{"assemble", filepath.Join(t.TempDir(), "absent.fa")}},
		{"invalid word", []string{"assemble", input(t), "--window", "2", "--word", "3"}},
		{"unknown mode", []string{"assemble", input(t), "--mode", "type-iii"}},
		{"fragments shorter than window", []string{"assemble", input(t)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestOverlapCommand(t *testing.T) {
	out, err := run(t, "overlap", input(t), "--window", "2", "--word", "2", "--threshold", "0")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "first"))
	assert.Contains(t, out, "est1_0_8")
}

func TestAlignCommand(t *testing.T) {
	out, err := run(t, "align", input(t))
	require.NoError(t, err)
	assert.Contains(t, out, "est1_0_8 vs est2_6_14")
	assert.Contains(t, out, "Score:")

	for _, method := range []string{"global", "smith-waterman", "needleman-wunsch"} {
		out, err = run(t, "align", input(t), "--method", method)
		require.NoError(t, err, method)
		assert.Contains(t, out, "CIGAR:", method)
	}

	out, err = run(t, "align", input(t), "--method", "global", "--score-only")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "est1_0_8 vs est2_6_14\tscore "))

	_, err = run(t, "align", input(t), "--method", "banded")
	assert.Error(t, err)
}

func TestStatsCommand(t *testing.T) {
	out, err := run(t, "stats", input(t), "--json")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3.0, got["count"])
	assert.Equal(t, 23.0, got["total_bases"])

	out, err = run(t, "stats", input(t))
	require.NoError(t, err)
	assert.Contains(t, out, "3 sequences, 23 bases")

	out, err = run(t, "stats", input(t), "--top", "2", "--word", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2-mers: 11 distinct of 20\n  GT\t3\n  AC\t2\n")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "estflow "))
}
