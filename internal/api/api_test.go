package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReturnsFirstErrorOnFailure(t *testing.T) {
	_, err := Parse("fn (")
	require.Error(t, err)
}

func TestParseSucceedsOnWellFormedProgram(t *testing.T) {
	prog, err := Parse("fn add(a, b) int { a + b }\n")
	require.NoError(t, err)
	require.NotNil(t, prog)
	require.NotNil(t, prog.Body)
	assert.Len(t, prog.Body.Stmts, 1)
}

func TestRunEvaluatesFinalExpression(t *testing.T) {
	out, err := Run("let x = 1; let y = 2; x + y")
	require.NoError(t, err)
	assert.Equal(t, "3", out)
}

func TestRunAssignsObjectFieldsThroughFieldAccessTarget(t *testing.T) {
	out, err := Run("let o = {}; o.z = 1; o.a = 2; o.m = 3; o")
	require.NoError(t, err)
	assert.Equal(t, "{z: 1; a: 2; m: 3}", out)
}

func TestEvalConfigBindsPositionalArgs(t *testing.T) {
	it, diags := EvalConfig("arg0", []string{"hello"})
	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags.All())
	assert.Equal(t, "hello", it.Result.Display())
}

func TestTransCReadsFileFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.auto")
	require.NoError(t, os.WriteFile(path, []byte("fn add(a, b) int { a + b }\n"), 0o644))

	out, diags := TransC(path)
	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags.All())
	assert.Contains(t, out, "int add(int a, int b)")
}

func TestTransCReportsMissingFile(t *testing.T) {
	_, diags := TransC(filepath.Join(t.TempDir(), "missing.auto"))
	assert.True(t, diags.HasErrors())
}

func TestCompileSessionReusesFragmentsAcrossCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.auto")
	require.NoError(t, os.WriteFile(path, []byte("fn a() int { 1 }\nfn b() int { 2 }\n"), 0o644))

	sess, err := NewCompileSession("")
	require.NoError(t, err)

	first, diags := sess.TransCWithSession(path)
	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags.All())
	assert.Contains(t, first, "2 total, 2 dirty")

	second, diags := sess.TransCWithSession(path)
	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags.All())
	assert.Contains(t, second, "2 total, 0 dirty")
	assert.Len(t, sess.Fragments(), 2)
}

func TestNewCompileSessionOpensDurableStore(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "session.db")
	sess, err := NewCompileSession(dsn)
	require.NoError(t, err)
	defer sess.DB().Close()

	assert.NotNil(t, sess.DB())
}

func TestSessionFileIDIsStableAcrossCalls(t *testing.T) {
	sess, err := NewCompileSession("")
	require.NoError(t, err)

	assert.Equal(t, sess.FileID("a.auto"), sess.FileID("a.auto"))
	assert.NotEqual(t, sess.FileID("a.auto"), sess.FileID("b.auto"))
}
