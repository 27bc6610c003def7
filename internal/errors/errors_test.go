package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/gritql/internal/errors"
)

func TestCompileErrorFormatting(t *testing.T) {
	err := errors.NewCompileError("pattern.grit", 3, 7, "unbound variable $x")
	assert.Equal(t, "compile error at pattern.grit:3:7: unbound variable $x", err.Error())

	withoutFile := errors.NewCompileError("", 0, 0, "duplicate definition")
	assert.Equal(t, "compile error: duplicate definition", withoutFile.Error())
}

func TestCompileErrorUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := errors.NewCompileError("p.grit", 1, 1, "wrap test").WithUnderlying(cause)
	require.ErrorIs(t, err, cause)
}

func TestMatchErrorFormatting(t *testing.T) {
	err := errors.NewMatchError(`or { $a, $b }`, "overlapping effect ranges")
	assert.Contains(t, err.Error(), "overlapping effect ranges")
	assert.Contains(t, err.Error(), "or { $a, $b }")
}

func TestConfigErrorFormatting(t *testing.T) {
	cause := stderrors.New("not a directory")
	err := errors.NewConfigError("library.path", "/nonexistent", cause)
	assert.Equal(t, `config error for field library.path (value "/nonexistent"): not a directory`, err.Error())
	require.ErrorIs(t, err, cause)
}

func TestLibraryErrorFormatting(t *testing.T) {
	err := errors.NewLibraryError("stdlib", "unresolved import cycle")
	assert.Equal(t, `library "stdlib": unresolved import cycle`, err.Error())
}

func TestMultiErrorAggregation(t *testing.T) {
	multi := errors.NewMultiError([]error{nil, stderrors.New("a"), nil, stderrors.New("b")})
	require.True(t, multi.HasErrors())
	assert.Len(t, multi.Errors, 2)
	assert.Equal(t, "2 errors: [a b]", multi.Error())
}

func TestMultiErrorEmpty(t *testing.T) {
	multi := errors.NewMultiError(nil)
	assert.False(t, multi.HasErrors())
	assert.Equal(t, "no errors", multi.Error())
}

func TestMultiErrorSingle(t *testing.T) {
	multi := errors.NewMultiError([]error{stderrors.New("only")})
	assert.Equal(t, "only", multi.Error())
}

func TestLevelOrdering(t *testing.T) {
	assert.Less(t, errors.LevelError, errors.LevelWarn)
	assert.Less(t, errors.LevelWarn, errors.LevelInfo)
	assert.Less(t, errors.LevelInfo, errors.LevelDebug)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "error", errors.LevelError.String())
	assert.Equal(t, "warn", errors.LevelWarn.String())
	assert.Equal(t, "info", errors.LevelInfo.String())
	assert.Equal(t, "debug", errors.LevelDebug.String())
}

func TestToAnalysisLog(t *testing.T) {
	err := errors.NewCompileError("p.grit", 2, 4, "bad arity")
	log := errors.ToAnalysisLog(err, errors.LevelError)
	assert.Equal(t, errors.LevelError, log.Level)
	assert.Equal(t, "p.grit", log.File)
	assert.Equal(t, 2, log.Line)
	assert.Equal(t, 4, log.Column)
}
