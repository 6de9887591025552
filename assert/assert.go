// Package assert wraps gotest.tools/v3/assert for errors built with eris. Failure messages carry the
// full eris chain with stack frames, and error comparisons look through wrapping.
package assert

import (
	gocmp "github.com/google/go-cmp/cmp"
	"github.com/rotisserie/eris"
	gotest "gotest.tools/v3/assert"
)

type helperT interface {
	Helper()
}

func helper(t gotest.TestingT) {
	if ht, ok := t.(helperT); ok {
		ht.Helper()
	}
}

func withChain(err error, msgAndArgs []any) []any {
	if err == nil {
		return msgAndArgs
	}
	return append([]any{eris.ToString(err, true)}, msgAndArgs...)
}

func Assert(t gotest.TestingT, comparison gotest.BoolOrComparison, msgAndArgs ...any) {
	helper(t)
	gotest.Assert(t, comparison, msgAndArgs...)
}

func Check(t gotest.TestingT, comparison gotest.BoolOrComparison, msgAndArgs ...any) bool {
	helper(t)
	return gotest.Check(t, comparison, msgAndArgs...)
}

func Equal(t gotest.TestingT, x, y any, msgAndArgs ...any) {
	helper(t)
	gotest.Equal(t, x, y, msgAndArgs...)
}

func DeepEqual(t gotest.TestingT, x, y any, opts ...gocmp.Option) {
	helper(t)
	gotest.DeepEqual(t, x, y, opts...)
}

func NilError(t gotest.TestingT, err error, msgAndArgs ...any) {
	helper(t)
	gotest.NilError(t, err, withChain(err, msgAndArgs)...)
}

// ErrorContains checks the message of the whole chain, so context added by eris.Wrap counts.
func ErrorContains(t gotest.TestingT, err error, substring string, msgAndArgs ...any) {
	helper(t)
	gotest.ErrorContains(t, err, substring, withChain(err, msgAndArgs)...)
}

// ErrorIs passes when expected is anywhere in the chain of err, wrapped by eris or by fmt.
func ErrorIs(t gotest.TestingT, err error, expected error, msgAndArgs ...any) {
	helper(t)
	gotest.Assert(t, eris.Is(err, expected), withChain(err, msgAndArgs)...)
}
