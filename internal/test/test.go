// Package test contains helpers shared by package tests.
package test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava12/cstx"
)

// ExpectErrorCode fails the test unless e is (or wraps) *cstx.Error with expected code.
func ExpectErrorCode(t testing.TB, expected int, e error) *cstx.Error {
	t.Helper()
	var ce *cstx.Error
	require.Truef(t, errors.As(e, &ce), "expecting error code %d, got %v", expected, e)
	require.Equalf(t, expected, ce.Code, "expecting error code %d, got %v", expected, e)
	return ce
}

// ExpectErrorClass fails the test unless e is (or wraps) *cstx.Error of expected class.
func ExpectErrorClass(t testing.TB, class int, e error) *cstx.Error {
	t.Helper()
	var ce *cstx.Error
	require.Truef(t, errors.As(e, &ce), "expecting error of class %d, got %v", class, e)
	require.Equalf(t, class, ce.Class(), "expecting error of class %d, got %v", class, e)
	return ce
}

// ExpectMentions fails the test unless error message mentions every name.
func ExpectMentions(t testing.TB, e error, names ...string) {
	t.Helper()
	require.Error(t, e)
	for _, name := range names {
		require.Truef(t, strings.Contains(e.Error(), name), "%q is not mentioned in %q", name, e.Error())
	}
}
