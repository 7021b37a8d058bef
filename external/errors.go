package external

import (
	"strings"

	"github.com/ava12/cstx"
)

// Error codes used by external:
const (
	NoScannerError = cstx.ScannerErrors + iota
	DuplicateKindError
	MissingKindError
)

func noScannerError(names []string) *cstx.Error {
	return cstx.FormatError(NoScannerError, "no external scanner for kinds: %s", strings.Join(names, ", "))
}

func duplicateKindError(name string) *cstx.Error {
	return cstx.FormatError(DuplicateKindError, "external kind %q declared twice", name)
}

func missingKindError(names []string) *cstx.Error {
	return cstx.FormatError(MissingKindError, "external kinds referenced but not declared: %s", strings.Join(names, ", "))
}
