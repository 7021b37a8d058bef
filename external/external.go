// Package external defines contract between parser and hand-written scanners
// recognizing tokens that cannot be expressed with regular patterns
// (nested comments, raw strings with counted delimiters, context-dependent literals).
package external

import (
	"github.com/sirupsen/logrus"
)

// Scanner recognizes external tokens.
// input starts at current position and extends to the end of source,
// valid tells which kinds are acceptable at current position (indexed by kind).
// Scan returns recognized kind and token length in bytes, or ok == false.
// A scanner is used by a single parse at a time and may keep state between calls.
type Scanner interface {
	Scan(input []byte, valid []bool) (kind, size int, ok bool)
}

// ScannerFunc adapts function to Scanner.
type ScannerFunc func(input []byte, valid []bool) (kind, size int, ok bool)

func (f ScannerFunc) Scan(input []byte, valid []bool) (kind, size int, ok bool) {
	return f(input, valid)
}

// Matcher recognizes single kind at the start of input, returns match length or 0.
type Matcher func(input []byte, valid []bool) int

// Ordered creates scanner trying matchers strictly in order, matcher index is the kind it recognizes.
// Kinds that are not valid are never tried, nil matchers are skipped.
func Ordered(matchers ...Matcher) Scanner {
	return ScannerFunc(func(input []byte, valid []bool) (int, int, bool) {
		for kind, m := range matchers {
			if m == nil || kind >= len(valid) || !valid[kind] {
				continue
			}
			if size := m(input, valid); size > 0 {
				return kind, size, true
			}
		}
		return 0, 0, false
	})
}

// Bridge declares external token kinds in priority order and creates scanners, one per parse.
type Bridge struct {
	Kinds []string
	New   func() Scanner
}

// Binding maps grammar externals to bridge kinds.
type Binding struct {
	bridge     *Bridge
	toBridge   []int
	fromBridge []int
}

// Bind checks that bridge provides every named kind and returns mapping.
// names are grammar externals in grammar order.
func (b *Bridge) Bind(names []string) (*Binding, error) {
	if len(names) == 0 {
		return &Binding{bridge: b}, nil
	}

	if b == nil || b.New == nil {
		return nil, noScannerError(names)
	}

	index := make(map[string]int, len(b.Kinds))
	for i, k := range b.Kinds {
		if _, has := index[k]; has {
			return nil, duplicateKindError(k)
		}
		index[k] = i
	}

	res := &Binding{
		bridge:     b,
		toBridge:   make([]int, len(names)),
		fromBridge: make([]int, len(b.Kinds)),
	}
	for i := range res.fromBridge {
		res.fromBridge[i] = -1
	}

	var missing []string
	for i, name := range names {
		k, has := index[name]
		if !has {
			missing = append(missing, name)
			continue
		}
		res.toBridge[i] = k
		res.fromBridge[k] = i
	}
	if len(missing) > 0 {
		return nil, missingKindError(missing)
	}
	return res, nil
}

// Open creates per-parse session with a fresh scanner.
func (b *Binding) Open(log logrus.FieldLogger) *Session {
	s := &Session{binding: b, log: log}
	if len(b.toBridge) > 0 {
		s.scanner = b.bridge.New()
		s.valid = make([]bool, len(b.fromBridge))
	}
	return s
}

// Session wraps scanner of a single parse and enforces scanner contract.
type Session struct {
	binding *Binding
	scanner Scanner
	valid   []bool
	log     logrus.FieldLogger
}

// Scan calls scanner with valid kinds indexed by grammar externals and returns grammar external index.
// Results violating contract (kind that is not valid, empty token, token beyond the end of input)
// are logged and treated as no match.
func (s *Session) Scan(input []byte, valid []bool) (kind, size int, ok bool) {
	if s.scanner == nil {
		return 0, 0, false
	}

	hasValid := false
	for i := range s.valid {
		s.valid[i] = false
	}
	for i, v := range valid {
		if v && i < len(s.binding.toBridge) {
			s.valid[s.binding.toBridge[i]] = true
			hasValid = true
		}
	}
	if !hasValid {
		return 0, 0, false
	}

	bk, size, ok := s.scanner.Scan(input, s.valid)
	if !ok {
		return 0, 0, false
	}

	kind = -1
	if bk >= 0 && bk < len(s.binding.fromBridge) {
		kind = s.binding.fromBridge[bk]
	}
	switch {
	case kind < 0 || kind >= len(valid) || !valid[kind]:
		s.violation("scanner returned kind that is not valid", bk, size)
	case size <= 0:
		s.violation("scanner returned empty token", bk, size)
	case size > len(input):
		s.violation("scanner returned token beyond the end of input", bk, size)
	default:
		return kind, size, true
	}
	return 0, 0, false
}

func (s *Session) violation(msg string, kind, size int) {
	if s.log == nil {
		return
	}
	name := ""
	if kind >= 0 && kind < len(s.binding.bridge.Kinds) {
		name = s.binding.bridge.Kinds[kind]
	}
	s.log.WithFields(logrus.Fields{"kind": kind, "name": name, "size": size}).Warn(msg)
}
