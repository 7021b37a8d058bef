package rust

import (
	"unicode"
	"unicode/utf8"

	"github.com/ava12/cstx/external"
)

// External token kinds in scanner priority order.
const (
	StringContent = iota
	RawStringLiteral
	FloatLiteral
	BlockComment
)

// ExternalKinds lists names of external tokens, indexed by kind.
var ExternalKinds = []string{"string_content", "raw_string_literal", "float_literal", "block_comment"}

// Bridge provides scanners of tokens that regular patterns cannot describe.
var Bridge = &external.Bridge{
	Kinds: ExternalKinds,
	New: func() external.Scanner {
		return external.Ordered(matchStringContent, matchRawString, matchFloat, matchBlockComment)
	},
}

func matchStringContent(input []byte, valid []bool) int {
	// a float is never expected inside of a string literal
	if valid[FloatLiteral] {
		return 0
	}
	for i, b := range input {
		if b == '"' || b == '\\' {
			return i
		}
	}
	return len(input)
}

// matchRawString matches r#"..."# and br#"..."# with any number of hashes, including none.
func matchRawString(input []byte, _ []bool) int {
	i := 0
	if i < len(input) && input[i] == 'b' {
		i++
	}
	if i >= len(input) || input[i] != 'r' {
		return 0
	}
	i++

	hashes := 0
	for i < len(input) && input[i] == '#' {
		hashes++
		i++
	}
	if i >= len(input) || input[i] != '"' {
		return 0
	}
	i++

	for ; i < len(input); i++ {
		if input[i] != '"' {
			continue
		}
		n := 0
		for n < hashes && i+1+n < len(input) && input[i+1+n] == '#' {
			n++
		}
		if n == hashes {
			return i + 1 + n
		}
	}
	return 0
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func skipDigits(input []byte, i int) int {
	for i < len(input) && (isDigit(input[i]) || input[i] == '_') {
		i++
	}
	return i
}

func isIdentStart(input []byte) bool {
	if len(input) == 0 {
		return false
	}
	if input[0] == '_' {
		return true
	}
	r, _ := utf8.DecodeRune(input)
	return unicode.IsLetter(r)
}

// matchFloat matches a decimal literal only if it has a fraction, an exponent, or a float suffix.
// "1." is a float, "1..2" and "1.foo" are not.
func matchFloat(input []byte, _ []bool) int {
	if len(input) == 0 || !isDigit(input[0]) {
		return 0
	}
	i := skipDigits(input, 1)
	isFloat := false

	if i < len(input) && input[i] == '.' {
		next := input[i+1:]
		if len(next) > 0 && next[0] == '.' || isIdentStart(next) {
			return 0
		}
		isFloat = true
		i = skipDigits(input, i+1)
	}

	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		j := i + 1
		if j < len(input) && (input[j] == '+' || input[j] == '-') {
			j++
		}
		for j < len(input) && input[j] == '_' {
			j++
		}
		if j < len(input) && isDigit(input[j]) {
			i = skipDigits(input, j)
			isFloat = true
		}
	}

	if i+3 <= len(input) && input[i] == 'f' && (string(input[i:i+3]) == "f32" || string(input[i:i+3]) == "f64") {
		i += 3
		isFloat = true
	}

	if !isFloat {
		return 0
	}
	return i
}

// matchBlockComment matches nested block comments, unterminated comment is not matched.
func matchBlockComment(input []byte, _ []bool) int {
	if len(input) < 2 || input[0] != '/' || input[1] != '*' {
		return 0
	}
	depth := 1
	for i := 2; i+1 < len(input); i++ {
		switch {
		case input[i] == '/' && input[i+1] == '*':
			depth++
			i++
		case input[i] == '*' && input[i+1] == '/':
			depth--
			i++
			if depth == 0 {
				return i + 1
			}
		}
	}
	return 0
}
