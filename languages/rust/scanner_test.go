package rust

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type matchSample struct {
	src  string
	size int
}

func checkMatcher(t *testing.T, m func([]byte, []bool) int, valid []bool, samples []matchSample) {
	t.Helper()
	for _, s := range samples {
		assert.Equal(t, s.size, m([]byte(s.src), valid), "source: %q", s.src)
	}
}

func TestStringContent(t *testing.T) {
	valid := []bool{true, false, false, true}
	checkMatcher(t, matchStringContent, valid, []matchSample{
		{`abc"`, 3},
		{`ab\n"`, 2},
		{`"`, 0},
		{`\t`, 0},
		{`no end`, 6},
		{"multi\nline\"", 10},
	})

	valid[FloatLiteral] = true
	checkMatcher(t, matchStringContent, valid, []matchSample{{`abc"`, 0}})
}

func TestRawString(t *testing.T) {
	checkMatcher(t, matchRawString, nil, []matchSample{
		{`r"abc"`, 6},
		{`r#"a"b"#;`, 8},
		{`br##"a"#b"##`, 12},
		{`r#"abc";`, 0},
		{`r#abc`, 0},
		{`rust`, 0},
		{`b"abc"`, 0},
		{`r##"x"#`, 0},
	})
}

func TestFloat(t *testing.T) {
	checkMatcher(t, matchFloat, nil, []matchSample{
		{"1.5", 3},
		{"1_000.25_f64", 12},
		{"1. ", 2},
		{"2e10", 4},
		{"2.5E-3)", 6},
		{"3f32", 4},
		{"1..2", 0},
		{"1.max(2)", 0},
		{"1._x", 0},
		{"42", 0},
		{"42u8", 0},
		{"1e", 0},
		{"0x1f", 0},
		{".5", 0},
	})
}

func TestBlockComment(t *testing.T) {
	checkMatcher(t, matchBlockComment, nil, []matchSample{
		{"/**/", 4},
		{"/* a */ b", 7},
		{"/* a /* b */ c */ d", 17},
		{"/* a /* b */", 0},
		{"/*/", 0},
		{"// a", 0},
	})
}

func TestBridgeOrder(t *testing.T) {
	s := Bridge.New()
	valid := []bool{false, true, true, true}

	kind, size, ok := s.Scan([]byte("1.5;"), valid)
	assert.True(t, ok)
	assert.Equal(t, FloatLiteral, kind)
	assert.Equal(t, 3, size)

	kind, size, ok = s.Scan([]byte(`r"x" /* */`), valid)
	assert.True(t, ok)
	assert.Equal(t, RawStringLiteral, kind)
	assert.Equal(t, 4, size)

	_, _, ok = s.Scan([]byte("1.5"), []bool{false, true, false, true})
	assert.False(t, ok)
}
