package langdef

import (
	"strings"

	"github.com/ava12/cstx"
)

// Error codes used by langdef:
const (
	NoRulesError = cstx.GrammarErrors + iota
	DuplicateRuleError
	StartRuleError
	UndefinedRuleError
	UnknownRuleError
	EmptyLiteralError
	EmptyNameError
	WrongRegexpError
	EmptyTokenError
	WrongTokenError
	ExternalError
	ExtraError
	WordRuleError
	NonTerminatingError
	CyclicRuleError
	EmptyRepeatError
	SupertypeError
	UndeclaredConflictError
)

func noRulesError(name string) *cstx.Error {
	return cstx.FormatError(NoRulesError, "grammar %q has no rules", name)
}

func duplicateRuleError(name string) *cstx.Error {
	return cstx.FormatError(DuplicateRuleError, "rule %q already defined", name)
}

func startRuleError(name string) *cstx.Error {
	return cstx.FormatError(StartRuleError, "start rule %q must not be a token", name)
}

func undefinedRuleError(refs []string) *cstx.Error {
	return cstx.FormatError(UndefinedRuleError, "undefined rules: %s", strings.Join(refs, ", "))
}

func unknownRuleError(table string, names []string) *cstx.Error {
	return cstx.FormatError(UnknownRuleError, "unknown rules in %s: %s", table, strings.Join(names, ", "))
}

func emptyLiteralError(rule string) *cstx.Error {
	return cstx.FormatError(EmptyLiteralError, "empty literal in rule %q", rule)
}

func emptyNameError(rule string, t string) *cstx.Error {
	return cstx.FormatError(EmptyNameError, "empty %s name in rule %q", t, rule)
}

func regexpError(rule, re string, e error) *cstx.Error {
	return cstx.FormatError(WrongRegexpError, "incorrect regexp /%s/ in rule %q (%s)", re, rule, e.Error())
}

func emptyTokenError(rule, re string) *cstx.Error {
	return cstx.FormatError(EmptyTokenError, "token /%s/ in rule %q matches empty string", re, rule)
}

func wrongTokenError(rule, expr string) *cstx.Error {
	return cstx.FormatError(WrongTokenError, "cannot use %s inside token in rule %q", expr, rule)
}

func externalError(name, msg string) *cstx.Error {
	return cstx.FormatError(ExternalError, "external token %q %s", name, msg)
}

func extraError(expr string) *cstx.Error {
	return cstx.FormatError(ExtraError, "extra %s is not a token", expr)
}

func wordRuleError(name string) *cstx.Error {
	return cstx.FormatError(WordRuleError, "word rule %q must be a token rule", name)
}

func nonTerminatingError(names []string) *cstx.Error {
	return cstx.FormatError(NonTerminatingError, "rules have no base case: %s", strings.Join(names, ", "))
}

func cyclicRuleError(names []string) *cstx.Error {
	return cstx.FormatError(CyclicRuleError, "rules derive themselves without consuming input: %s", strings.Join(names, ", "))
}

func emptyRepeatError(rule string) *cstx.Error {
	return cstx.FormatError(EmptyRepeatError, "repeated expression in rule %q matches empty input", rule)
}

func supertypeError(name string) *cstx.Error {
	return cstx.FormatError(SupertypeError, "supertype %q alternatives must be single symbols", name)
}

func undeclaredConflictError(conflicts []string) *cstx.Error {
	return cstx.FormatError(UndeclaredConflictError, "undeclared conflicts: %s", strings.Join(conflicts, "; "))
}
