/*
Package langdef compiles grammar.Grammar into grammar.Table.

Compilation is a chain of passes, each pass runs only if previous passes succeeded:

  - rule index and side tables check: duplicate rules, unknown names in inline, supertypes,
    conflicts, and word tables, externals that are also defined as rules;
  - expressions check: undefined references, empty literals and names, incorrect regexps;
  - terms: external tokens, token rules (rules whose body is a pattern or a token expression),
    extras and the word token;
  - flattening: every rule becomes a list of productions. Choices and optionals are expanded,
    repetitions become hidden left-recursive auxiliary nonterminals (named "rule~N"),
    aliases of complex expressions become aliased auxiliary nonterminals.
    Each step keeps its field name, alias, precedence and associativity, a field bound to nothing
    becomes a placeholder step. Production precedence and associativity are taken from the last step,
    dynamic precedences are summed;
  - keywords: literals matching the word token are marked as keywords;
  - reachability, termination (every reachable rule has a base case), cycles without input,
    and repetitions of expressions matching empty input;
  - operator conflicts: a right-open production (ending with a nonterminal) competes with
    a left-open production (starting with a nonterminal) when each of them can be the open child
    of the other through unit derivations. Higher precedence wins, equal precedence is decided
    by associativity of the right-open production, no associativity leaves the pair unresolved;
  - shape conflicts: two rules offered as alternatives of the same nonterminal that derive
    the same short token sequence (see Options.ShapeDepth). Different precedence resolves the pair;
  - conflict plan: unresolved pairs whose rules are declared together in grammar conflicts are kept
    for the parser to decide at run time, other unresolved pairs fail compilation with
    UndeclaredConflictError naming both rules and both productions;
  - shape tables: field names of every named node kind, including fields inherited from hidden
    rules, and concrete kinds of every supertype.

Compilation is deterministic: compiling the same grammar twice yields identical tables.
*/
package langdef
