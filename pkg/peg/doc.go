// Package peg implements a backtracking parsing expression grammar runtime.
//
// Parsers are composed from [Expression] values: primitives such as [Literal],
// [Class] and [Advance], and combinators such as [Sequence], [Choice] and
// [ZeroOrMore]. Named rules live in a [RuleTable] built by a [Builder]; rule
// references are lazy cells, so rules may refer to each other before they are
// defined.
//
// Every expression obeys one contract: on failure it returns the cursor it was
// given, and the [Scope] of named captures it produced is dropped. Scopes are
// persistent, so a failed alternative can never leak captures into a sibling.
//
// A RuleTable is immutable once built and may be shared by concurrent parses.
// Each parse owns its own [Input].
package peg
