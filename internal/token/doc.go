// Package token defines lexical token kinds and trivia for the C subset
// accepted by tartan.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End), except for tokens
//     produced by macro expansion, which carry the invocation span.
//   - Preprocessor lines (#define, #include, ...) are represented as leading
//     Trivia (TriviaDirective) and never appear in the main token stream.
//   - Typedef names (gint, gchar, GVariant, ...) are identifiers.
//     They are recognized by the front end, not the lexer.
package token
