// Package cpp is a small C preprocessor working on the token stream of
// internal/lexer. It understands #define and #undef (object-like and
// function-like macros, '#' and '##'), the conditional directives and
// #error/#warning. #include and #pragma are recorded but not followed:
// GLib declarations come from the built-in prelude instead.
//
// Tokens produced by macro expansion carry the span of the invocation, so
// diagnostics point at the place the macro was used.
package cpp
