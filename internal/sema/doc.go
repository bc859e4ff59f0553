// Package sema types C expressions for the parser. It works on Operand
// summaries rather than on a tree: each operation takes the operands of
// its children and returns the operand of the result, folding integer
// constant expressions on the way.
//
// The rules follow C11: lvalue conversion, array and function decay, the
// integer promotions, the usual arithmetic conversions and the default
// argument promotions. Typedef sugar is kept whenever no conversion
// changes the type, so diagnostics can name 'gint64' rather than 'long'.
package sema
