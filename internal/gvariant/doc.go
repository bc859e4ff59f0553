// Package gvariant checks GVariant format strings against the arguments
// passed alongside them.
//
// A call such as
//
//	g_variant_get (v, "(s&s)", &owned, &borrowed);
//
// carries a small type grammar in its literal format argument. The checker
// walks that grammar and the call's variadic arguments in lockstep and
// reports the first place where the two disagree, then every argument left
// over once the format string is exhausted.
//
// The package does not parse C. Callers describe a call with Call and Arg
// values (see internal/parser) and receive Reports through a Sink.
package gvariant
