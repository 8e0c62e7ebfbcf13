// Package ast defines the syntactic entities of spec §3.1: the immutable
// tree the Parser (internal/parser) builds from a token stream and the
// Compiler (internal/bytecode) and Syntax classifier (internal/syntax)
// consume.
//
// The Script/Sentence/Word tree is a different shape from an expression
// AST, but the node conventions — a shared Node interface exposing
// String/Pos, with String() doubling as the debug/test
// representation — are carried over from
// github.com/cwbudde/go-dws/internal/ast.
package ast
