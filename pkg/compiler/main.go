// Package compiler is the one-pass front end of the Patito language: a
// scanner, a two-level symbol directory, the semantic cube and an
// expression-stack translator that emits quadruples while parsing.
//
// Pipeline: Patito source → Lexer → Parser (+ Directory, Check) → quadruples
package compiler
