// Package expr parses and evaluates a deliberately tiny arithmetic grammar.
//
// The node set is closed: numeric literals, unary +/- and seven binary
// operators. Identifiers, calls, subscripts and every other construct are
// rejected while lexing, so nothing outside plain arithmetic can ever reach
// evaluation.
package expr

import (
	"errors"
	"fmt"
)

// Node is an expression tree node. The interface is sealed to this package;
// the three concrete types below are the only implementations.
type Node interface {
	node()
}

// NumberLiteral is a decimal numeric literal.
type NumberLiteral struct {
	Value float64
}

// UnaryOp identifies a unary operator.
type UnaryOp int

const (
	OpPos UnaryOp = iota
	OpNeg
)

// UnaryExpr applies a unary operator to its operand.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Node
}

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
)

// BinaryExpr applies a binary operator to two operands.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

func (*NumberLiteral) node() {}
func (*UnaryExpr) node()     {}
func (*BinaryExpr) node()    {}

var (
	// ErrDivisionByZero reports a zero divisor for /, // or %.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUnsupportedExpression reports a node outside the closed set.
	ErrUnsupportedExpression = errors.New("unsupported expression")
)

// ParseError describes malformed or disallowed expression syntax.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}
