package expr

import "math"

// Evaluate walks the tree and computes its numeric value. Any node outside
// the closed set fails with ErrUnsupportedExpression; there is no dynamic or
// reflective path by which anything else can run.
func Evaluate(n Node) (float64, error) {
	switch n := n.(type) {
	case *NumberLiteral:
		return n.Value, nil
	case *UnaryExpr:
		v, err := Evaluate(n.Operand)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case OpPos:
			return v, nil
		case OpNeg:
			return -v, nil
		}
		return 0, ErrUnsupportedExpression
	case *BinaryExpr:
		left, err := Evaluate(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := Evaluate(n.Right)
		if err != nil {
			return 0, err
		}
		return applyBinary(n.Op, left, right)
	default:
		return 0, ErrUnsupportedExpression
	}
}

func applyBinary(op BinaryOp, left, right float64) (float64, error) {
	switch op {
	case OpAdd:
		return left + right, nil
	case OpSub:
		return left - right, nil
	case OpMul:
		return left * right, nil
	case OpDiv:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left / right, nil
	case OpFloorDiv:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return math.Floor(left / right), nil
	case OpMod:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return floorMod(left, right), nil
	case OpPow:
		return math.Pow(left, right), nil
	default:
		return 0, ErrUnsupportedExpression
	}
}

// floorMod keeps the identity a == (a//b)*b + a%b: the result carries the
// divisor's sign, unlike math.Mod which truncates toward zero.
func floorMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
