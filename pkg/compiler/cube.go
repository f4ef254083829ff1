package compiler

// Check returns the result type of applying op to left and right, or a
// TypeMismatch error when the combination is not allowed. For OpAssign, left
// is the target variable and right the value being stored.
//
//	entero   op entero   -> entero   (arithmetic, "/" included), booleano (relational)
//	entero   op flotante -> flotante (arithmetic), booleano (relational)
//	flotante op any num  -> flotante (arithmetic), booleano (relational)
//	entero   = entero    -> entero
//	flotante = entero    -> flotante
//	flotante = flotante  -> flotante
//	entero   = flotante  -> error
//
// Anything involving booleano, nula, letrero or error is rejected.
func Check(left, right Type, op OpCode) (Type, error) {
	if res := cube(left, right, op); res != Invalid {
		return res, nil
	}
	return Invalid, newError(TypeMismatch, "cannot apply %s to %s and %s", op, left, right)
}

func cube(left, right Type, op OpCode) Type {
	if !isNumeric(left) || !isNumeric(right) {
		return Invalid
	}
	switch {
	case op.isArithmetic():
		if left == Int && right == Int {
			return Int
		}
		return Float
	case op.isRelational():
		return Bool
	case op == OpAssign:
		if left == Int && right == Float {
			return Invalid
		}
		return left
	}
	return Invalid
}

func isNumeric(t Type) bool {
	return t == Int || t == Float
}
