package compiler

// stack is a plain LIFO used for the three expression stacks.
type stack[T any] struct {
	items []T
}

func (s *stack[T]) push(v T) {
	s.items = append(s.items, v)
}

func (s *stack[T]) pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

func (s *stack[T]) top() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

func (s *stack[T]) len() int {
	return len(s.items)
}

// exprStacks keeps pending operands, their static types and pending operators.
// operands and types always have the same height.
type exprStacks struct {
	operands stack[Operand]
	types    stack[Type]
	ops      stack[OpCode]
}

func (s *exprStacks) pushOperand(o Operand, t Type) {
	s.operands.push(o)
	s.types.push(t)
}

func (s *exprStacks) popOperand() (Operand, Type, error) {
	o, ok := s.operands.pop()
	if !ok {
		return Operand{}, Invalid, newError(Internal, "operand stack underflow")
	}
	t, _ := s.types.pop()
	return o, t, nil
}

func (s *exprStacks) pushOperator(op OpCode) {
	s.ops.push(op)
}

// topOperator returns the pending operator, if any. A parenthesis marker is
// reported like any other operator so callers stop at it.
func (s *exprStacks) topOperator() (OpCode, bool) {
	return s.ops.top()
}

// popMark removes the marker pushed for "(" or a call argument.
func (s *exprStacks) popMark() error {
	op, ok := s.ops.pop()
	if !ok || op != OpMark {
		return newError(Internal, "parenthesis marker missing from operator stack")
	}
	return nil
}

// reduce pops one operator with its right and left operands, checks the
// combination, emits the quadruple into a fresh temporary and pushes that
// temporary back as the result of the sub-expression.
func (s *exprStacks) reduce(e *emitter, line int) error {
	op, ok := s.ops.pop()
	if !ok || op == OpMark {
		return newError(Internal, "no operator to reduce")
	}
	right, rt, err := s.popOperand()
	if err != nil {
		return err
	}
	left, lt, err := s.popOperand()
	if err != nil {
		return err
	}
	res, err := Check(lt, rt, op)
	if err != nil {
		return err
	}
	tmp := e.newTemp()
	e.emit(op, left, right, tmp, line)
	s.pushOperand(tmp, res)
	return nil
}

// reduceIf reduces the pending operator while it is one of ops.
func (s *exprStacks) reduceIf(e *emitter, line int, ops ...OpCode) error {
	for {
		top, ok := s.topOperator()
		if !ok || !containsOp(ops, top) {
			return nil
		}
		if err := s.reduce(e, line); err != nil {
			return err
		}
	}
}

// drained reports an Internal error unless all three stacks are empty.
func (s *exprStacks) drained() error {
	if s.operands.len() != 0 || s.types.len() != 0 || s.ops.len() != 0 {
		return newError(Internal, "expression stacks not empty at statement end (operands=%d types=%d operators=%d)",
			s.operands.len(), s.types.len(), s.ops.len())
	}
	return nil
}

func containsOp(ops []OpCode, op OpCode) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}
