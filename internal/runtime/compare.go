package runtime

// Comparator is the selector a comparison expression carries: one of the
// six functions below.
type Comparator func(lhs, rhs ObjectHolder, ctx Context) (bool, error)

// Equal compares primitives of the same type by natural equality, treats
// two empty handles as equal, and otherwise defers to the left operand's
// __eq__ when defined with arity 1. The dunder must produce a Bool.
func Equal(lhs, rhs ObjectHolder, ctx Context) (bool, error) {
	if l, ok := lhs.Get().(*Number); ok {
		if r, ok := rhs.Get().(*Number); ok {
			return l.Value == r.Value, nil
		}
	}
	if l, ok := lhs.Get().(*String); ok {
		if r, ok := rhs.Get().(*String); ok {
			return l.Value == r.Value, nil
		}
	}
	if l, ok := lhs.Get().(*Bool); ok {
		if r, ok := rhs.Get().(*Bool); ok {
			return l.Value == r.Value, nil
		}
	}
	if inst, ok := lhs.Get().(*ClassInstance); ok && inst.HasMethod(eqMethod, 1) {
		return callComparisonMethod(inst, eqMethod, rhs, ctx)
	}
	if !lhs.Valid() && !rhs.Valid() {
		return true, nil
	}
	return false, NewError("cannot compare objects for equality")
}

// Less compares primitives of the same type by natural ordering (for Bool,
// False sorts before True) and otherwise defers to the left operand's
// __lt__ when defined with arity 1.
func Less(lhs, rhs ObjectHolder, ctx Context) (bool, error) {
	if l, ok := lhs.Get().(*Number); ok {
		if r, ok := rhs.Get().(*Number); ok {
			return l.Value < r.Value, nil
		}
	}
	if l, ok := lhs.Get().(*String); ok {
		if r, ok := rhs.Get().(*String); ok {
			return l.Value < r.Value, nil
		}
	}
	if l, ok := lhs.Get().(*Bool); ok {
		if r, ok := rhs.Get().(*Bool); ok {
			return !l.Value && r.Value, nil
		}
	}
	if inst, ok := lhs.Get().(*ClassInstance); ok && inst.HasMethod(ltMethod, 1) {
		return callComparisonMethod(inst, ltMethod, rhs, ctx)
	}
	return false, NewError("cannot compare objects for less")
}

func NotEqual(lhs, rhs ObjectHolder, ctx Context) (bool, error) {
	eq, err := Equal(lhs, rhs, ctx)
	if err != nil {
		return false, err
	}
	return !eq, nil
}

func Greater(lhs, rhs ObjectHolder, ctx Context) (bool, error) {
	less, err := Less(lhs, rhs, ctx)
	if err != nil {
		return false, err
	}
	eq, err := Equal(lhs, rhs, ctx)
	if err != nil {
		return false, err
	}
	return !(less || eq), nil
}

func LessOrEqual(lhs, rhs ObjectHolder, ctx Context) (bool, error) {
	greater, err := Greater(lhs, rhs, ctx)
	if err != nil {
		return false, err
	}
	return !greater, nil
}

func GreaterOrEqual(lhs, rhs ObjectHolder, ctx Context) (bool, error) {
	less, err := Less(lhs, rhs, ctx)
	if err != nil {
		return false, err
	}
	return !less, nil
}

func callComparisonMethod(inst *ClassInstance, method string, rhs ObjectHolder, ctx Context) (bool, error) {
	result, err := inst.Call(method, []ObjectHolder{rhs}, ctx)
	if err != nil {
		return false, err
	}
	b, ok := result.Get().(*Bool)
	if !ok {
		return false, NewError("%s must return Bool", method)
	}
	return b.Value, nil
}
