// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"math"

	"carvel.dev/liquid/pkg/template/core"
)

type mathFilters struct{}

func (b mathFilters) register(t *Table) {
	t.Register("plus", b.binary("+"))
	t.Register("minus", b.binary("-"))
	t.Register("times", b.binary("*"))
	t.Register("divided_by", b.binary("/"))
	t.Register("modulo", b.binary("%"))
	t.Register("at_least", b.bound(func(cmp int) bool { return cmp < 0 }))
	t.Register("at_most", b.bound(func(cmp int) bool { return cmp > 0 }))
	t.Register("abs", b.Abs)
	t.Register("ceil", b.rounding(math.Ceil))
	t.Register("floor", b.rounding(math.Floor))
	t.Register("round", b.Round)
}

// binary keeps integer arithmetic when both sides are integers and switches
// to floats otherwise. Integer division floors.
func (mathFilters) binary(op string) Func {
	return func(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
		if err := expectArgs(args, 1, 1); err != nil {
			return nil, err
		}
		left, err := core.ToNumber(val)
		if err != nil {
			return nil, fmt.Errorf("%s", msgOf(err))
		}
		right, err := numberArg(args, 0)
		if err != nil {
			return nil, err
		}

		leftInt, leftIsInt := left.(core.Int)
		rightInt, rightIsInt := right.(core.Int)

		if leftIsInt && rightIsInt {
			switch op {
			case "+":
				return leftInt + rightInt, nil
			case "-":
				return leftInt - rightInt, nil
			case "*":
				return leftInt * rightInt, nil
			case "/":
				if rightInt == 0 {
					return nil, fmt.Errorf("divided by 0")
				}
				return core.Int(math.Floor(float64(leftInt) / float64(rightInt))), nil
			case "%":
				if rightInt == 0 {
					return nil, fmt.Errorf("divided by 0")
				}
				result := leftInt % rightInt
				if result != 0 && (result < 0) != (rightInt < 0) {
					result += rightInt
				}
				return result, nil
			}
		}

		leftFloat, rightFloat := toFloat(left), toFloat(right)

		switch op {
		case "+":
			return core.Float(leftFloat + rightFloat), nil
		case "-":
			return core.Float(leftFloat - rightFloat), nil
		case "*":
			return core.Float(leftFloat * rightFloat), nil
		case "/":
			if rightFloat == 0 {
				return nil, fmt.Errorf("divided by 0")
			}
			return core.Float(leftFloat / rightFloat), nil
		case "%":
			if rightFloat == 0 {
				return nil, fmt.Errorf("divided by 0")
			}
			return core.Float(math.Mod(leftFloat, rightFloat)), nil
		default:
			panic(fmt.Sprintf("Unknown operator '%s'", op))
		}
	}
}

func (mathFilters) bound(replace func(cmp int) bool) Func {
	return func(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
		if err := expectArgs(args, 1, 1); err != nil {
			return nil, err
		}
		num, err := core.ToNumber(val)
		if err != nil {
			return nil, fmt.Errorf("%s", msgOf(err))
		}
		limit, err := numberArg(args, 0)
		if err != nil {
			return nil, err
		}
		cmp, err := core.Compare(num, limit)
		if err != nil {
			return nil, err
		}
		if replace(cmp) {
			return limit, nil
		}
		return num, nil
	}
}

func (mathFilters) Abs(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	num, err := core.ToNumber(val)
	if err != nil {
		return nil, fmt.Errorf("%s", msgOf(err))
	}
	switch typedNum := num.(type) {
	case core.Int:
		if typedNum < 0 {
			return -typedNum, nil
		}
		return typedNum, nil
	default:
		return core.Float(math.Abs(toFloat(num))), nil
	}
}

func (mathFilters) rounding(fn func(float64) float64) Func {
	return func(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
		if err := expectArgs(args, 0, 0); err != nil {
			return nil, err
		}
		num, err := core.ToNumber(val)
		if err != nil {
			return nil, fmt.Errorf("%s", msgOf(err))
		}
		return core.Int(fn(toFloat(num))), nil
	}
}

// Round returns an integer without a precision argument and a float with one.
func (mathFilters) Round(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 1); err != nil {
		return nil, err
	}
	num, err := core.ToNumber(val)
	if err != nil {
		return nil, fmt.Errorf("%s", msgOf(err))
	}
	digits, err := intArg(args, 0, 0)
	if err != nil {
		return nil, err
	}
	if digits <= 0 {
		return core.Int(math.Round(toFloat(num))), nil
	}
	scale := math.Pow(10, float64(digits))
	return core.Float(math.Round(toFloat(num)*scale) / scale), nil
}

func toFloat(val core.Value) float64 {
	switch typedVal := val.(type) {
	case core.Int:
		return float64(typedVal)
	case core.Float:
		return float64(typedVal)
	default:
		return 0
	}
}
