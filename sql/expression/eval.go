package expression

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gosqlmapper/sqlmapper/errs"
)

func undefinedNameError(path string) error {
	return errs.ExpressionError.New(fmt.Sprintf("undefined name %q", path))
}

func unsupportedOperatorError(op string) error {
	return errs.ExpressionError.New(fmt.Sprintf("unsupported operator %q", op))
}

// Evaluate evaluates expr against env and returns its raw value. Use this
// for `bind`'s value expression; for `if`/`choose` truth tests use
// EvaluateBoolean instead, which applies the §4.1 root-undefined rule.
func Evaluate(expr Expr, env *Environment) (any, error) {
	return expr.eval(env, false)
}

// EvaluateBoolean implements the §4.1 truth test: a bare identifier that is
// missing evaluates to false (not an error), otherwise standard
// truthiness applies.
func EvaluateBoolean(expr Expr, env *Environment) (bool, error) {
	v, err := expr.eval(env, true)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// truthy implements §4.1's truthiness rule: non-null, non-empty-string,
// non-empty-sequence, non-zero-number, or the bool true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Ptr:
		return !rv.IsNil()
	}
	return true
}

func negate(v any) (any, error) {
	switch n := v.(type) {
	case int64:
		return -n, nil
	case int:
		return -int64(n), nil
	case float64:
		return -n, nil
	}
	return nil, errs.ExpressionError.New(fmt.Sprintf("cannot negate %T", v))
}

func isString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func applyBinary(op string, lv, rv any) (any, error) {
	switch op {
	case "+":
		if ls, ok := isString(lv); ok {
			return ls + stringify(rv), nil
		}
		if rs, ok := isString(rv); ok {
			return stringify(lv) + rs, nil
		}
		return arith(op, lv, rv)
	case "-", "*", "/", "%":
		return arith(op, lv, rv)
	case "<", "<=", ">", ">=":
		return relational(op, lv, rv)
	case "==", "!=":
		eq := looseEqual(lv, rv)
		if op == "!=" {
			return !eq, nil
		}
		return eq, nil
	case "===", "!==":
		eq := strictEqual(lv, rv)
		if op == "!==" {
			return !eq, nil
		}
		return eq, nil
	}
	return nil, unsupportedOperatorError(op)
}

func arith(op string, lv, rv any) (any, error) {
	lf, lok := toFloat(lv)
	rf, rok := toFloat(rv)
	if !lok || !rok {
		return nil, errs.ExpressionError.New(fmt.Sprintf("cannot apply %q to %T and %T", op, lv, rv))
	}
	_, lInt := lv.(int64)
	_, rInt := rv.(int64)
	integral := lInt && rInt

	var result float64
	switch op {
	case "+":
		result = lf + rf
	case "-":
		result = lf - rf
	case "*":
		result = lf * rf
	case "/":
		if rf == 0 {
			return nil, errs.ExpressionError.New("division by zero")
		}
		result = lf / rf
		integral = false
	case "%":
		if rf == 0 {
			return nil, errs.ExpressionError.New("modulo by zero")
		}
		result = float64(int64(lf) % int64(rf))
	}
	if integral {
		return int64(result), nil
	}
	return result, nil
}

func relational(op string, lv, rv any) (any, error) {
	if ls, lok := isString(lv); lok {
		if rs, rok := isString(rv); rok {
			switch op {
			case "<":
				return ls < rs, nil
			case "<=":
				return ls <= rs, nil
			case ">":
				return ls > rs, nil
			case ">=":
				return ls >= rs, nil
			}
		}
	}
	lf, lok := toFloat(lv)
	rf, rok := toFloat(rv)
	if !lok || !rok {
		return nil, errs.ExpressionError.New(fmt.Sprintf("cannot compare %T and %T", lv, rv))
	}
	switch op {
	case "<":
		return lf < rf, nil
	case "<=":
		return lf <= rf, nil
	case ">":
		return lf > rf, nil
	case ">=":
		return lf >= rf, nil
	}
	return nil, unsupportedOperatorError(op)
}

func strictEqual(lv, rv any) bool {
	if reflect.TypeOf(lv) != reflect.TypeOf(rv) {
		return false
	}
	return looseEqual(lv, rv)
}

func looseEqual(lv, rv any) bool {
	if lv == nil || rv == nil {
		return lv == nil && rv == nil
	}
	// A number equals a string holding the same numeric value.
	numeric := func(v any) (float64, bool) {
		s, ok := isString(v)
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	lf, lok := toFloat(lv)
	rf, rok := toFloat(rv)
	switch {
	case lok && rok:
		return lf == rf
	case lok:
		if n, ok := numeric(rv); ok {
			return lf == n
		}
	case rok:
		if n, ok := numeric(lv); ok {
			return n == rf
		}
	}
	return reflect.DeepEqual(lv, rv)
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return fmt.Sprintf("%v", v)
}
