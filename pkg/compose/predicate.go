package compose

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dashlite/dashlite/pkg/errors"
)

// Range is the two-endpoint value consumed by the between operator.
type Range struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// IsActiveValue reports whether a raw filter value takes part in composition.
// Null values, empty strings and empty lists are inactive.
func IsActiveValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	}
	return true
}

// BuildPredicate renders a single boolean SQL fragment for op applied to
// column (qualified by table when given) and value. The value's shape must
// match the operator's arity.
func BuildPredicate(op Operator, column, table string, value any) (string, error) {
	info, ok := operatorTable[op]
	if !ok {
		return "", fmt.Errorf("unknown operator %q", op)
	}

	target := column
	if table != "" {
		target = table + "." + column
	}

	switch info.arity {
	case ArityList:
		items, err := toList(op, value)
		if err != nil {
			return "", err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			lit, err := renderScalar(op, item)
			if err != nil {
				return "", err
			}
			parts = append(parts, lit)
		}
		return fmt.Sprintf("%s IN (%s)", target, strings.Join(parts, ", ")), nil
	case ArityRange:
		from, to, err := toRange(op, value)
		if err != nil {
			return "", err
		}
		fromLit, err := renderScalar(op, from)
		if err != nil {
			return "", err
		}
		toLit, err := renderScalar(op, to)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", target, fromLit, toLit), nil
	default:
		if op == OpLike {
			s, ok := value.(string)
			if !ok {
				return "", errors.NewInvalidValueShapeError(string(op), "value must be a string")
			}
			return target + " LIKE " + likePattern(s) + ` ESCAPE '\'`, nil
		}
		lit, err := renderScalar(op, value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", target, info.comparator, lit), nil
	}
}

// NormalizeValue prepares a raw filter value for predicate building. Values
// of date selectors arrive as ISO date or RFC 3339 strings and are converted
// to time.Time so the builder renders them in DATE form. Values of other
// selector types pass through untouched.
func NormalizeValue(t SelectorType, op Operator, value any) (any, error) {
	if !t.IsDate() {
		return value, nil
	}
	switch v := value.(type) {
	case string:
		d, err := parseDate(op, v)
		if err != nil {
			return nil, err
		}
		return d, nil
	case Range:
		return normalizeRangeEndpoints(op, v.From, v.To)
	case map[string]any:
		return normalizeRangeEndpoints(op, v["from"], v["to"])
	default:
		return value, nil
	}
}

func normalizeRangeEndpoints(op Operator, from, to any) (any, error) {
	r := Range{From: from, To: to}
	if s, ok := from.(string); ok {
		d, err := parseDate(op, s)
		if err != nil {
			return nil, err
		}
		r.From = d
	}
	if s, ok := to.(string); ok {
		d, err := parseDate(op, s)
		if err != nil {
			return nil, err
		}
		r.To = d
	}
	return r, nil
}

func parseDate(op Operator, s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d, nil
	}
	return time.Time{}, errors.NewInvalidValueShapeError(string(op), fmt.Sprintf("cannot parse %q as a date", s))
}

func renderScalar(op Operator, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", errors.NewInvalidValueShapeError(string(op), "value is missing")
	case string:
		return quoteString(v), nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case time.Time:
		return "'" + v.Format("2006-01-02") + "'", nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", errors.NewInvalidValueShapeError(string(op), fmt.Sprintf("expected a scalar, got %T", value))
	}
}

func toList(op Operator, value any) ([]any, error) {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	case []int:
		items = make([]any, len(v))
		for i, n := range v {
			items[i] = n
		}
	case []float64:
		items = make([]any, len(v))
		for i, n := range v {
			items[i] = n
		}
	default:
		return nil, errors.NewInvalidValueShapeError(string(op), fmt.Sprintf("expected a list, got %T", value))
	}
	if len(items) == 0 {
		return nil, errors.NewInvalidValueShapeError(string(op), "list is empty")
	}
	return items, nil
}

func toRange(op Operator, value any) (any, any, error) {
	var from, to any
	switch v := value.(type) {
	case Range:
		from, to = v.From, v.To
	case *Range:
		from, to = v.From, v.To
	case map[string]any:
		from, to = v["from"], v["to"]
	default:
		return nil, nil, errors.NewInvalidValueShapeError(string(op), fmt.Sprintf("expected a {from, to} range, got %T", value))
	}
	if from == nil {
		return nil, nil, errors.NewInvalidValueShapeError(string(op), `missing "from" endpoint`)
	}
	if to == nil {
		return nil, nil, errors.NewInvalidValueShapeError(string(op), `missing "to" endpoint`)
	}
	return from, to, nil
}

func quoteString(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func likePattern(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "%", `\%`)
	v = strings.ReplaceAll(v, "_", `\_`)
	v = strings.ReplaceAll(v, "'", "''")
	return "'%" + v + "%'"
}
