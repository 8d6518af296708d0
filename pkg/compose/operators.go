package compose

import "strings"

// Operator is a comparison a selector applies to its target column.
type Operator string

const (
	OpEquals  Operator = "equals"
	OpIn      Operator = "in"
	OpBetween Operator = "between"
	OpLike    Operator = "like"
	OpGt      Operator = "gt"
	OpGte     Operator = "gte"
	OpLt      Operator = "lt"
	OpLte     Operator = "lte"
)

// Arity is the value shape an operator consumes.
type Arity int

const (
	ArityScalar Arity = iota
	ArityList
	ArityRange
)

func (a Arity) String() string {
	switch a {
	case ArityList:
		return "list"
	case ArityRange:
		return "range"
	default:
		return "scalar"
	}
}

type operatorInfo struct {
	arity      Arity
	comparator string
}

var operatorTable = map[Operator]operatorInfo{
	OpEquals:  {ArityScalar, "="},
	OpIn:      {ArityList, "IN"},
	OpBetween: {ArityRange, "BETWEEN"},
	OpLike:    {ArityScalar, "LIKE"},
	OpGt:      {ArityScalar, ">"},
	OpGte:     {ArityScalar, ">="},
	OpLt:      {ArityScalar, "<"},
	OpLte:     {ArityScalar, "<="},
}

// operatorOrder keeps catalog listings stable.
var operatorOrder = []Operator{OpEquals, OpIn, OpBetween, OpLike, OpGt, OpGte, OpLt, OpLte}

// ResolveOperator parses s into a known operator.
func ResolveOperator(s string) (Operator, bool) {
	op := Operator(strings.ToLower(strings.TrimSpace(s)))
	_, ok := operatorTable[op]
	return op, ok
}

func (op Operator) Valid() bool {
	_, ok := operatorTable[op]
	return ok
}

func (op Operator) Arity() Arity {
	return operatorTable[op].arity
}

// Operators returns the catalog in a stable order.
func Operators() []Operator {
	return append([]Operator(nil), operatorOrder...)
}

// SelectorType classifies the UI control a selector renders as.
type SelectorType string

const (
	SelectorDropdown    SelectorType = "dropdown"
	SelectorMultiSelect SelectorType = "multi_select"
	SelectorDateRange   SelectorType = "date_range"
	SelectorSingleDate  SelectorType = "single_date"
	SelectorText        SelectorType = "text"
)

var selectorTypes = map[SelectorType]struct{}{
	SelectorDropdown:    {},
	SelectorMultiSelect: {},
	SelectorDateRange:   {},
	SelectorSingleDate:  {},
	SelectorText:        {},
}

// ResolveSelectorType parses s into a known selector type.
func ResolveSelectorType(s string) (SelectorType, bool) {
	t := SelectorType(strings.ToLower(strings.TrimSpace(s)))
	_, ok := selectorTypes[t]
	return t, ok
}

func (t SelectorType) Valid() bool {
	_, ok := selectorTypes[t]
	return ok
}

// IsDate reports whether values of this type carry dates.
func (t SelectorType) IsDate() bool {
	return t == SelectorDateRange || t == SelectorSingleDate
}

// HasOptions reports whether the selector offers a list of choices.
func (t SelectorType) HasOptions() bool {
	return t == SelectorDropdown || t == SelectorMultiSelect
}

func (t SelectorType) arity() Arity {
	switch t {
	case SelectorMultiSelect:
		return ArityList
	case SelectorDateRange:
		return ArityRange
	default:
		return ArityScalar
	}
}

// DefaultOperator returns the operator a selector of this type starts with.
func (t SelectorType) DefaultOperator() Operator {
	switch t {
	case SelectorMultiSelect:
		return OpIn
	case SelectorDateRange:
		return OpBetween
	case SelectorText:
		return OpLike
	default:
		return OpEquals
	}
}

// AllowsOperator reports whether op's value shape fits values of this type.
func (t SelectorType) AllowsOperator(op Operator) bool {
	return op.Valid() && op.Arity() == t.arity()
}
