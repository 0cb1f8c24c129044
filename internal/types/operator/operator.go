package operator

import (
	"fmt"
	"strings"
)

// Operator is the comparison a filter token applies to a column.
type Operator string

const (
	Eq  Operator = "eq"
	Ne  Operator = "ne"
	Lt  Operator = "lt"
	Lte Operator = "lte"
	Gt  Operator = "gt"
	Gte Operator = "gte"
	// Match is a case-insensitive substring match.
	Match Operator = "match"
)

const Default = Eq

func Parse(s string) (Operator, error) {
	if s == "" {
		return Default, nil
	}

	op := Operator(strings.ToLower(s))
	switch op {
	case Eq, Ne, Lt, Lte, Gt, Gte, Match:
		return op, nil
	default:
		return "", fmt.Errorf("invalid operator: %s", s)
	}
}

// Split detects the operator marker of a raw filter value and returns the
// operator together with the value stripped of its marker. Markers are checked
// in order: "!", "<=", ">=", "<", ">", then a leading or trailing "%".
func Split(raw string) (Operator, string) {
	v := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(v, "!"):
		return Ne, v[1:]
	case strings.HasPrefix(v, "<="):
		return Lte, v[2:]
	case strings.HasPrefix(v, ">="):
		return Gte, v[2:]
	case strings.HasPrefix(v, "<"):
		return Lt, v[1:]
	case strings.HasPrefix(v, ">"):
		return Gt, v[1:]
	case strings.HasPrefix(v, "%") || strings.HasSuffix(v, "%"):
		return Match, strings.Trim(v, "%")
	default:
		return Eq, v
	}
}

func (o Operator) String() string {
	return string(o)
}

// RemotePrefix is the marker the remote collection protocol expects in front of a value.
func (o Operator) RemotePrefix() string {
	switch o {
	case Ne:
		return "ne/"
	case Lt:
		return "lt/"
	case Lte:
		return "lte/"
	case Gt:
		return "gt/"
	case Gte:
		return "gte/"
	case Match:
		return "m/"
	default:
		return ""
	}
}

// SQL returns the relational comparison for the operator.
func (o Operator) SQL() string {
	switch o {
	case Ne:
		return "<>"
	case Lt:
		return "<"
	case Lte:
		return "<="
	case Gt:
		return ">"
	case Gte:
		return ">="
	case Match:
		return "ILIKE"
	default:
		return "="
	}
}

func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Operator) UnmarshalText(text []byte) error {
	op, err := Parse(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
