// Package cardinality checks an element's children and attributes against
// declarative rules: which children may appear and how often, and which
// attributes are required, optional or profiled out.
package cardinality

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Occurs is a minOccurs or maxOccurs value. The zero value is the XML
// Schema default of 1.
type Occurs struct {
	n         int
	set       bool
	unbounded bool
}

// Unbounded is the maxOccurs="unbounded" sentinel.
var Unbounded = Occurs{set: true, unbounded: true}

// Times is an explicit occurrence count.
func Times(n int) Occurs {
	return Occurs{n: n, set: true}
}

// IsUnbounded reports whether o has no upper limit.
func (o Occurs) IsUnbounded() bool { return o.unbounded }

// Value returns the count, applying the default of 1. It is meaningless for
// Unbounded.
func (o Occurs) Value() int {
	if !o.set {
		return 1
	}
	return o.n
}

// Allows reports whether count does not exceed o when o is used as a maximum.
func (o Occurs) Allows(count int) bool {
	return o.unbounded || count <= o.Value()
}

func (o Occurs) String() string {
	if o.unbounded {
		return "unbounded"
	}
	return strconv.Itoa(o.Value())
}

func (o Occurs) MarshalJSON() ([]byte, error) {
	if o.unbounded {
		return []byte(`"unbounded"`), nil
	}
	return []byte(strconv.Itoa(o.Value())), nil
}

// UnmarshalJSON accepts a non-negative number or the string "unbounded".
func (o *Occurs) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if strings.EqualFold(s, "unbounded") {
			*o = Unbounded
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid occurrence %q", s)
		}
		data = []byte(strconv.Itoa(n))
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid occurrence %s: %w", data, err)
	}
	if n < 0 {
		return fmt.Errorf("invalid occurrence %d: must not be negative", n)
	}
	*o = Times(n)
	return nil
}

// ElementRule permits a child element between MinOccurs and MaxOccurs times.
type ElementRule struct {
	Name      string `json:"name"`
	MinOccurs Occurs `json:"minOccurs"`
	MaxOccurs Occurs `json:"maxOccurs"`
}

// Range renders the permitted range, e.g. "1..unbounded".
func (r ElementRule) Range() string {
	return r.MinOccurs.String() + ".." + r.MaxOccurs.String()
}

// ChildSpec describes the permitted children of an element. Defined lists
// every child the governing schema allows at this position, so children left
// out of Rules can be told apart from truly unknown ones.
type ChildSpec struct {
	Rules        []ElementRule `json:"rules"`
	Defined      []string      `json:"defined,omitempty"`
	AllowForeign bool          `json:"allowForeign,omitempty"`
}

// AttributeSpec describes the permitted attributes of an element. Required
// and Optional are implicitly defined.
type AttributeSpec struct {
	Required []string `json:"required,omitempty"`
	Optional []string `json:"optional,omitempty"`
	Defined  []string `json:"defined,omitempty"`
}
