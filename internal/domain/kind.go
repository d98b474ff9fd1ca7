package domain

import (
	"fmt"
	"strings"
)

// DependencyKind is the stock edge label: how a dependent relates to its
// prerequisite. The block itself treats every kind as plain ordering.
type DependencyKind uint8

const (
	// Dependence: the target starts any time after the source finishes.
	Dependence DependencyKind = iota
	// Consecutive: the target follows the source directly, after its gap.
	Consecutive
	// Exclusive: the two tasks must not overlap.
	Exclusive
)

var kindNames = [...]string{
	Dependence:  "dependence",
	Consecutive: "consecutive",
	Exclusive:   "exclusive",
}

func (k DependencyKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("DependencyKind(%d)", uint8(k))
}

// ParseDependencyKind accepts the String form in any case. The empty string
// parses as Dependence.
func ParseDependencyKind(s string) (DependencyKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Dependence, nil
	}
	for k, name := range kindNames {
		if name == s {
			return DependencyKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown dependency kind %q", s)
}

func (k DependencyKind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid dependency kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *DependencyKind) UnmarshalText(text []byte) error {
	parsed, err := ParseDependencyKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
