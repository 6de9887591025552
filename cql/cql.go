// Package cql parses trait queries such as
//
//	CONTAINS(Camera, Transform) & !EXACT(Camera)
//
// into filters that can be run against a World with World.Search.
package cql

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"pkg.world.dev/world-engine/nucleus/ecs/filter"
	"pkg.world.dev/world-engine/nucleus/tag"
)

// Resolver turns a component name used in a query into its tag.
type Resolver func(name string) (tag.Tag, error)

type operator int

const (
	opAnd operator = iota
	opOr
)

var operators = map[string]operator{"&": opAnd, "|": opOr}

// Capture tells the parser how to turn an operator token into an operator.
func (o *operator) Capture(s []string) error {
	if len(s) == 0 {
		return eris.New("invalid operator")
	}
	op, ok := operators[s[0]]
	if !ok {
		return eris.Errorf("invalid operator %q", s[0])
	}
	*o = op
	return nil
}

func (o operator) String() string {
	if o == opOr {
		return "|"
	}
	return "&"
}

type componentName struct {
	Name string `@Ident`
}

type componentList struct {
	Components []*componentName `"(" @@ ("," @@)* ")"`
}

type value struct {
	All      bool           `  @"ALL" "(" ")"`
	Exact    *componentList `| "EXACT" @@`
	Contains *componentList `| "CONTAINS" @@`
	Not      *value         `| "!" @@`
	Group    *term          `| "(" @@ ")"`
}

type opValue struct {
	Operator operator `@("&" | "|")`
	Value    *value   `@@`
}

type term struct {
	Left  *value     `@@`
	Right []*opValue `@@*`
}

var parser = participle.MustBuild[term]()

func (l *componentList) String() string {
	names := make([]string, 0, len(l.Components))
	for _, c := range l.Components {
		names = append(names, c.Name)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func (v *value) String() string {
	switch {
	case v.All:
		return "ALL()"
	case v.Exact != nil:
		return "EXACT" + v.Exact.String()
	case v.Contains != nil:
		return "CONTAINS" + v.Contains.String()
	case v.Not != nil:
		return "!" + v.Not.String()
	case v.Group != nil:
		return "(" + v.Group.String() + ")"
	default:
		return ""
	}
}

func (t *term) String() string {
	out := []string{t.Left.String()}
	for _, r := range t.Right {
		out = append(out, r.Operator.String(), r.Value.String())
	}
	return strings.Join(out, " ")
}

// Parse parses a query and resolves its component names. Operators are applied left to right with equal
// precedence; use parentheses to group.
func Parse(text string, resolve Resolver) (filter.ComponentFilter, error) {
	t, err := parser.ParseString("", text)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse query %q", text)
	}
	return t.toFilter(resolve)
}

// Normalize parses a query and renders it back in canonical form.
func Normalize(text string) (string, error) {
	t, err := parser.ParseString("", text)
	if err != nil {
		return "", eris.Wrapf(err, "failed to parse query %q", text)
	}
	return t.String(), nil
}

func (t *term) toFilter(resolve Resolver) (filter.ComponentFilter, error) {
	if t.Left == nil {
		return nil, eris.New("not enough values in expression")
	}
	acc, err := t.Left.toFilter(resolve)
	if err != nil {
		return nil, err
	}
	for _, r := range t.Right {
		next, err := r.Value.toFilter(resolve)
		if err != nil {
			return nil, err
		}
		switch r.Operator {
		case opAnd:
			acc = filter.And(acc, next)
		case opOr:
			acc = filter.Or(acc, next)
		default:
			return nil, eris.New("invalid operator")
		}
	}
	return acc, nil
}

func (v *value) toFilter(resolve Resolver) (filter.ComponentFilter, error) {
	switch {
	case v.All:
		return filter.All(), nil
	case v.Exact != nil:
		ids, err := v.Exact.resolve(resolve)
		if err != nil {
			return nil, err
		}
		return filter.Exact(ids...), nil
	case v.Contains != nil:
		ids, err := v.Contains.resolve(resolve)
		if err != nil {
			return nil, err
		}
		return filter.Contains(ids...), nil
	case v.Not != nil:
		inner, err := v.Not.toFilter(resolve)
		if err != nil {
			return nil, err
		}
		return filter.Not(inner), nil
	case v.Group != nil:
		return v.Group.toFilter(resolve)
	default:
		return nil, eris.New("unknown error during conversion from query AST to filter")
	}
}

func (l *componentList) resolve(resolve Resolver) ([]tag.Tag, error) {
	ids := make([]tag.Tag, 0, len(l.Components))
	for _, c := range l.Components {
		id, err := resolve(c.Name)
		if err != nil {
			return nil, eris.Wrapf(err, "unknown component %q", c.Name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
