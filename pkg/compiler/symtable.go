package compiler

import (
	"fmt"
	"strings"
)

// GlobalScope is the name of the pre-seeded function entry that owns the
// program-level variables.
const GlobalScope = "global"

// Variable is one name-to-type binding inside a scope.
type Variable struct {
	Name string
	Type Type
}

// Function is a directory entry: a user function or the global scope.
// Params holds the parameter types in declaration order; each parameter is
// also declared as a variable of the function's own scope.
type Function struct {
	Name       string
	ReturnType Type
	Params     []Type

	vars  []Variable     // declaration order, for dumps and object files
	index map[string]int // name -> position in vars
}

func newFunction(name string, ret Type) *Function {
	return &Function{Name: name, ReturnType: ret, index: make(map[string]int)}
}

// Vars returns the function's variables in declaration order.
func (f *Function) Vars() []Variable {
	out := make([]Variable, len(f.vars))
	copy(out, f.vars)
	return out
}

// lookup reports the type of name within this scope only.
func (f *Function) lookup(name string) (Type, bool) {
	i, ok := f.index[name]
	if !ok {
		return Invalid, false
	}
	return f.vars[i].Type, true
}

// Directory is the two-level symbol directory: a global scope plus one scope
// per function. Nested blocks never open scopes of their own.
type Directory struct {
	funcs map[string]*Function
	order []*Function // declaration order, global first
}

// NewDirectory returns a directory holding only the global scope.
func NewDirectory() *Directory {
	d := &Directory{funcs: make(map[string]*Function)}
	g := newFunction(GlobalScope, Void)
	d.funcs[GlobalScope] = g
	d.order = append(d.order, g)
	return d
}

// AddFunction registers a function with an empty parameter list and scope.
func (d *Directory) AddFunction(name string, ret Type) error {
	if _, ok := d.funcs[name]; ok {
		return newError(DuplicateDeclaration, "function %q already declared", name)
	}
	f := newFunction(name, ret)
	d.funcs[name] = f
	d.order = append(d.order, f)
	return nil
}

// AddVariable binds name to t in scope. Shadowing a global from a function
// scope is allowed; redeclaring within the same scope is not.
func (d *Directory) AddVariable(scope, name string, t Type) error {
	f, ok := d.funcs[scope]
	if !ok {
		return newError(UndeclaredFunction, "scope %q does not exist", scope)
	}
	if _, dup := f.index[name]; dup {
		return newError(DuplicateDeclaration, "variable %q already declared in %s", name, scope)
	}
	f.index[name] = len(f.vars)
	f.vars = append(f.vars, Variable{Name: name, Type: t})
	return nil
}

// AddParam appends t to the parameter list of scope. The caller declares the
// parameter's name separately with AddVariable.
func (d *Directory) AddParam(scope string, t Type) error {
	f, ok := d.funcs[scope]
	if !ok {
		return newError(UndeclaredFunction, "scope %q does not exist", scope)
	}
	f.Params = append(f.Params, t)
	return nil
}

// LookupVariable resolves name in scope first and then in the global scope.
func (d *Directory) LookupVariable(scope, name string) (Type, error) {
	if f, ok := d.funcs[scope]; ok {
		if t, ok := f.lookup(name); ok {
			return t, nil
		}
	}
	if t, ok := d.funcs[GlobalScope].lookup(name); ok {
		return t, nil
	}
	return Invalid, newError(UndeclaredVariable, "variable %q is not declared", name)
}

// LookupFunction returns the entry for name.
func (d *Directory) LookupFunction(name string) (*Function, error) {
	f, ok := d.funcs[name]
	if !ok {
		return nil, newError(UndeclaredFunction, "function %q is not declared", name)
	}
	return f, nil
}

// Functions returns every entry in declaration order, the global scope first.
func (d *Directory) Functions() []*Function {
	out := make([]*Function, len(d.order))
	copy(out, d.order)
	return out
}

// String returns a dump of the directory in declaration order.
func (d *Directory) String() string {
	var sb strings.Builder
	for _, f := range d.order {
		fmt.Fprintf(&sb, "%s (returns %s)\n", f.Name, f.ReturnType)
		if f.Name != GlobalScope {
			params := make([]string, len(f.Params))
			for i, p := range f.Params {
				params[i] = p.String()
			}
			fmt.Fprintf(&sb, "  params: [%s]\n", strings.Join(params, ", "))
		}
		if len(f.vars) == 0 {
			sb.WriteString("  vars: (empty)\n")
			continue
		}
		sb.WriteString("  vars:\n")
		for _, v := range f.vars {
			fmt.Fprintf(&sb, "    %-20s  %s\n", v.Name, v.Type)
		}
	}
	return sb.String()
}
