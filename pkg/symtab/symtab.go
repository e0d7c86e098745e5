// Package symtab implements the per-scope name resolution used throughout the
// compiler: a mapping from identifier to either a variable or a function
// symbol, nested one table per lexical scope.
package symtab

import "fmt"

// DataType is the primitive type tag carried by every variable, function
// return value and (via ast.Node) expression in the compiler.
type DataType int

const (
	Unknown DataType = iota // type not yet determined
	Int                     // signed 64-bit, two's complement
	Float                   // IEEE-754 binary64
	String                  // immutable byte sequence
	Bool
	Nil                 // no value (statement, void return)
	Multiple            // a list of more than one typed value
	BlackHole           // the discard target '_'
	UnknownUninferrable // inference has definitively failed for this node
)

func (t DataType) String() string {
	switch t {
	case Unknown:
		return "unknown"
	case Int:
		return "int"
	case Float:
		return "float64"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Nil:
		return "nil"
	case Multiple:
		return "multiple"
	case BlackHole:
		return "_"
	case UnknownUninferrable:
		return "uninferrable"
	default:
		return "?"
	}
}

// Kind distinguishes a variable symbol from a function symbol.
type Kind int

const (
	VarSymbol Kind = iota
	FuncSymbol
)

// Param models both a function argument and a (possibly anonymous) return
// value: the declaration of a signature, and, for a forward-referenced
// function, a type-unknown stub patched once the definition is seen.
type Param struct {
	Name string // empty for an anonymous return value
	Type DataType
}

// Symbol is either a variable or a function, per spec.md §3.2.
type Symbol struct {
	Name string
	Kind Kind

	// Variable fields.
	Type          DataType
	Defined       bool // true once an assignment has flowed through it
	IsArgument    bool
	IsReturnValue bool

	// Function fields.
	Params       []Param
	Returns      []Param
	ReturnsNamed bool // true if Returns carry names; mixing named/unnamed is rejected
	returnsSet   bool // whether any AddReturn has run yet, to seed ReturnsNamed
	Variadic     bool // the print intrinsic: any number of arguments, any types

	// RefCount counts syntactic uses (incremented by ast.NewID); a variable
	// with RefCount == 0 never gets a DEFVAR or a store emitted for it.
	RefCount int

	// Unresolved marks a placeholder handed out by pkg/parser.Lookup for a
	// name that wasn't found in any active scope at the point it was read as
	// an expression leaf. It is never added to a Table: a `:=` target gets
	// replaced by a freshly registered Symbol once the statement's shape is
	// known, and anything still Unresolved once the statement is fully
	// parsed is an undefined-identifier error.
	Unresolved bool
}

// ParamsCount and RetTypesCount are convenience derived counts.
func (s *Symbol) ParamsCount() int   { return len(s.Params) }
func (s *Symbol) RetTypesCount() int { return len(s.Returns) }

// Table is a single lexical scope: identifier -> symbol, plus the
// lazily-assigned renaming tag used by the IR emitter (spec.md §4.F.1).
type Table struct {
	entries map[string]*Symbol

	prefix      int
	prefixIsSet bool
}

// New allocates an empty table. capacity is a hint only: scopes are small
// and no resize is required for correctness.
func New(capacity int) *Table {
	return &Table{entries: make(map[string]*Symbol, capacity)}
}

// Find looks up key in this table only (callers walk the scope chain
// themselves, same as the source's symtable_find/find_sym_table split).
func (t *Table) Find(key string) (*Symbol, bool) {
	sym, ok := t.entries[key]
	return sym, ok
}

// Add inserts a brand new symbol. The parser only ever calls Add after a
// prior Find missed; a hit here is an internal invariant breach.
func (t *Table) Add(key string, kind Kind) (*Symbol, error) {
	if _, exists := t.entries[key]; exists {
		return nil, fmt.Errorf("symtab: add of existing key %q is an internal invariant breach", key)
	}
	sym := &Symbol{Name: key, Kind: kind}
	t.entries[key] = sym
	return sym, nil
}

// AddParam appends a parameter to a function symbol's ordered argument list.
func (t *Table) AddParam(fn *Symbol, name string, typ DataType) error {
	if fn.Kind != FuncSymbol {
		return fmt.Errorf("symtab: AddParam on non-function symbol %q", fn.Name)
	}
	fn.Params = append(fn.Params, Param{Name: name, Type: typ})
	return nil
}

// AddReturn appends a return value to a function symbol's ordered return
// list, rejecting a mix of named and anonymous return values.
func (t *Table) AddReturn(fn *Symbol, name string, typ DataType) error {
	if fn.Kind != FuncSymbol {
		return fmt.Errorf("symtab: AddReturn on non-function symbol %q", fn.Name)
	}

	named := name != ""
	if fn.returnsSet && named != fn.ReturnsNamed {
		return fmt.Errorf("symtab: function %q mixes named and anonymous return values", fn.Name)
	}
	fn.ReturnsNamed = named
	fn.returnsSet = true
	fn.Returns = append(fn.Returns, Param{Name: name, Type: typ})
	return nil
}

// Iterate returns every symbol of the table; insertion order is irrelevant
// per spec.md §3.2, so no ordering guarantee is made.
func (t *Table) Iterate() []*Symbol {
	out := make([]*Symbol, 0, len(t.entries))
	for _, sym := range t.entries {
		out = append(out, sym)
	}
	return out
}

// Free drops the table's entries. Go's GC reclaims the rest; this exists so
// callers can mirror the source's explicit scope teardown at scope-close.
func (t *Table) Free() { t.entries = nil }

// Prefix returns this scope's emitted-name renaming tag, assigning it from
// counter on first use (spec.md §4.F.1: "assigned lazily on first emission").
func (t *Table) Prefix(counter *int) int {
	if !t.prefixIsSet {
		t.prefix = *counter
		*counter++
		t.prefixIsSet = true
	}
	return t.prefix
}

// PrefixAssigned reports whether Prefix has already been called for this
// table (used by tests asserting distinct-prefix-per-emitting-scope).
func (t *Table) PrefixAssigned() bool { return t.prefixIsSet }
