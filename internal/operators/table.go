// Package operators holds the session-scoped operator table: the mapping
// from an operator symbol to its precedence and declared arity. User
// operator definitions mutate the table at parse time, so the table is
// owned by the session and passed by reference into the parser and the
// compiler, never shared between sessions.
package operators

// DefaultPrecedence is assigned to user binary operators declared
// without an explicit precedence literal.
const DefaultPrecedence = 30

// Built-in binary precedences. 1 is the lowest definable precedence;
// higher binds tighter. Assignment is hardwired, lowest, and the only
// right-associative operator.
const (
	PrecAssign  = 2
	PrecCompare = 10
	PrecSum     = 20
	PrecProduct = 40
)

type Table struct {
	binary map[rune]int
	unary  map[rune]bool
	user   map[rune]bool // symbols installed by user binary definitions
}

// NewTable returns a table preloaded with the built-in operators.
func NewTable() *Table {
	return &Table{
		binary: map[rune]int{
			'=': PrecAssign,
			'<': PrecCompare,
			'+': PrecSum,
			'-': PrecSum,
			'*': PrecProduct,
		},
		unary: make(map[rune]bool),
		user:  make(map[rune]bool),
	}
}

// Precedence reports the binding power of sym as a binary operator.
// The second result is false when sym has no binary entry.
func (t *Table) Precedence(sym rune) (int, bool) {
	prec, ok := t.binary[sym]
	return prec, ok
}

// DefineBinary inserts or replaces sym's binary entry. Visible to all
// subsequent parses in the session.
func (t *Table) DefineBinary(sym rune, precedence int) {
	t.binary[sym] = precedence
	t.user[sym] = true
}

// DefineUnary installs sym as a user unary operator. Precedence is
// irrelevant for unary operators.
func (t *Table) DefineUnary(sym rune) {
	t.unary[sym] = true
}

// IsUnary reports whether sym is installed as a unary operator.
func (t *Table) IsUnary(sym rune) bool {
	return t.unary[sym]
}

// IsUserBinary reports whether sym's binary entry came from a user
// definition rather than the built-in preload.
func (t *Table) IsUserBinary(sym rune) bool {
	return t.user[sym]
}

// Snapshot captures the table state so a failed unit can be rolled back.
type Snapshot struct {
	binary map[rune]int
	unary  map[rune]bool
	user   map[rune]bool
}

func (t *Table) Snapshot() Snapshot {
	s := Snapshot{
		binary: make(map[rune]int, len(t.binary)),
		unary:  make(map[rune]bool, len(t.unary)),
		user:   make(map[rune]bool, len(t.user)),
	}
	for k, v := range t.binary {
		s.binary[k] = v
	}
	for k, v := range t.unary {
		s.unary[k] = v
	}
	for k, v := range t.user {
		s.user[k] = v
	}
	return s
}

// Restore reverts the table to a previously captured snapshot. The
// snapshot stays valid and can be restored again.
func (t *Table) Restore(s Snapshot) {
	t.binary = make(map[rune]int, len(s.binary))
	t.unary = make(map[rune]bool, len(s.unary))
	t.user = make(map[rune]bool, len(s.user))
	for k, v := range s.binary {
		t.binary[k] = v
	}
	for k, v := range s.unary {
		t.unary[k] = v
	}
	for k, v := range s.user {
		t.user[k] = v
	}
}
