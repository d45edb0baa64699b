package vm

// NativeFn is the runtime address of an extern symbol: a host function
// taking the declared number of float64 arguments.
type NativeFn func(args []float64) float64

// CompiledFunction is one linked artifact: a named chunk with a fixed
// arity. Redefining a name appends a new artifact; earlier artifacts
// stay reachable from call sites that already linked against them.
type CompiledFunction struct {
	Name  string
	Arity int
	Chunk *Chunk
}

// Native is a declared extern symbol. Fn stays nil until the host
// supplies an address; calling it then is a link error.
type Native struct {
	Name  string
	Arity int
	Fn    NativeFn
}

// Callee is the result of resolving a name at lowering time.
type Callee struct {
	Index    int
	Arity    int
	IsNative bool
}

// Program is the session's linker state: every compiled function and
// declared runtime symbol, with name tables pointing at the newest
// entry for each name. Compiled units across the session call into it
// by index, so the tables only ever grow (snapshot/restore trims a
// failed unit's additions before anything could have linked to them).
type Program struct {
	functions []*CompiledFunction
	funcIndex map[string]int

	natives     []*Native
	nativeIndex map[string]int
}

func NewProgram() *Program {
	return &Program{
		funcIndex:   make(map[string]int),
		nativeIndex: make(map[string]int),
	}
}

// AddFunction links fn and repoints the name table at it, returning its
// index. The chunk may still be empty: the session registers a
// definition before lowering its body so recursive calls resolve.
func (p *Program) AddFunction(fn *CompiledFunction) int {
	index := len(p.functions)
	p.functions = append(p.functions, fn)
	p.funcIndex[fn.Name] = index
	return index
}

// DeclareNative records an extern symbol, replacing any previous
// declaration of the same name. fn may be nil (unresolved).
func (p *Program) DeclareNative(name string, arity int, fn NativeFn) int {
	if index, ok := p.nativeIndex[name]; ok {
		p.natives[index] = &Native{Name: name, Arity: arity, Fn: fn}
		return index
	}
	index := len(p.natives)
	p.natives = append(p.natives, &Native{Name: name, Arity: arity, Fn: fn})
	p.nativeIndex[name] = index
	return index
}

// BindNative supplies the runtime address for an already-declared
// symbol. Reports whether a declaration existed.
func (p *Program) BindNative(name string, fn NativeFn) bool {
	index, ok := p.nativeIndex[name]
	if !ok {
		return false
	}
	p.natives[index].Fn = fn
	return true
}

// Resolve looks a callee up by name. Locally compiled functions shadow
// extern declarations of the same name.
func (p *Program) Resolve(name string) (Callee, bool) {
	if index, ok := p.funcIndex[name]; ok {
		return Callee{Index: index, Arity: p.functions[index].Arity}, true
	}
	if index, ok := p.nativeIndex[name]; ok {
		return Callee{Index: index, Arity: p.natives[index].Arity, IsNative: true}, true
	}
	return Callee{}, false
}

// Forget removes name from the function name table. The artifact stays
// linked for call sites that resolved it earlier. Used for one-shot
// anonymous units, which must never be callable by name again.
func (p *Program) Forget(name string) {
	delete(p.funcIndex, name)
}

// Snapshot captures the linker state so a failed unit's additions can
// be discarded.
type ProgramSnapshot struct {
	functionCount int
	funcIndex     map[string]int
	nativeCount   int
	nativeIndex   map[string]int
}

func (p *Program) Snapshot() ProgramSnapshot {
	s := ProgramSnapshot{
		functionCount: len(p.functions),
		funcIndex:     make(map[string]int, len(p.funcIndex)),
		nativeCount:   len(p.natives),
		nativeIndex:   make(map[string]int, len(p.nativeIndex)),
	}
	for k, v := range p.funcIndex {
		s.funcIndex[k] = v
	}
	for k, v := range p.nativeIndex {
		s.nativeIndex[k] = v
	}
	return s
}

// Restore reverts the linker to a previously captured snapshot. The
// snapshot stays valid and can be restored again.
func (p *Program) Restore(s ProgramSnapshot) {
	p.functions = p.functions[:s.functionCount]
	p.natives = p.natives[:s.nativeCount]
	p.funcIndex = make(map[string]int, len(s.funcIndex))
	for k, v := range s.funcIndex {
		p.funcIndex[k] = v
	}
	p.nativeIndex = make(map[string]int, len(s.nativeIndex))
	for k, v := range s.nativeIndex {
		p.nativeIndex[k] = v
	}
}
