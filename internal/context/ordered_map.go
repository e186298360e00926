package context

// OrderedSymbolMap is an insertion-ordered address->symbol map, used for
// a function's BranchLabels and JumpTables (spec.md §3.1). Insertion
// order (not address order) is what sequential-label-name derivation
// indexes into, since labels are discovered in control-flow order as the
// text analyzer walks the function.
type OrderedSymbolMap struct {
	order []uint32
	index map[uint32]int
	syms  map[uint32]*ContextSymbol
}

// NewOrderedSymbolMap returns an empty OrderedSymbolMap.
func NewOrderedSymbolMap() *OrderedSymbolMap {
	return &OrderedSymbolMap{
		index: make(map[uint32]int),
		syms:  make(map[uint32]*ContextSymbol),
	}
}

// Put inserts sym under address, appending to insertion order if new, and
// overwriting the value (not the order) on a repeat insert.
func (m *OrderedSymbolMap) Put(address uint32, sym *ContextSymbol) {
	if _, exists := m.syms[address]; !exists {
		m.index[address] = len(m.order)
		m.order = append(m.order, address)
	}
	m.syms[address] = sym
}

// Get returns the symbol at address, if present.
func (m *OrderedSymbolMap) Get(address uint32) (*ContextSymbol, bool) {
	s, ok := m.syms[address]
	return s, ok
}

// IndexOf returns the 0-based insertion-order position of address.
func (m *OrderedSymbolMap) IndexOf(address uint32) (int, bool) {
	i, ok := m.index[address]
	return i, ok
}

// Len returns the number of entries.
func (m *OrderedSymbolMap) Len() int { return len(m.order) }

// InOrder returns all symbols in insertion order.
func (m *OrderedSymbolMap) InOrder() []*ContextSymbol {
	out := make([]*ContextSymbol, 0, len(m.order))
	for _, addr := range m.order {
		out = append(out, m.syms[addr])
	}
	return out
}

// Addresses returns all addresses in insertion order.
func (m *OrderedSymbolMap) Addresses() []uint32 {
	out := make([]uint32, len(m.order))
	copy(out, m.order)
	return out
}
