// Package diag implements the "verbose channel" of spec.md §7: the core
// never aborts on a data-type mismatch, malformed instruction or
// ambiguous pointer, it degrades gracefully and reports a diagnostic
// Event instead. Adapted from the teacher's stub trace-event machinery
// (internal/trace in zboralski/galago) with the tag/category vocabulary
// replaced by this engine's error taxonomy.
package diag

// Category is the kind of diagnostic raised during analysis.
type Category string

// Standard categories, matching spec.md §7's taxonomy.
const (
	MalformedInstruction Category = "malformed-instruction"
	RangeViolation        Category = "range-violation"
	StringDecodeFailure   Category = "string-decode-failure"
	AmbiguousPointer      Category = "ambiguous-pointer"
	RedundantEnd          Category = "redundant-end"
	UnimplementedInstr    Category = "unimplemented-instruction"
	SizeConflict          Category = "size-conflict"
	FileBoundaryGuess     Category = "file-boundary-guess"
)

// Categories is a collection of categories with helper methods, mirroring
// the teacher's Tags type.
type Categories []Category

// Has reports whether the collection contains cat.
func (c Categories) Has(cat Category) bool {
	for _, x := range c {
		if x == cat {
			return true
		}
	}
	return false
}

// Add appends cat if not already present.
func (c *Categories) Add(cat Category) {
	if !c.Has(cat) {
		*c = append(*c, cat)
	}
}

// Annotations holds key/value metadata describing an Event in more
// detail than Detail alone (e.g. "offset"->"0x1234", "target"->"func_80").
type Annotations map[string]string

// Set adds or updates an annotation.
func (a Annotations) Set(k, v string) { a[k] = v }

// Get retrieves an annotation value.
func (a Annotations) Get(k string) string { return a[k] }

// Event is a single diagnostic raised by an analyzer.
type Event struct {
	Address     uint32 // vram at which the condition was observed
	Categories  Categories
	Symbol      string // symbol name, if known, else empty
	Detail      string
	Annotations Annotations
}

// NewEvent creates an Event with a single primary category.
func NewEvent(addr uint32, category Category, symbol, detail string) *Event {
	return &Event{
		Address:     addr,
		Categories:  Categories{category},
		Symbol:      symbol,
		Detail:      detail,
		Annotations: make(Annotations),
	}
}

// Annotate sets an annotation on the event, initializing the map lazily.
func (e *Event) Annotate(k, v string) {
	if e.Annotations == nil {
		e.Annotations = make(Annotations)
	}
	e.Annotations.Set(k, v)
}

// Primary returns the event's first (primary) category.
func (e *Event) Primary() Category {
	if len(e.Categories) > 0 {
		return e.Categories[0]
	}
	return ""
}

// Collector accumulates Events produced during one analyze() pass. It is
// a plain slice with no locking and is not safe for concurrent use from
// multiple goroutines, matching the single-threaded analysis model of
// spec.md §5.
type Collector struct {
	events []*Event
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report appends an Event to the collector.
func (c *Collector) Report(e *Event) {
	c.events = append(c.events, e)
}

// Events returns all collected events in emission order.
func (c *Collector) Events() []*Event {
	return c.events
}

// Len returns the number of collected events.
func (c *Collector) Len() int {
	return len(c.events)
}

// Reset clears the collector, e.g. between independent analyze() runs so
// idempotency (spec.md §8) can be asserted on the diagnostic stream too.
func (c *Collector) Reset() {
	c.events = nil
}
