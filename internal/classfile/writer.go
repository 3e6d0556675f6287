package classfile

import (
	"errors"
	"fmt"
)

// ErrStackAccounting marks an instruction sequence the sink rejected
// because its stack depths could not be computed consistently.
var ErrStackAccounting = errors.New("stack accounting failed")

// ErrDuplicateMethod marks an entry whose signature is already present in
// the class's method table.
var ErrDuplicateMethod = errors.New("duplicate method entry")

// Class is one complete method table plus its linkage names.
type Class struct {
	Name       string
	Super      string // empty for roots
	Interfaces []string
	Methods    []*MethodEntry
}

// Lookup finds a method entry by signature key. It does not walk the
// superclass chain; that is the executor's job.
func (c *Class) Lookup(key string) *MethodEntry {
	for _, m := range c.Methods {
		if m.Sig.Key() == key {
			return m
		}
	}
	return nil
}

// ClassWriter is the append-only emission sink for one class. It is
// logically single-writer: hosts that generate classes in parallel must
// give each class its own writer.
type ClassWriter struct {
	class *Class
	seen  map[string]struct{}
}

// NewClassWriter creates a writer for the named class.
func NewClassWriter(name, super string, interfaces ...string) *ClassWriter {
	return &ClassWriter{
		class: &Class{
			Name:       name,
			Super:      super,
			Interfaces: interfaces,
		},
		seen: make(map[string]struct{}),
	}
}

// ClassName returns the name of the class being written.
func (w *ClassWriter) ClassName() string {
	return w.class.Name
}

// Add appends a method entry to the table. Concrete entries have their
// max stack depth computed here; a sequence the computation rejects is
// not appended and surfaces as ErrStackAccounting.
func (w *ClassWriter) Add(entry *MethodEntry) error {
	key := entry.Sig.Key()
	if _, dup := w.seen[key]; dup {
		return fmt.Errorf("%w: %s in class %s", ErrDuplicateMethod, key, w.class.Name)
	}

	if !entry.IsAbstract() {
		if entry.Code == nil {
			return fmt.Errorf("concrete entry %s in class %s has no code", key, w.class.Name)
		}
		maxStack, err := ComputeMaxStack(entry.Code)
		if err != nil {
			return fmt.Errorf("%w: %s in class %s: %v", ErrStackAccounting, key, w.class.Name, err)
		}
		entry.MaxStack = maxStack
	}

	w.seen[key] = struct{}{}
	w.class.Methods = append(w.class.Methods, entry)
	return nil
}

// Class returns the finished class. The writer must not be used afterwards.
func (w *ClassWriter) Class() *Class {
	return w.class
}
