// Package registrytest provides an in-memory registry for tests.
package registrytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/registry"
)

// Call records one write made against a Fake.
type Call struct {
	Op    string
	ID    string
	Value string
}

// Fake is an in-memory registry.Client. Attribute type uuids are mapped back
// to display names through AttributeNames so that List returns locations the
// way the real registry would.
type Fake struct {
	mu sync.Mutex

	AttributeNames map[string]string

	locs  map[string]*locations.Location
	order []string
	next  int
	calls []Call

	// Fail makes the named operation fail for the given id ("*" for any id).
	Fail map[string]string
}

var _ registry.Client = (*Fake)(nil)

// New returns an empty Fake. attributeNames maps attribute type uuid to
// display name.
func New(attributeNames map[string]string) *Fake {
	return &Fake{
		AttributeNames: attributeNames,
		locs:           make(map[string]*locations.Location),
		Fail:           make(map[string]string),
	}
}

// Seed adds locations without recording writes.
func (f *Fake) Seed(locs ...*locations.Location) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range locs {
		f.put(l.Clone())
	}
}

func (f *Fake) put(l *locations.Location) {
	if _, ok := f.locs[l.ID]; !ok {
		f.order = append(f.order, l.ID)
	}
	f.locs[l.ID] = l
}

func (f *Fake) failing(op, id string) error {
	if target, ok := f.Fail[op]; ok && (target == "*" || target == id) {
		return errors.WrapAPI("registry", op, 500, fmt.Errorf("%s %s failed", op, id))
	}
	return nil
}

func (f *Fake) record(op, id, value string) {
	f.calls = append(f.calls, Call{Op: op, ID: id, Value: value})
}

// Calls returns every write made so far.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Writes returns the number of writes made so far.
func (f *Fake) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Reset forgets recorded writes but keeps the stored locations.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Get returns a copy of the stored location.
func (f *Fake) Get(id string) (*locations.Location, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locs[id]
	return l.Clone(), ok
}

// Len returns the number of stored locations.
func (f *Fake) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.locs)
}

// List implements registry.Client.
func (f *Fake) List(_ context.Context) ([]*locations.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing("list", "*"); err != nil {
		return nil, err
	}
	out := make([]*locations.Location, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.locs[id].Clone())
	}
	return out, nil
}

// Create implements registry.Client.
func (f *Fake) Create(_ context.Context, nl registry.NewLocation) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing("create", nl.Name); err != nil {
		return "", err
	}
	f.next++
	id := fmt.Sprintf("loc-%d", f.next)
	l := &locations.Location{
		ID:       id,
		Name:     nl.Name,
		Tags:     append([]locations.Tag(nil), nl.Tags...),
		ParentID: nl.ParentID,
	}
	for typ, v := range nl.Attributes {
		l.SetAttribute(f.attributeName(typ), v)
	}
	f.put(l)
	f.record("create", id, nl.Name)
	return id, nil
}

// Rename implements registry.Client.
func (f *Fake) Rename(_ context.Context, id, name string) error {
	return f.update("rename", id, name, func(l *locations.Location) { l.Name = name })
}

// Reparent implements registry.Client.
func (f *Fake) Reparent(_ context.Context, id, parentID string) error {
	return f.update("reparent", id, parentID, func(l *locations.Location) { l.ParentID = parentID })
}

// SetAttribute implements registry.Client.
func (f *Fake) SetAttribute(_ context.Context, id, attributeType, value string) error {
	return f.update("set-attribute", id, value, func(l *locations.Location) {
		l.SetAttribute(f.attributeName(attributeType), value)
	})
}

// Retag implements registry.Client.
func (f *Fake) Retag(_ context.Context, id string, tags []locations.Tag) error {
	return f.update("retag", id, fmt.Sprint(tags), func(l *locations.Location) {
		l.Tags = append([]locations.Tag(nil), tags...)
	})
}

func (f *Fake) update(op, id, value string, apply func(*locations.Location)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing(op, id); err != nil {
		return err
	}
	l, ok := f.locs[id]
	if !ok {
		return errors.NewNotFoundError("location", id)
	}
	apply(l)
	f.record(op, id, value)
	return nil
}

func (f *Fake) attributeName(typ string) string {
	if name, ok := f.AttributeNames[typ]; ok {
		return name
	}
	return typ
}
