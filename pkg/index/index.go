// Package index holds the in-memory view of the registry for one run.
//
// Every location is reachable by its registry id and by its normalized code.
// The index is built once from the full registry listing and then kept in
// step with every write the engine makes, so nothing downstream needs to
// read the registry again.
package index

import (
	"fmt"
	"sync"

	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/locations"
)

// Duplicate reports a registry location whose code was already claimed by an
// earlier location during IndexAll.
type Duplicate struct {
	Code     string
	Kept     *locations.Location
	Rejected *locations.Location
}

// Index maps registry ids and normalized codes to locations.
type Index struct {
	mu     sync.RWMutex
	all    []*locations.Location
	byID   map[string]*locations.Location
	byCode map[string]*locations.Location
}

// New returns an empty index.
func New() *Index {
	return &Index{
		byID:   make(map[string]*locations.Location),
		byCode: make(map[string]*locations.Location),
	}
}

// IndexAll adds every location. When two locations share a code the first
// one keeps it and the other is reported as a duplicate; both stay
// reachable by id.
func (idx *Index) IndexAll(locs []*locations.Location) []Duplicate {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var dups []Duplicate
	for _, loc := range locs {
		if loc == nil || loc.ID == "" {
			continue
		}
		if _, seen := idx.byID[loc.ID]; seen {
			continue
		}
		idx.byID[loc.ID] = loc
		idx.all = append(idx.all, loc)

		key := locations.NormalizeCode(loc.Code())
		if key == "" {
			continue
		}
		if kept, ok := idx.byCode[key]; ok {
			dups = append(dups, Duplicate{Code: loc.Code(), Kept: kept, Rejected: loc})
			continue
		}
		idx.byCode[key] = loc
	}
	return dups
}

// ByID returns the location with the given registry id.
func (idx *Index) ByID(id string) (*locations.Location, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	loc, ok := idx.byID[id]
	return loc, ok
}

// ByCode returns the location owning code, compared case-insensitively.
func (idx *Index) ByCode(code string) (*locations.Location, bool) {
	key := locations.NormalizeCode(code)
	if key == "" {
		return nil, false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	loc, ok := idx.byCode[key]
	return loc, ok
}

// RecordCreated registers a location the engine has just created.
func (idx *Index) RecordCreated(loc *locations.Location) error {
	if loc == nil || loc.ID == "" {
		return errors.NewValidationError("id", "", "created location has no id")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	key := locations.NormalizeCode(loc.Code())
	if key != "" {
		if owner, ok := idx.byCode[key]; ok && owner.ID != loc.ID {
			return fmt.Errorf("code %q owned by %s: %w", loc.Code(), owner.ID, errors.ErrCodeConflict)
		}
	}
	if _, seen := idx.byID[loc.ID]; !seen {
		idx.all = append(idx.all, loc)
	}
	idx.byID[loc.ID] = loc
	if key != "" {
		idx.byCode[key] = loc
	}
	return nil
}

// RecordCodeChanged moves loc from oldCode to newCode. It fails with
// ErrCodeConflict, leaving the index untouched, when newCode already belongs
// to another location.
func (idx *Index) RecordCodeChanged(oldCode, newCode string, loc *locations.Location) error {
	if loc == nil {
		return errors.NewValidationError("location", nil, "location is nil")
	}
	newKey := locations.NormalizeCode(newCode)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if newKey != "" {
		if owner, ok := idx.byCode[newKey]; ok && owner.ID != loc.ID {
			return fmt.Errorf("code %q owned by %s: %w", newCode, owner.ID, errors.ErrCodeConflict)
		}
	}
	if oldKey := locations.NormalizeCode(oldCode); oldKey != "" && oldKey != newKey {
		if owner, ok := idx.byCode[oldKey]; ok && owner.ID == loc.ID {
			delete(idx.byCode, oldKey)
		}
	}
	if newKey != "" {
		idx.byCode[newKey] = loc
	}
	return nil
}

// Children returns the locations whose parent is parentID, in index order.
func (idx *Index) Children(parentID string) []*locations.Location {
	if parentID == "" {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []*locations.Location
	for _, loc := range idx.all {
		if loc.ParentID == parentID {
			out = append(out, loc)
		}
	}
	return out
}

// All returns every indexed location in insertion order.
func (idx *Index) All() []*locations.Location {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]*locations.Location(nil), idx.all...)
}

// Len returns the number of indexed locations.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.all)
}

// Codes returns the number of distinct codes in the index.
func (idx *Index) Codes() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byCode)
}
