// Package reconciler resolves upstream hierarchy records against the
// registry index. Every lookup goes by code, so repeating a run over
// unchanged upstream data makes no writes; only additions and drift in a
// node's name or parent do.
package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/index"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/logging"
	"github.com/moh-tz/hfrsync/pkg/names"
	"github.com/moh-tz/hfrsync/pkg/registry"
)

// Reconciler owns the write path into the registry for one run. It is not
// safe for concurrent use.
type Reconciler struct {
	index    *index.Index
	client   registry.Client
	attrs    AttributeTypes
	policy   TagMismatchPolicy
	roots    []locations.Tag
	recorder Recorder
}

// New creates a Reconciler writing through client and keeping idx current.
func New(idx *index.Index, client registry.Client, opts ...Option) (*Reconciler, error) {
	if idx == nil {
		return nil, &errors.ValidationError{Field: "index", Message: "cannot be nil"}
	}
	if client == nil {
		return nil, &errors.ValidationError{Field: "client", Message: "cannot be nil"}
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Reconciler{
		index:    idx,
		client:   client,
		attrs:    o.attributeTypes,
		policy:   o.policy,
		roots:    o.rootTags,
		recorder: o.recorder,
	}, nil
}

// Index returns the index the reconciler reads and maintains.
func (r *Reconciler) Index() *index.Index {
	return r.index
}

// WithRecorder returns a shallow copy of r that reports to rec. The copy
// shares the index and client.
func (r *Reconciler) WithRecorder(rec Recorder) *Reconciler {
	c := *r
	if rec == nil {
		rec = NopRecorder{}
	}
	c.recorder = rec
	return &c
}

func (r *Reconciler) isRoot(tag locations.Tag) bool {
	for _, t := range r.roots {
		if t.Equal(tag) {
			return true
		}
	}
	return false
}

func (r *Reconciler) anomaly(logger *zerolog.Logger, a Anomaly, msg string) {
	logging.Anomaly(logger, string(a.Kind)).
		Str("location_id", a.LocationID).
		Str("detail", a.Detail).
		Msg(msg)
	r.recorder.Anomaly(a)
}

// Ensure returns the location owning code, creating it under parent when
// the index has none. An existing location carrying tag has its name and
// parent brought in line with the arguments. An existing location with a
// different tag is returned unchanged unless the add-tag policy is set.
//
// Ensure returns nil without error when code is empty or when a location
// below the root levels would have to be created without a parent. When a
// drift update fails the existing location is returned together with the
// error.
func (r *Reconciler) Ensure(ctx context.Context, parent *locations.Location, name, code string, tag locations.Tag) (*locations.Location, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	name = strings.TrimSpace(name)

	logger := logging.FromContext(ctx).With().
		Str("code", code).
		Str("tag", tag.String()).
		Logger()

	if existing, ok := r.index.ByCode(code); ok {
		if !existing.HasTag(tag) {
			return r.tagMismatch(ctx, &logger, existing, name, code, tag)
		}
		return existing, r.heal(ctx, &logger, existing, parent, name)
	}

	if parent == nil && !r.isRoot(tag) {
		r.anomaly(&logger, Anomaly{
			Kind: AnomalyOrphan, Code: code, Name: name, Tag: tag,
			Detail: fmt.Sprintf("%s cannot be created without a parent", tag),
		}, "Refusing to create location without a parent")
		return nil, nil
	}

	if name == "" {
		r.anomaly(&logger, Anomaly{Kind: AnomalyMissingName, Code: code, Tag: tag},
			"Refusing to create location without a name")
		return nil, nil
	}

	return r.create(ctx, &logger, parent, name, code, tag)
}

// heal renames and reparents an existing location. A failed rename does not
// stop the reparent; both failures are returned.
func (r *Reconciler) heal(ctx context.Context, logger *zerolog.Logger, existing, parent *locations.Location, name string) error {
	var errs []error

	if name != "" && !names.Same(existing.Name, name) {
		from := existing.Name
		if err := r.client.Rename(ctx, existing.ID, name); err != nil {
			logger.Error().Err(err).
				Str("location_id", existing.ID).
				Str("from", from).
				Str("to", name).
				Msg("Failed to rename location")
			errs = append(errs, err)
		} else {
			existing.Name = name
			logger.Info().
				Str("location_id", existing.ID).
				Str("from", from).
				Str("to", name).
				Msg("Renamed location")
			r.recorder.Renamed(existing, from)
		}
	}

	if parent != nil && parent.ID != "" && existing.ParentID != parent.ID {
		if r.isAncestor(existing.ID, parent) {
			r.anomaly(logger, Anomaly{
				Kind:       AnomalyParentCycle,
				Code:       existing.Code(),
				Name:       existing.Name,
				LocationID: existing.ID,
				Detail:     "requested parent " + parent.ID + " is the location or one of its descendants",
			}, "Refusing to reparent location under itself")
			return errors.Join(errs...)
		}
		from := existing.ParentID
		if err := r.client.Reparent(ctx, existing.ID, parent.ID); err != nil {
			logger.Error().Err(err).
				Str("location_id", existing.ID).
				Str("parent_id", parent.ID).
				Msg("Failed to reparent location")
			errs = append(errs, err)
		} else {
			existing.ParentID = parent.ID
			logger.Info().
				Str("location_id", existing.ID).
				Str("from_parent_id", from).
				Str("parent_id", parent.ID).
				Msg("Reparented location")
			r.recorder.Reparented(existing, from)
		}
	}

	return errors.Join(errs...)
}

// isAncestor reports whether id is node or one of node's ancestors in the index.
func (r *Reconciler) isAncestor(id string, node *locations.Location) bool {
	seen := make(map[string]bool)
	for n := node; n != nil && !seen[n.ID]; {
		if n.ID == id {
			return true
		}
		seen[n.ID] = true
		if n.ParentID == "" {
			return false
		}
		next, ok := r.index.ByID(n.ParentID)
		if !ok {
			return false
		}
		n = next
	}
	return false
}

func (r *Reconciler) tagMismatch(ctx context.Context, logger *zerolog.Logger, existing *locations.Location, name, code string, tag locations.Tag) (*locations.Location, error) {
	r.anomaly(logger, Anomaly{
		Kind:       AnomalyTagMismatch,
		Code:       code,
		Name:       name,
		Tag:        tag,
		LocationID: existing.ID,
		Detail:     fmt.Sprintf("location is tagged %v", existing.Tags),
	}, "Location found by code carries a different tag")

	if r.policy != TagMismatchAddTag {
		return existing, nil
	}

	tags := append(append([]locations.Tag(nil), existing.Tags...), tag)
	if err := r.client.Retag(ctx, existing.ID, tags); err != nil {
		logger.Error().Err(err).Str("location_id", existing.ID).Msg("Failed to add tag to location")
		return existing, err
	}
	existing.Tags = tags
	logger.Info().Str("location_id", existing.ID).Msg("Added tag to location")
	r.recorder.Retagged(existing, tag)
	return existing, nil
}

func (r *Reconciler) create(ctx context.Context, logger *zerolog.Logger, parent *locations.Location, name, code string, tag locations.Tag) (*locations.Location, error) {
	req := registry.NewLocation{
		Name:       name,
		Tags:       []locations.Tag{tag},
		Attributes: map[string]string{r.attrs.For(tag): code},
	}
	if parent != nil {
		req.ParentID = parent.ID
	}

	id, err := r.client.Create(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("name", name).Msg("Failed to create location")
		return nil, err
	}

	loc := &locations.Location{
		ID:         id,
		Name:       name,
		Tags:       []locations.Tag{tag},
		Attributes: map[string]string{locations.CodeAttribute(tag): code},
		ParentID:   req.ParentID,
	}
	if err := r.index.RecordCreated(loc); err != nil {
		return nil, err
	}

	logger.Info().
		Str("location_id", id).
		Str("name", name).
		Str("parent_id", req.ParentID).
		Msg("Created location")
	r.recorder.Created(loc)
	return loc, nil
}

// Report logs and records an anomaly found outside Ensure.
func (r *Reconciler) Report(ctx context.Context, a Anomaly, msg string) {
	r.anomaly(logging.FromContext(ctx), a, msg)
}

// Resolve returns the indexed location for code without creating anything.
func (r *Reconciler) Resolve(code string) (*locations.Location, bool) {
	return r.index.ByCode(code)
}
