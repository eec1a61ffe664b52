package reconciler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/logging"
	"github.com/moh-tz/hfrsync/pkg/names"
)

// VillageRef is the village an upstream record describes: the name it should
// carry and its code.
type VillageRef struct {
	Name string
	Code string
}

// RealignChildren repairs villages still parented to ancestorID. A village
// whose name differs from ref.Name is renamed, and only after a successful
// rename does it take ref.Code and move under newParentID. It returns how
// many villages were realigned.
func (r *Reconciler) RealignChildren(ctx context.Context, ancestorID, newParentID string, ref VillageRef) (int, error) {
	logger := logging.FromContext(ctx).With().
		Str("ancestor_id", ancestorID).
		Str("village_code", ref.Code).
		Logger()

	var (
		n    int
		errs []error
	)
	for _, child := range r.index.Children(ancestorID) {
		if !child.HasTag(locations.TagVillage) {
			continue
		}
		if ref.Name == "" || names.SameFold(child.Name, ref.Name) {
			continue
		}

		logger.Debug().Str("location_id", child.ID).Str("name", child.Name).Msg("Realigning child location")

		from := child.Name
		if err := r.client.Rename(ctx, child.ID, ref.Name); err != nil {
			logger.Error().Err(err).Str("location_id", child.ID).Msg("Failed to rename child location")
			errs = append(errs, err)
			continue
		}
		child.Name = ref.Name
		r.recorder.Renamed(child, from)

		if _, err := r.setCode(ctx, &logger, child, ref.Code); err != nil {
			errs = append(errs, err)
		}

		if newParentID != "" && child.ParentID != newParentID {
			fromParent := child.ParentID
			if err := r.client.Reparent(ctx, child.ID, newParentID); err != nil {
				logger.Error().Err(err).Str("location_id", child.ID).Msg("Failed to reparent child location")
				errs = append(errs, err)
			} else {
				child.ParentID = newParentID
				r.recorder.Reparented(child, fromParent)
			}
		}

		n++
		r.recorder.Realigned(child)
		logger.Info().Str("location_id", child.ID).Str("name", child.Name).Msg("Realigned child location")
	}
	return n, errors.Join(errs...)
}

// RealignByCode repairs villages under ancestorID that already carry
// ref.Code. The stored code is rewritten to the upstream spelling if it
// differs, then the village is renamed when its name has drifted.
func (r *Reconciler) RealignByCode(ctx context.Context, ancestorID string, ref VillageRef) (int, error) {
	if ref.Code == "" {
		return 0, nil
	}
	logger := logging.FromContext(ctx).With().
		Str("ancestor_id", ancestorID).
		Str("village_code", ref.Code).
		Logger()

	want := locations.NormalizeCode(ref.Code)
	var (
		n    int
		errs []error
	)
	for _, child := range r.index.Children(ancestorID) {
		if !child.HasTag(locations.TagVillage) {
			continue
		}
		current, _ := child.Attribute(locations.AttrCode)
		if locations.NormalizeCode(current) != want {
			continue
		}

		changed, err := r.setCode(ctx, &logger, child, ref.Code)
		if err != nil {
			errs = append(errs, err)
		}

		if ref.Name != "" && !names.SameFold(child.Name, ref.Name) {
			from := child.Name
			if err := r.client.Rename(ctx, child.ID, ref.Name); err != nil {
				logger.Error().Err(err).Str("location_id", child.ID).Msg("Failed to rename child location")
				errs = append(errs, err)
			} else {
				child.Name = ref.Name
				r.recorder.Renamed(child, from)
				changed = true
			}
		}

		if changed {
			n++
			r.recorder.Realigned(child)
			logger.Info().Str("location_id", child.ID).Str("name", child.Name).Msg("Realigned child location")
		}
	}
	return n, errors.Join(errs...)
}

// setCode writes code to the village's general code attribute. It is a
// no-op when the stored value already matches exactly, and refuses codes the
// index assigns to another location. It reports whether a write was made.
func (r *Reconciler) setCode(ctx context.Context, logger *zerolog.Logger, loc *locations.Location, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	current, _ := loc.Attribute(locations.AttrCode)
	if current == code {
		return false, nil
	}
	if owner, ok := r.index.ByCode(code); ok && owner.ID != loc.ID {
		r.anomaly(logger, Anomaly{
			Kind:       AnomalyCodeConflict,
			Code:       code,
			Name:       loc.Name,
			Tag:        locations.TagVillage,
			LocationID: loc.ID,
			Detail:     "code already belongs to " + owner.ID,
		}, "Skipping code update owned by another location")
		return false, nil
	}

	if err := r.client.SetAttribute(ctx, loc.ID, r.attrs.Code, code); err != nil {
		logger.Error().Err(err).Str("location_id", loc.ID).Msg("Failed to update code attribute")
		return false, err
	}
	if err := r.index.RecordCodeChanged(current, code, loc); err != nil {
		return true, err
	}
	loc.SetAttribute(locations.AttrCode, code)
	return true, nil
}
