package importer

import (
	"context"
	"errors"
	"fmt"

	"content-porter/core/document"
	"content-porter/core/schema"
	"content-porter/core/store"

	"go.uber.org/zap"
)

// missingRelationError marks a relation value whose target has no matching
// record. Whether it fails the record or degrades to null is a run option.
type missingRelationError struct {
	Attribute string
	Target    string
	Value     string
}

func (e *missingRelationError) Error() string {
	return fmt.Sprintf("relation %s: no %s with identifier %q", e.Attribute, e.Target, e.Value)
}

// rehydrate is the inverse of the export flattening walk: portable
// identifier references become store document identities, media metadata
// becomes media records, components and dynamic zones recurse. The returned
// map is the store body for one record version.
//
// allowNewTargets gates relation targets that were first created during
// this same run; when false such a target counts as missing.
func (p *Processor) rehydrate(ctx context.Context, ic *Context, sch *schema.Schema, record document.FlatRecord, opts Options, allowNewTargets bool) (map[string]any, error) {
	out := make(map[string]any, len(record))
	for _, attr := range sch.Attributes {
		value, ok := record[attr.Name]
		if !ok {
			continue
		}
		if value == nil {
			out[attr.Name] = nil
			continue
		}
		resolved, err := p.rehydrateAttribute(ctx, ic, attr, value, opts, allowNewTargets)
		if err != nil {
			return nil, err
		}
		out[attr.Name] = resolved
	}
	return out, nil
}

// rehydrateAttribute dispatches on the attribute kind. The kind set is
// closed, so an unhandled kind is a bug, not data.
func (p *Processor) rehydrateAttribute(ctx context.Context, ic *Context, attr schema.Attribute, value any, opts Options, allowNewTargets bool) (any, error) {
	switch attr.Kind {
	case schema.KindScalar:
		return value, nil
	case schema.KindRelation:
		return p.rehydrateRelation(ctx, ic, attr, value, opts, allowNewTargets)
	case schema.KindComponent:
		return p.rehydrateComponent(ctx, ic, attr, value, opts, allowNewTargets)
	case schema.KindDynamicZone:
		return p.rehydrateDynamicZone(ctx, ic, attr, value, opts, allowNewTargets)
	case schema.KindMedia:
		return p.rehydrateMedia(ctx, attr, value), nil
	default:
		return nil, fmt.Errorf("unhandled attribute kind %q", attr.Kind)
	}
}

func (p *Processor) rehydrateRelation(ctx context.Context, ic *Context, attr schema.Attribute, value any, opts Options, allowNewTargets bool) (any, error) {
	target, err := p.registry.Get(attr.Target)
	if err != nil {
		return nil, err
	}
	targetField, err := p.identifierField(target)
	if err != nil {
		return nil, err
	}

	values, err := relationValues(value)
	if err != nil {
		return nil, fmt.Errorf("relation %s: %w", attr.Name, err)
	}

	documentIDs := make([]string, 0, len(values))
	for _, idValue := range values {
		documentID, err := p.resolveTarget(ctx, ic, attr, target.UID, targetField, idValue, allowNewTargets)
		if err != nil {
			var missing *missingRelationError
			if errors.As(err, &missing) && opts.IgnoreMissingRelations {
				p.logger.Warn("Dropping unresolved relation",
					zap.String("attribute", attr.Name),
					zap.String("target", attr.Target),
					zap.String("identifier", idValue),
				)
				continue
			}
			return nil, err
		}
		documentIDs = append(documentIDs, documentID)
	}

	if attr.Multiple {
		return documentIDs, nil
	}
	if len(documentIDs) == 0 {
		return nil, nil
	}
	return documentIDs[0], nil
}

// resolveTarget maps one identifier value to a store document identity,
// answering from this run's identity cache before querying the store.
func (p *Processor) resolveTarget(ctx context.Context, ic *Context, attr schema.Attribute, target, targetField, idValue string, allowNewTargets bool) (string, error) {
	if documentID, ok := ic.lookupDocument(target, idValue); ok {
		if !allowNewTargets && ic.wasCreated(documentID) {
			return "", &missingRelationError{Attribute: attr.Name, Target: target, Value: idValue}
		}
		return documentID, nil
	}
	existing, err := p.store.FindOne(ctx, target, store.Query{Field: targetField, Value: idValue})
	switch {
	case err == nil:
		ic.recordDocument(target, idValue, existing.DocumentID)
		return existing.DocumentID, nil
	case errors.Is(err, store.ErrNotFound):
		return "", &missingRelationError{Attribute: attr.Name, Target: target, Value: idValue}
	default:
		return "", err
	}
}

func (p *Processor) rehydrateComponent(ctx context.Context, ic *Context, attr schema.Attribute, value any, opts Options, allowNewTargets bool) (any, error) {
	comp, err := p.registry.Get(attr.Target)
	if err != nil {
		return nil, err
	}
	if attr.Repeatable {
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("repeatable component %s is %T, expected array", attr.Name, value)
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("component entry in %s is %T, expected object", attr.Name, item)
			}
			resolved, err := p.rehydrate(ctx, ic, comp, m, opts, allowNewTargets)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
		}
		return out, nil
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("component %s is %T, expected object", attr.Name, value)
	}
	return p.rehydrate(ctx, ic, comp, m, opts, allowNewTargets)
}

func (p *Processor) rehydrateDynamicZone(ctx context.Context, ic *Context, attr schema.Attribute, value any, opts Options, allowNewTargets bool) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("dynamic zone %s is %T, expected array", attr.Name, value)
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("dynamic zone entry in %s is %T, expected object", attr.Name, item)
		}
		compUID, _ := m[dynamicZoneComponentKey].(string)
		if compUID == "" {
			return nil, fmt.Errorf("dynamic zone entry in %s has no %s", attr.Name, dynamicZoneComponentKey)
		}
		comp, err := p.registry.Get(compUID)
		if err != nil {
			return nil, err
		}
		resolved, err := p.rehydrate(ctx, ic, comp, m, opts, allowNewTargets)
		if err != nil {
			return nil, err
		}
		resolved[dynamicZoneComponentKey] = compUID
		out = append(out, resolved)
	}
	return out, nil
}

// dynamicZoneComponentKey names the component of each dynamic-zone entry.
const dynamicZoneComponentKey = "__component"

// rehydrateMedia resolves media metadata into media document identities.
// Media failures never fail the record: the field degrades to null.
func (p *Processor) rehydrateMedia(ctx context.Context, attr schema.Attribute, value any) any {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	documentIDs := make([]string, 0, len(items))
	for _, item := range items {
		info, ok := document.MediaInfoFromValue(item)
		if !ok {
			p.logger.Warn("Malformed media value", zap.String("attribute", attr.Name))
			continue
		}
		if p.media == nil {
			p.logger.Warn("Media rehydration not configured, dropping media reference",
				zap.String("attribute", attr.Name),
				zap.String("name", info.Name),
			)
			continue
		}
		documentID, err := p.media.Resolve(ctx, info)
		if err != nil {
			p.logger.Warn("Media resolution failed",
				zap.String("attribute", attr.Name),
				zap.String("name", info.Name),
				zap.String("url", info.URL),
				zap.Error(err),
			)
			continue
		}
		documentIDs = append(documentIDs, documentID)
	}
	if attr.Multiple {
		return documentIDs
	}
	if len(documentIDs) == 0 {
		return nil
	}
	return documentIDs[0]
}

// relationValues normalizes a portable relation value (single identifier or
// identifier list) into a slice.
func relationValues(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("identifier list holds %T, expected string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("identifier value is %T, expected string or list", value)
	}
}
