package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"content-porter/core/document"
	"content-porter/core/schema"
	"content-porter/core/store"
	"content-porter/core/utils"

	"go.uber.org/zap"
)

// errSkipAttribute marks an attribute that should be left out of the output
// entirely (as opposed to degraded to null).
var errSkipAttribute = errors.New("attribute not exported")

// flattenData walks a record body through its schema and returns the
// portable representation. Attribute failures never abort the record: the
// value degrades to null and the walk continues.
func (p *Processor) flattenData(ctx context.Context, ec *Context, sch *schema.Schema, data map[string]any, opts Options, inComponent bool) document.FlatRecord {
	out := make(document.FlatRecord, len(data))
	for _, attr := range sch.Attributes {
		value, ok := data[attr.Name]
		if !ok {
			continue
		}
		if value == nil {
			out[attr.Name] = nil
			continue
		}
		flattened, err := p.flattenAttribute(ctx, ec, attr, value, opts, inComponent)
		if errors.Is(err, errSkipAttribute) {
			continue
		}
		if err != nil {
			p.logger.Warn("Attribute flattening failed",
				zap.String("content_type", sch.UID),
				zap.String("attribute", attr.Name),
				zap.Error(err),
			)
			out[attr.Name] = nil
			continue
		}
		out[attr.Name] = flattened
	}
	return out
}

// flattenAttribute dispatches on the attribute kind. The kind set is closed,
// so an unhandled kind is a bug, not data.
func (p *Processor) flattenAttribute(ctx context.Context, ec *Context, attr schema.Attribute, value any, opts Options, inComponent bool) (any, error) {
	switch attr.Kind {
	case schema.KindScalar:
		return value, nil
	case schema.KindRelation:
		return p.flattenRelation(ctx, ec, attr, value, opts, inComponent)
	case schema.KindComponent:
		return p.flattenComponent(ctx, ec, attr, value, opts)
	case schema.KindDynamicZone:
		return p.flattenDynamicZone(ctx, ec, attr, value, opts)
	case schema.KindMedia:
		return p.flattenMedia(ctx, attr, value)
	default:
		return nil, fmt.Errorf("unhandled attribute kind %q", attr.Kind)
	}
}

func (p *Processor) flattenRelation(ctx context.Context, ec *Context, attr schema.Attribute, value any, opts Options, inComponent bool) (any, error) {
	if !opts.ExportRelations {
		return nil, errSkipAttribute
	}
	// Component relations can be suppressed independently to bound output.
	if inComponent && !opts.DeepPopulateComponentRelations {
		return nil, nil
	}

	target, err := p.registry.Get(attr.Target)
	if err != nil {
		return nil, err
	}
	// A target without a portable identity cannot be referenced across
	// environments; the relation is dropped rather than leaking internal ids.
	if !schema.RelationExportable(target) {
		return nil, nil
	}
	targetField, err := p.identifierField(ec, target)
	if err != nil {
		return nil, err
	}

	ids, err := asStringSlice(value)
	if err != nil {
		return nil, err
	}

	identifiers := make([]string, 0, len(ids))
	for _, documentID := range ids {
		related, err := p.store.FindOne(ctx, attr.Target, store.Query{DocumentIDs: []string{documentID}})
		if err != nil {
			return nil, fmt.Errorf("related %s %s: %w", attr.Target, documentID, err)
		}
		idValue, ok := related.Data[targetField]
		if !ok {
			return nil, fmt.Errorf("related %s %s has no %s value", attr.Target, documentID, targetField)
		}
		identifiers = append(identifiers, utils.ToString(idValue))
		if opts.DeepPopulateRelations {
			ec.discover(attr.Target, documentID)
		}
	}

	if attr.Multiple {
		return identifiers, nil
	}
	if len(identifiers) == 0 {
		return nil, nil
	}
	return identifiers[0], nil
}

func (p *Processor) flattenComponent(ctx context.Context, ec *Context, attr schema.Attribute, value any, opts Options) (any, error) {
	comp, err := p.registry.Get(attr.Target)
	if err != nil {
		return nil, err
	}
	if attr.Repeatable {
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("repeatable component value is %T, expected array", value)
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("component entry is %T, expected object", item)
			}
			out = append(out, p.flattenData(ctx, ec, comp, m, opts, true))
		}
		return out, nil
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("component value is %T, expected object", value)
	}
	return p.flattenData(ctx, ec, comp, m, opts, true), nil
}

// dynamicZoneComponentKey names the component of each dynamic-zone entry.
const dynamicZoneComponentKey = "__component"

func (p *Processor) flattenDynamicZone(ctx context.Context, ec *Context, attr schema.Attribute, value any, opts Options) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("dynamic zone value is %T, expected array", value)
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("dynamic zone entry is %T, expected object", item)
		}
		compUID, _ := m[dynamicZoneComponentKey].(string)
		if compUID == "" {
			return nil, fmt.Errorf("dynamic zone entry has no %s", dynamicZoneComponentKey)
		}
		comp, err := p.registry.Get(compUID)
		if err != nil {
			return nil, err
		}
		flat := p.flattenData(ctx, ec, comp, m, opts, true)
		flat[dynamicZoneComponentKey] = compUID
		out = append(out, flat)
	}
	return out, nil
}

func (p *Processor) flattenMedia(ctx context.Context, attr schema.Attribute, value any) (any, error) {
	ids, err := asStringSlice(value)
	if err != nil {
		return nil, err
	}
	infos := make([]any, 0, len(ids))
	for _, documentID := range ids {
		media, err := p.store.FindMediaByDocumentID(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if media == nil {
			return nil, fmt.Errorf("media %s not found", documentID)
		}
		infos = append(infos, p.mediaValue(media))
	}
	if attr.Multiple {
		return infos, nil
	}
	if len(infos) == 0 {
		return nil, nil
	}
	return infos[0], nil
}

// mediaValue exports media metadata only; binary content never travels.
func (p *Processor) mediaValue(media *store.Media) map[string]any {
	out := map[string]any{
		"url":  p.absoluteURL(media.URL),
		"name": media.Name,
		"hash": media.Hash,
	}
	if media.AlternativeText != "" {
		out["alternativeText"] = media.AlternativeText
	}
	if media.Caption != "" {
		out["caption"] = media.Caption
	}
	if !media.CreatedAt.IsZero() {
		out["createdAt"] = media.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !media.UpdatedAt.IsZero() {
		out["updatedAt"] = media.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

// absoluteURL rewrites store-relative media URLs against the configured
// public hostname so the reference resolves from any environment.
func (p *Processor) absoluteURL(u string) string {
	if u == "" || strings.Contains(u, "://") {
		return u
	}
	base := strings.TrimSuffix(p.publicURL, "/")
	if base == "" {
		return u
	}
	return base + "/" + strings.TrimPrefix(u, "/")
}

// asStringSlice normalizes a stored reference value (single id or id list)
// into a slice of ids.
func asStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("reference list holds %T, expected string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("reference value is %T, expected string or list", value)
	}
}

// encodeWithout serializes a record with one key removed, for comparison.
// JSON encoding orders map keys, so equal maps encode identically.
func encodeWithout(record document.FlatRecord, key string) string {
	if _, ok := record[key]; ok {
		clone := make(document.FlatRecord, len(record))
		for k, v := range record {
			if k == key {
				continue
			}
			clone[k] = v
		}
		record = clone
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Sprintf("%v", record)
	}
	return string(data)
}
