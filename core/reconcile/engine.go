package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"content-porter/core/document"
	"content-porter/core/schema"
	"content-porter/core/store"
	"content-porter/core/utils"
)

// Engine reconciles interchange documents against the store.
type Engine struct {
	registry *schema.Registry
	store    store.Store
	cacheTTL time.Duration
	cache    *indexCache
}

// NewEngine creates a reconcile engine. A zero cacheTTL disables index
// caching, which is the right choice when the store is about to change.
func NewEngine(registry *schema.Registry, st store.Store, cacheTTL time.Duration) *Engine {
	return &Engine{
		registry: registry,
		store:    st,
		cacheTTL: cacheTTL,
		cache:    newIndexCache(),
	}
}

// Invalidate drops the engine's cached store indices.
func (e *Engine) Invalidate() {
	e.cache.invalidate()
}

// Plan reconciles every content type in the document against the store and
// derives the actions an import with the given policy would take. Nothing
// is written.
func (e *Engine) Plan(ctx context.Context, doc *document.Document, opts Options) (*Plan, error) {
	plan := &Plan{}

	contentTypes := make([]string, 0, len(doc.Data))
	for contentType := range doc.Data {
		contentTypes = append(contentTypes, contentType)
	}
	sort.Strings(contentTypes)

	for _, contentType := range contentTypes {
		if err := e.planContentType(ctx, plan, contentType, doc.Data[contentType], opts); err != nil {
			return nil, err
		}
	}

	plan.Summary.TotalRecords = len(plan.Results)
	return plan, nil
}

func (e *Engine) planContentType(ctx context.Context, plan *Plan, contentType string, entries []document.VersionedEntry, opts Options) error {
	sch, err := e.registry.Get(contentType)
	if err != nil {
		return err
	}
	idField, err := schema.ResolveIdentifierField(sch)
	if err != nil {
		return err
	}

	payload := buildPayloadIndex(entries, idField)
	index, err := e.cache.getOrBuild(ctx, e.store, contentType, idField, e.cacheTTL)
	if err != nil {
		return err
	}

	union := make(map[string]struct{}, len(payload))
	for key := range payload {
		union[key] = struct{}{}
	}
	for key := range index.Draft {
		union[key] = struct{}{}
	}
	for key := range index.Published {
		union[key] = struct{}{}
	}

	keys := make([]string, 0, len(union))
	for key := range union {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		record, inPayload := payload[key]
		_, inDraft := index.Draft[key]
		published, inPublished := index.Published[key]

		result := Result{
			ContentType:      contentType,
			Key:              key,
			PayloadPresent:   inPayload,
			DraftPresent:     inDraft,
			PublishedPresent: inPublished,
			Mismatch:         []string{},
		}
		if inPayload && inPublished {
			result.Mismatch = compareScalars(sch, record, published)
		}
		plan.Results = append(plan.Results, result)

		switch {
		case !inPayload:
			plan.Summary.OnlyInStore++
		case !inDraft && !inPublished:
			plan.Summary.MissingInStore++
			plan.Actions = append(plan.Actions, Action{
				Type:        ActionCreate,
				ContentType: contentType,
				Key:         key,
				Reason:      "record missing in store",
			})
			plan.Summary.Creates++
		case opts.ExistingAction == "update":
			plan.Actions = append(plan.Actions, Action{
				Type:        ActionUpdate,
				ContentType: contentType,
				Key:         key,
				Reason:      "record exists, policy is update",
			})
			plan.Summary.Updates++
		default:
			plan.Actions = append(plan.Actions, Action{
				Type:        ActionSkip,
				ContentType: contentType,
				Key:         key,
				Reason:      fmt.Sprintf("record exists, policy is %s", opts.ExistingAction),
			})
			plan.Summary.Skips++
		}
		if len(result.Mismatch) > 0 {
			plan.Summary.Mismatches++
		}
	}
	return nil
}

// buildPayloadIndex indexes the payload entries by identifier value,
// preferring the published version of a record over its draft.
func buildPayloadIndex(entries []document.VersionedEntry, idField string) map[string]document.FlatRecord {
	index := make(map[string]document.FlatRecord, len(entries))
	for _, entry := range entries {
		record := pickVersion(entry)
		if record == nil {
			continue
		}
		key, ok := record[idField]
		if !ok {
			continue
		}
		index[utils.ToString(key)] = record
	}
	return index
}

func pickVersion(entry document.VersionedEntry) document.FlatRecord {
	for _, versions := range []map[string]document.FlatRecord{entry.Published, entry.Draft} {
		if len(versions) == 0 {
			continue
		}
		if record, ok := versions[store.DefaultLocale]; ok {
			return record
		}
		locales := make([]string, 0, len(versions))
		for locale := range versions {
			locales = append(locales, locale)
		}
		sort.Strings(locales)
		return versions[locales[0]]
	}
	return nil
}

// compareScalars diffs scalar attributes between a payload record and a
// store entry. Relations and media carry different representations on each
// side and are not comparable here.
func compareScalars(sch *schema.Schema, record document.FlatRecord, entry *store.Entry) []string {
	mismatches := []string{}
	for _, attr := range sch.Attributes {
		if attr.Kind != schema.KindScalar {
			continue
		}
		incoming, inRecord := record[attr.Name]
		current, inStore := entry.Data[attr.Name]
		if !inRecord || !inStore {
			continue
		}
		a := utils.ToString(incoming)
		b := utils.ToString(current)
		if a != b {
			mismatches = append(mismatches, fmt.Sprintf("%s: payload=%s store=%s", attr.Name, a, b))
		}
	}
	return mismatches
}

// identifierOf extracts an entry's identifier value as a string.
func identifierOf(e *store.Entry, idField string) string {
	value, ok := e.Data[idField]
	if !ok || value == nil {
		return ""
	}
	return utils.ToString(value)
}
