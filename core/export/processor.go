package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"content-porter/core/document"
	"content-porter/core/schema"
	"content-porter/core/store"

	"go.uber.org/zap"
)

// Processor walks the store and produces an interchange document. One
// processor may serve many runs; all per-run state lives in the Context.
type Processor struct {
	registry  *schema.Registry
	store     store.Store
	logger    *zap.Logger
	publicURL string
}

// NewProcessor creates an export processor. publicURL prefixes relative
// media URLs so exported references resolve outside this environment.
func NewProcessor(registry *schema.Registry, st store.Store, logger *zap.Logger, publicURL string) *Processor {
	return &Processor{
		registry:  registry,
		store:     st,
		logger:    logger,
		publicURL: publicURL,
	}
}

// selection narrows which records of a content type a pass exports.
// Relation-discovered passes carry only document identities.
type selection struct {
	documentIDs []string
	filterField string
	filterValue any
	sort        string
}

// Run exports the selected content, following relations breadth-first up to
// the configured depth, and returns the serialized document.
func (p *Processor) Run(ctx context.Context, opts Options) (*document.Document, error) {
	opts = opts.normalized()
	ec := newContext()

	var roots []string
	if opts.ContentType != "" {
		if !p.registry.Has(opts.ContentType) {
			return nil, fmt.Errorf("unknown content type %q", opts.ContentType)
		}
		roots = []string{opts.ContentType}
	} else {
		roots = p.registry.ContentTypes()
	}

	rootSel := selection{
		documentIDs: opts.DocumentIDs,
		filterField: opts.FilterField,
		filterValue: opts.FilterValue,
		sort:        opts.Sort,
	}
	for _, contentType := range roots {
		if err := p.exportContentType(ctx, ec, contentType, rootSel, opts); err != nil {
			return nil, err
		}
	}

	// Breadth-first passes over relation-discovered identities. Each pass
	// consumes one level of the chain, so depth bounds chain length.
	for pass := 0; pass < opts.Depth; pass++ {
		frontier := ec.drainFrontier()
		if len(frontier) == 0 {
			break
		}
		contentTypes := make([]string, 0, len(frontier))
		for contentType := range frontier {
			contentTypes = append(contentTypes, contentType)
		}
		sort.Strings(contentTypes)
		for _, contentType := range contentTypes {
			ids := frontier[contentType]
			sort.Strings(ids)
			if err := p.exportContentType(ctx, ec, contentType, selection{documentIDs: ids}, opts); err != nil {
				return nil, err
			}
		}
	}

	return &document.Document{Version: document.Version, Data: ec.exported}, nil
}

func (p *Processor) exportContentType(ctx context.Context, ec *Context, contentType string, sel selection, opts Options) error {
	sch, err := p.registry.Get(contentType)
	if err != nil {
		return err
	}

	// Identifier misconfiguration is a precondition failure; nothing is
	// serialized for a content type that cannot be matched on the far side.
	// Single types hold at most one record and skip the validation.
	if _, err := p.identifierField(ec, sch); err != nil {
		return err
	}

	locale := ""
	if !opts.ExportAllLocales {
		locale = store.DefaultLocale
	}

	query := store.Query{
		Locale:      locale,
		DocumentIDs: sel.documentIDs,
		Field:       sel.filterField,
		Value:       sel.filterValue,
		Sort:        sel.sort,
	}

	query.Status = store.StatusDraft
	drafts, err := p.store.FindMany(ctx, contentType, query)
	if err != nil {
		return err
	}
	query.Status = store.StatusPublished
	published, err := p.store.FindMany(ctx, contentType, query)
	if err != nil {
		return err
	}

	// Group variants by document identity, drafts first so traversal order
	// stays deterministic; published-only documents follow.
	var order []string
	draftsByDoc := make(map[string][]*store.Entry)
	pubsByDoc := make(map[string][]*store.Entry)
	for _, e := range drafts {
		if _, seen := draftsByDoc[e.DocumentID]; !seen {
			order = append(order, e.DocumentID)
		}
		draftsByDoc[e.DocumentID] = append(draftsByDoc[e.DocumentID], e)
	}
	for _, e := range published {
		if _, seenDraft := draftsByDoc[e.DocumentID]; !seenDraft {
			if _, seen := pubsByDoc[e.DocumentID]; !seen {
				order = append(order, e.DocumentID)
			}
		}
		pubsByDoc[e.DocumentID] = append(pubsByDoc[e.DocumentID], e)
	}

	for _, documentID := range order {
		if !ec.markProcessed(contentType, documentID) {
			continue
		}

		entry := document.VersionedEntry{}
		draftVersions := make(map[string]document.FlatRecord)
		publishedVersions := make(map[string]document.FlatRecord)

		for _, e := range pubsByDoc[documentID] {
			flat := p.flattenEntry(ctx, ec, sch, e, opts)
			publishedVersions[e.Locale] = flat
		}
		for _, e := range draftsByDoc[documentID] {
			flat := p.flattenEntry(ctx, ec, sch, e, opts)
			// Draft travels only when it differs from published; identical
			// versions would just inflate the document.
			if pub, ok := publishedVersions[e.Locale]; ok && equalIgnoringPublishedAt(flat, pub) {
				continue
			}
			draftVersions[e.Locale] = flat
		}

		if len(draftVersions) > 0 {
			entry.Draft = draftVersions
		}
		if len(publishedVersions) > 0 {
			entry.Published = publishedVersions
		}
		if entry.Draft == nil && entry.Published == nil {
			continue
		}
		ec.append(contentType, entry)
	}

	return nil
}

// identifierField resolves and caches the identifier field for a schema.
func (p *Processor) identifierField(ec *Context, sch *schema.Schema) (string, error) {
	if field, ok := ec.idFields[sch.UID]; ok {
		return field, nil
	}
	var field string
	if sch.IsSingleType() {
		field = schema.FallbackIdentifierField(sch)
	} else {
		var err error
		field, err = schema.ResolveIdentifierField(sch)
		if err != nil {
			return "", err
		}
	}
	ec.idFields[sch.UID] = field
	return field, nil
}

func (p *Processor) flattenEntry(ctx context.Context, ec *Context, sch *schema.Schema, e *store.Entry, opts Options) document.FlatRecord {
	flat := p.flattenData(ctx, ec, sch, e.Data, opts, false)
	if e.Status == store.StatusPublished && e.PublishedAt != nil {
		flat[publishedAtField] = e.PublishedAt.UTC().Format(time.RFC3339)
	}
	return flat
}

const publishedAtField = "publishedAt"

// equalIgnoringPublishedAt compares two flattened records, ignoring the
// publish timestamp (publishing an unchanged draft only moves that field).
func equalIgnoringPublishedAt(a, b document.FlatRecord) bool {
	return encodeWithout(a, publishedAtField) == encodeWithout(b, publishedAtField)
}
