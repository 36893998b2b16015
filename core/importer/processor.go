package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"content-porter/core/document"
	"content-porter/core/reconcile"
	"content-porter/core/schema"
	"content-porter/core/store"
	"content-porter/core/utils"

	"go.uber.org/zap"
)

// Run phases, in order.
const (
	PhaseValidating = "validating"
	PhaseProcessing = "processing"
	PhaseCompleted  = "completed"
	PhaseError      = "error"
)

// Processor applies interchange documents to the store. One processor may
// serve many runs; all per-run state lives in the Context.
type Processor struct {
	registry *schema.Registry
	store    store.Store
	media    *MediaResolver
	logger   *zap.Logger
}

// NewProcessor creates an import processor. media may be nil when media
// rehydration is not configured; media fields then degrade to null.
func NewProcessor(registry *schema.Registry, st store.Store, media *MediaResolver, logger *zap.Logger) *Processor {
	return &Processor{
		registry: registry,
		store:    st,
		media:    media,
		logger:   logger,
	}
}

// Process runs a synchronous import of the raw payload.
func (p *Processor) Process(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	return p.ProcessWithProgress(ctx, raw, opts, nil)
}

// ProcessWithProgress runs an import, pushing phase/percent updates into the
// progress sink when one is given. Structural validation errors come back
// inside the result without any writes; configuration errors abort with a
// distinct error before any writes.
func (p *Processor) ProcessWithProgress(ctx context.Context, raw []byte, opts Options, progress *Progress) (*Result, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}

	progress.Publish(PhaseValidating, "validating payload", 0)

	doc, validationErrs := document.Parse(raw, opts.Format)
	if len(validationErrs) > 0 {
		return &Result{Failures: []Failure{}, Errors: validationErrs}, nil
	}

	contentTypes, validationErrs := p.selectContentTypes(doc, opts)
	if len(validationErrs) > 0 {
		return &Result{Failures: []Failure{}, Errors: validationErrs}, nil
	}

	// Identifier configuration is checked for every content type up front,
	// so a misconfiguration can never surface halfway through the writes.
	idFields := make(map[string]string, len(contentTypes))
	for _, contentType := range contentTypes {
		sch, err := p.registry.Get(contentType)
		if err != nil {
			return nil, err
		}
		field, err := p.identifierField(sch)
		if err != nil {
			return nil, err
		}
		idFields[contentType] = field
	}

	if opts.DryRun {
		engine := reconcile.NewEngine(p.registry, p.store, 0)
		plan, err := engine.Plan(ctx, doc, reconcile.Options{ExistingAction: string(opts.ExistingAction)})
		if err != nil {
			return nil, err
		}
		return &Result{Failures: []Failure{}, Plan: plan}, nil
	}

	ic := newContext()
	total := countVersions(doc, contentTypes)
	processed := 0

	progress.Publish(PhaseProcessing, "importing records", 0)

	for _, contentType := range contentTypes {
		sch, _ := p.registry.Get(contentType)
		idField := idFields[contentType]
		for i, entry := range doc.Data[contentType] {
			// Published first: a draft update must never regress a more
			// current published state mid-run.
			for _, status := range []store.Status{store.StatusPublished, store.StatusDraft} {
				versions := entry.Published
				if status == store.StatusDraft {
					versions = entry.Draft
				}
				for _, locale := range sortedLocales(versions) {
					record := versions[locale]
					if err := p.importVersion(ctx, ic, sch, idField, record, status, locale, opts); err != nil {
						ic.fail(Failure{
							Error: err.Error(),
							Data:  record,
							Path:  fmt.Sprintf("%s[%d].%s.%s", contentType, i, status, locale),
						})
					}
					processed++
					if total > 0 {
						progress.Publish(PhaseProcessing,
							fmt.Sprintf("importing %s", contentType),
							float64(processed)/float64(total)*100)
					}
				}
			}
		}
	}

	result := &Result{
		Created:  len(ic.created),
		Updated:  len(ic.updated),
		Skipped:  len(ic.skipped),
		Failures: ic.failures,
	}
	if result.Failures == nil {
		result.Failures = []Failure{}
	}
	return result, nil
}

// selectContentTypes orders and validates the content types to import.
// The order is deterministic (sorted) so relation-resolution behaves the
// same on every run of the same payload.
func (p *Processor) selectContentTypes(doc *document.Document, opts Options) ([]string, []document.ValidationError) {
	var errs []document.ValidationError

	if opts.ContentType != "" {
		if _, ok := doc.Data[opts.ContentType]; !ok {
			errs = append(errs, document.ValidationError{
				Path:    "data",
				Message: fmt.Sprintf("payload has no entries for content type %q", opts.ContentType),
			})
			return nil, errs
		}
		if !p.registry.Has(opts.ContentType) {
			errs = append(errs, document.ValidationError{
				Path:    "data." + opts.ContentType,
				Message: "unknown content type",
			})
			return nil, errs
		}
		return []string{opts.ContentType}, nil
	}

	contentTypes := make([]string, 0, len(doc.Data))
	for contentType := range doc.Data {
		if !p.registry.Has(contentType) {
			errs = append(errs, document.ValidationError{
				Path:    "data." + contentType,
				Message: "unknown content type",
			})
			continue
		}
		contentTypes = append(contentTypes, contentType)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	sort.Strings(contentTypes)
	return contentTypes, nil
}

func (p *Processor) identifierField(sch *schema.Schema) (string, error) {
	if sch.IsSingleType() {
		return schema.FallbackIdentifierField(sch), nil
	}
	return schema.ResolveIdentifierField(sch)
}

// importVersion applies one (status, locale) version of a logical record.
// A returned error becomes a failure entry; the run continues.
func (p *Processor) importVersion(ctx context.Context, ic *Context, sch *schema.Schema, idField string, record document.FlatRecord, status store.Status, locale string, opts Options) error {
	idRaw, ok := record[idField]
	if !ok || idRaw == nil {
		return fmt.Errorf("record has no %s value", idField)
	}
	idValue := utils.ToString(idRaw)

	documentID, fromRun := ic.lookupDocument(sch.UID, idValue)
	if !fromRun {
		existing, err := p.store.FindOne(ctx, sch.UID, store.Query{Field: idField, Value: idValue})
		switch {
		case err == nil:
			documentID = existing.DocumentID
		case errors.Is(err, store.ErrNotFound):
			// create path
		default:
			return err
		}
	}

	isNew := documentID == ""
	// A record created earlier in this run keeps receiving its remaining
	// variants regardless of the existing-record policy; the policy guards
	// records that pre-existed the run.
	continuation := !isNew && ic.wasCreated(documentID)

	if !isNew && !continuation {
		switch opts.ExistingAction {
		case ActionUpdate:
			// fall through to write
		case ActionSkip, ActionWarn:
			if opts.AllowLocaleUpdates {
				existing, err := p.store.FindMany(ctx, sch.UID, store.Query{
					DocumentIDs: []string{documentID},
					Locale:      locale,
				})
				if err != nil {
					return err
				}
				if len(existing) == 0 {
					// New locale variant: allowed through even on skip.
					break
				}
			}
			if !ic.handled(documentID) && ic.markSkipped(sch.UID, idValue) && opts.ExistingAction == ActionWarn {
				ic.fail(Failure{
					Error: fmt.Sprintf("%s %q already exists, left untouched", sch.UID, idValue),
					Data:  record,
				})
			}
			ic.recordDocument(sch.UID, idValue, documentID)
			return nil
		}
	}

	// New relations (targets created in this same run) are only allowed
	// onto pre-existing records when the flag permits them.
	allowNewTargets := isNew || continuation || !opts.DisallowNewRelations
	data, err := p.rehydrate(ctx, ic, sch, record, opts, allowNewTargets)
	if err != nil {
		return err
	}

	entry := &store.Entry{
		DocumentID:  documentID,
		ContentType: sch.UID,
		Locale:      locale,
		Status:      status,
		Data:        data,
	}
	if status == store.StatusPublished {
		entry.PublishedAt = publishedAtOf(record)
	}

	written, err := p.writeVariant(ctx, entry)
	if err != nil {
		return err
	}
	documentID = written.DocumentID

	if isNew {
		ic.markCreated(documentID)
	} else {
		ic.markUpdated(documentID)
		ic.unskip(sch.UID, idValue)
	}
	ic.recordDocument(sch.UID, idValue, documentID)
	return nil
}

// writeVariant updates the (document, locale, status) variant when it
// exists, otherwise creates it.
func (p *Processor) writeVariant(ctx context.Context, entry *store.Entry) (*store.Entry, error) {
	if entry.DocumentID != "" {
		_, err := p.store.FindOne(ctx, entry.ContentType, store.Query{
			DocumentIDs: []string{entry.DocumentID},
			Locale:      entry.Locale,
			Status:      entry.Status,
		})
		switch {
		case err == nil:
			return p.store.Update(ctx, entry)
		case errors.Is(err, store.ErrNotFound):
			// fall through to create
		default:
			return nil, err
		}
	}
	return p.store.Create(ctx, entry)
}

func publishedAtOf(record document.FlatRecord) *time.Time {
	if raw, ok := record[publishedAtField].(string); ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return &ts
		}
	}
	now := time.Now().UTC()
	return &now
}

const publishedAtField = "publishedAt"

func sortedLocales(versions map[string]document.FlatRecord) []string {
	if len(versions) == 0 {
		return nil
	}
	locales := make([]string, 0, len(versions))
	for locale := range versions {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

func countVersions(doc *document.Document, contentTypes []string) int {
	total := 0
	for _, contentType := range contentTypes {
		for _, entry := range doc.Data[contentType] {
			total += len(entry.Published) + len(entry.Draft)
		}
	}
	return total
}
