// Package app implements the application layer for estatedesk.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.trai.ch/estatedesk/internal/adapters/render"
	"go.trai.ch/estatedesk/internal/catalog"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
	"go.trai.ch/estatedesk/internal/documents"
	"go.trai.ch/estatedesk/internal/engine/cachestore"
	"go.trai.ch/estatedesk/internal/engine/lifecycle"
	"go.trai.ch/estatedesk/internal/engine/listctl"
	"go.trai.ch/zerr"
)

// Confirmer is the confirmation gate with a switch to skip the question.
type Confirmer interface {
	ports.Confirmer
	SetAssumeYes(yes bool)
}

// App represents the main application logic.
type App struct {
	cfg       *domain.Config
	catalog   *catalog.Catalog
	transport ports.Transport
	cache     *cachestore.Store
	notifier  ports.Notifier
	confirmer Confirmer
	logger    ports.Logger
	tracer    ports.Tracer
	renderer  *render.Renderer
	validator *documents.Validator
	out       io.Writer
}

// New creates a new App instance.
func New(
	cfg *domain.Config,
	views *catalog.Catalog,
	transport ports.Transport,
	cache *cachestore.Store,
	notifier ports.Notifier,
	confirmer Confirmer,
	log ports.Logger,
	tracer ports.Tracer,
	renderer *render.Renderer,
) *App {
	return &App{
		cfg:       cfg,
		catalog:   views,
		transport: transport,
		cache:     cache,
		notifier:  notifier,
		confirmer: confirmer,
		logger:    log,
		tracer:    tracer,
		renderer:  renderer,
		validator: documents.NewValidator(),
		out:       os.Stdout,
	}
}

// WithOutput redirects raw output such as the metrics exposition.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// ListOptions configuration for the List method.
type ListOptions struct {
	Search  string
	Filters map[string]string
	Page    int
}

// List fetches a view and renders the requested page.
func (a *App) List(ctx context.Context, view string, opts ListOptions) error {
	v, ctl, err := a.open(view)
	if err != nil {
		return err
	}
	defer ctl.Close()

	for _, name := range slices.Sorted(maps.Keys(opts.Filters)) {
		if _, err := ctl.SetFilter(ctx, name, opts.Filters[name]); err != nil {
			if errors.Is(err, domain.ErrValidationRejected) {
				a.notifier.Notify(domain.Notice{
					Level:   domain.NoticeWarning,
					Message: fmt.Sprintf("Valor no válido para el filtro %s: %s", name, opts.Filters[name]),
					Err:     err,
				})
			}
			return err
		}
	}

	if err := a.load(ctx, ctl); err != nil {
		return err
	}

	ctl.SetSearchTerm(opts.Search)
	if opts.Page > 0 {
		ctl.SetPage(opts.Page)
	}

	state, tables := ctl.Snapshot()
	return a.renderer.Page(render.Page{
		Title:   v.Title,
		Headers: v.Headers(),
		Rows:    v.Cells(state.View.Paged, tables),
		Stats:   formatStats(state.Stats),
		View:    state.View,
		Stale:   state.Stale,
	})
}

// Show fetches and renders a single record.
func (a *App) Show(ctx context.Context, view, id string) error {
	v, err := a.catalog.View(view)
	if err != nil {
		return err
	}
	ctx, span := a.tracer.Start(ctx, "app.show")
	defer span.End()
	span.SetAttribute("view", v.Name)

	e, err := a.transport.Get(ctx, v.Primary.ItemPath(id))
	if err != nil {
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, "failed to fetch record"), "id", id)
	}
	return a.renderer.Record(fmt.Sprintf("%s %s", v.Title, id), e)
}

// Delete removes a record after confirmation. assumeYes skips the question.
func (a *App) Delete(ctx context.Context, view, id string, assumeYes bool) error {
	_, ctl, err := a.open(view)
	if err != nil {
		return err
	}
	defer ctl.Close()

	a.confirmer.SetAssumeYes(assumeYes)
	if err := ctl.Remove(ctx, id); err != nil {
		return err
	}
	return a.afterMutation(ctx, ctl)
}

// Create posts a new record built from fields.
func (a *App) Create(ctx context.Context, view string, fields map[string]string) error {
	v, ctl, err := a.open(view)
	if err != nil {
		return err
	}
	defer ctl.Close()

	created, err := ctl.Create(ctx, entity(fields))
	if err != nil {
		return err
	}
	if err := a.afterMutation(ctx, ctl); err != nil {
		return err
	}
	return a.renderer.Record(v.Title+" "+created.String(v.Primary.PrimaryKey), created)
}

// Update replaces fields of an existing record.
func (a *App) Update(ctx context.Context, view, id string, fields map[string]string) error {
	v, ctl, err := a.open(view)
	if err != nil {
		return err
	}
	defer ctl.Close()

	updated, err := ctl.Update(ctx, id, entity(fields))
	if err != nil {
		return err
	}
	if err := a.afterMutation(ctx, ctl); err != nil {
		return err
	}
	return a.renderer.Record(fmt.Sprintf("%s %s", v.Title, id), updated)
}

// UploadOptions configuration for the Upload method.
type UploadOptions struct {
	PropertyID string
	Type       string
	Notes      string
	Path       string
}

// Upload validates and sends a property document.
func (a *App) Upload(ctx context.Context, opts UploadOptions) error {
	_, ctl, err := a.open(catalog.Documentos.Name)
	if err != nil {
		return err
	}
	defer ctl.Close()

	upload := documents.Upload{
		PropertyID: opts.PropertyID,
		Type:       opts.Type,
		Notes:      opts.Notes,
		FileName:   opts.Path,
	}
	var readErr error
	if opts.Path != "" {
		upload.Content, readErr = os.ReadFile(opts.Path)
	}

	uploaded, err := ctl.Upload(ctx, upload.Form(), func() error {
		if readErr != nil {
			return zerr.With(zerr.Wrap(domain.ErrValidationRejected, "No se pudo leer el archivo"), "path", opts.Path)
		}
		return a.validator.Validate(upload)
	})
	if err != nil {
		return err
	}
	if err := a.afterMutation(ctx, ctl); err != nil {
		return err
	}
	return a.renderer.Record("Documento "+uploaded.String(catalog.Documentos.PrimaryKey), uploaded)
}

// Views renders the catalog.
func (a *App) Views() error {
	views := a.catalog.Views()
	infos := make([]render.ViewInfo, 0, len(views))
	for _, v := range views {
		filters := make([]string, 0, len(v.Rules.Filters))
		for _, f := range v.Rules.Filters {
			filters = append(filters, f.Name)
		}
		infos = append(infos, render.ViewInfo{
			Name:     v.Name,
			Title:    v.Title,
			Path:     v.Primary.Path,
			Filters:  filters,
			PageSize: a.cfg.PageSize(v.Name, v.PageSize),
		})
	}
	return a.renderer.Views(infos)
}

// CacheStatsOptions configuration for the CacheStats method.
type CacheStatsOptions struct {
	// Warm lists views to load before reporting.
	Warm []string
	// Metrics prints the Prometheus text exposition instead of a table.
	Metrics bool
}

// CacheStats reports cache usage, optionally after loading some views.
func (a *App) CacheStats(ctx context.Context, opts CacheStatsOptions) error {
	for _, name := range opts.Warm {
		_, ctl, err := a.open(name)
		if err != nil {
			return err
		}
		err = a.load(ctx, ctl)
		ctl.Close()
		if err != nil {
			return err
		}
	}

	if opts.Metrics {
		return a.writeMetrics()
	}
	return a.renderer.Cache(a.cache.Stats(), a.cache.Info())
}

// CacheClear drops the slot of one resource, or every slot when resource is empty.
func (a *App) CacheClear(resource string) error {
	if resource == "" {
		a.cache.ClearAll()
		a.logger.Info("cache cleared")
		return nil
	}
	v, err := a.catalog.View(resource)
	if err != nil {
		return err
	}
	a.cache.Clear(v.Primary.CacheKey())
	a.logger.Info("cache cleared for " + v.Name)
	return nil
}

// Reported reports whether err was already shown to the user as a notice.
func Reported(err error) bool {
	return errors.Is(err, domain.ErrMutationFailed) ||
		errors.Is(err, domain.ErrValidationRejected) ||
		errors.Is(err, domain.ErrLoadFailed) ||
		errors.Is(err, domain.ErrCancelled)
}

func (a *App) open(name string) (catalog.View, *listctl.Controller, error) {
	v, err := a.catalog.View(name)
	if err != nil {
		return catalog.View{}, nil, err
	}
	cfg := v.Config
	cfg.PageSize = a.cfg.PageSize(v.Name, cfg.PageSize)

	return v, listctl.New(cfg, listctl.Deps{
		Transport: a.transport,
		Cache:     a.cache,
		Notifier:  a.notifier,
		Confirmer: a.confirmer,
		Logger:    a.logger,
		Tracer:    a.tracer,
	}), nil
}

// load runs one fetch cycle and waits for it.
func (a *App) load(ctx context.Context, ctl *listctl.Controller) error {
	ctl.Refresh(ctx)
	return a.settle(ctx, ctl)
}

// afterMutation waits for the refetch a successful mutation started. A failed
// refetch was already reported as a warning and does not fail the command.
func (a *App) afterMutation(ctx context.Context, ctl *listctl.Controller) error {
	if err := a.settle(ctx, ctl); err != nil && !errors.Is(err, domain.ErrLoadFailed) {
		return err
	}
	return nil
}

// settle waits for the latest fetch cycle and converts its outcome to an error.
func (a *App) settle(ctx context.Context, ctl *listctl.Controller) error {
	outcome, err := ctl.Wait(ctx)
	if err != nil && outcome == lifecycle.OutcomePending {
		return errors.Join(domain.ErrCancelled, err)
	}

	switch outcome {
	case lifecycle.OutcomeFailed:
		if state := ctl.ViewState(); state.Err != nil {
			return state.Err
		}
		return errors.Join(domain.ErrLoadFailed, err)
	case lifecycle.OutcomeCancelled, lifecycle.OutcomeStale:
		return errors.Join(domain.ErrCancelled, ctx.Err())
	default:
		return nil
	}
}

func (a *App) writeMetrics() error {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(a.cache); err != nil {
		return zerr.Wrap(err, "failed to register cache collector")
	}
	families, err := reg.Gather()
	if err != nil {
		return zerr.Wrap(err, "failed to gather metrics")
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.out, mf); err != nil {
			return zerr.Wrap(err, "failed to encode metrics")
		}
	}
	return nil
}

func formatStats(stats domain.Stats) []render.Stat {
	out := make([]render.Stat, 0, len(stats))
	for _, s := range stats {
		value := fmt.Sprintf("%.0f", s.Value)
		if s.Amount {
			value = catalog.FormatMoney(s.Value)
		}
		out = append(out, render.Stat{Label: s.Name, Value: value})
	}
	return out
}

func entity(fields map[string]string) domain.Entity {
	e := make(domain.Entity, len(fields))
	for k, v := range fields {
		e[strings.TrimSpace(k)] = v
	}
	return e
}
