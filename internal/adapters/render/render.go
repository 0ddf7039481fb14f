// Package render draws list pages, single records and cache diagnostics as
// terminal tables.
package render

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/ui/output"
	"go.trai.ch/estatedesk/internal/ui/style"
	"go.trai.ch/zerr"
)

// Stat is one preformatted aggregate.
type Stat struct {
	Label string
	Value string
}

// Page is one derived page of a view, ready to draw.
type Page struct {
	Title   string
	Headers []string
	Rows    [][]string
	Stats   []Stat
	View    domain.DerivedView
	// Stale marks data kept from an earlier cycle after a failed refresh.
	Stale bool
}

// ViewInfo summarizes one catalog entry.
type ViewInfo struct {
	Name     string
	Title    string
	Path     string
	Filters  []string
	PageSize int
}

// Renderer writes to a single output.
type Renderer struct {
	w   io.Writer
	lg  *lipgloss.Renderer
	now func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the clock used for relative ages.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// New creates a Renderer writing to w.
func New(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		w:   w,
		lg:  lipgloss.NewRenderer(w, termenv.WithProfile(output.ColorProfile())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Page draws a list page followed by its stats line and pagination footer.
func (r *Renderer) Page(p Page) error {
	var b strings.Builder

	title := r.lg.NewStyle().Bold(true).Foreground(style.Accent).Render(p.Title)
	b.WriteString(title)
	fmt.Fprintf(&b, " %s\n", r.muted(fmt.Sprintf("(página %d de %d)", p.View.Page, p.View.TotalPages)))

	if p.Stale {
		b.WriteString(r.lg.NewStyle().Foreground(style.Caution).Render(style.Warning+" Datos desactualizados: la última actualización falló") + "\n")
	}

	if len(p.Rows) == 0 {
		b.WriteString(r.muted("No se encontraron registros") + "\n")
	} else {
		b.WriteString(r.table(p.Headers, p.Rows).String() + "\n")
	}

	if len(p.Stats) > 0 {
		parts := make([]string, len(p.Stats))
		for i, s := range p.Stats {
			parts[i] = s.Label + ": " + r.lg.NewStyle().Bold(true).Render(s.Value)
		}
		b.WriteString(strings.Join(parts, " "+style.Separator+" ") + "\n")
	}

	b.WriteString(r.muted(Footer(p.View)) + "\n")
	return r.write(b.String())
}

// Footer renders the pagination summary of v.
func Footer(v domain.DerivedView) string {
	return fmt.Sprintf("Mostrando %d - %d de %d", v.First(), v.Last(), v.TotalCount)
}

// Record draws every field of e, sorted by name.
func (r *Renderer) Record(title string, e domain.Entity) error {
	keys := slices.Sorted(maps.Keys(e))
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, e.String(k)})
	}

	title = r.lg.NewStyle().Bold(true).Foreground(style.Accent).Render(title)
	return r.write(title + "\n" + r.table([]string{"Campo", "Valor"}, rows).String() + "\n")
}

// Views draws the catalog.
func (r *Renderer) Views(views []ViewInfo) error {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		filters := "-"
		if len(v.Filters) > 0 {
			filters = strings.Join(v.Filters, ", ")
		}
		rows = append(rows, []string{v.Name, v.Title, v.Path, filters, fmt.Sprint(v.PageSize)})
	}
	return r.write(r.table([]string{"Vista", "Título", "Ruta", "Filtros", "Por página"}, rows).String() + "\n")
}

// Cache draws cache counters and the populated slots.
func (r *Renderer) Cache(stats domain.CacheStats, infos []domain.CacheInfo) error {
	var b strings.Builder
	fmt.Fprintf(&b, "entries: %d %s hits: %s %s misses: %s %s hit rate: %.1f%%\n",
		stats.Entries, style.Separator,
		humanize.Comma(int64(stats.Hits)), style.Separator, //nolint:gosec // counters stay far below MaxInt64
		humanize.Comma(int64(stats.Misses)), style.Separator, //nolint:gosec // counters stay far below MaxInt64
		stats.HitRate(),
	)

	if len(infos) == 0 {
		b.WriteString(r.muted("cache is empty") + "\n")
		return r.write(b.String())
	}

	now := r.now()
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			string(info.Key),
			humanize.Comma(int64(info.Items)),
			humanize.RelTime(info.FetchedAt, now, "ago", "from now"),
		})
	}
	b.WriteString(r.table([]string{"Key", "Items", "Fetched"}, rows).String() + "\n")
	return r.write(b.String())
}

func (r *Renderer) table(headers []string, rows [][]string) *table.Table {
	header := r.lg.NewStyle().Bold(true).Foreground(style.Accent).Padding(0, 1)
	cell := r.lg.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.lg.NewStyle().Foreground(style.Muted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func (r *Renderer) muted(s string) string {
	return r.lg.NewStyle().Foreground(style.Muted).Render(s)
}

func (r *Renderer) write(s string) error {
	if _, err := io.WriteString(r.w, s); err != nil {
		return zerr.Wrap(err, "failed to write output")
	}
	return nil
}
