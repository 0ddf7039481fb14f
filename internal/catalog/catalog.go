// Package catalog declares the views of the console: which collection each
// one lists, which auxiliary collections it joins, and how it searches,
// filters, sorts, aggregates and renders rows.
package catalog

import (
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/engine/derive"
	"go.trai.ch/estatedesk/internal/engine/listctl"
	"go.trai.ch/estatedesk/internal/engine/lookup"
	"go.trai.ch/zerr"
)

// Format selects how a column renders its value.
type Format int

const (
	// Text renders the value as is.
	Text Format = iota
	// Money renders a number as "Bs. 1,500.50".
	Money
	// Date renders a timestamp as a calendar date.
	Date
	// DateTime renders a timestamp with minutes.
	DateTime
	// Active renders a boolean as Activo/Inactivo.
	Active
)

// Column is one rendered column of a view.
type Column struct {
	Header string
	Ref    derive.FieldRef
	Format Format
}

// Cell renders the column for row.
func (c Column) Cell(row domain.Entity, tables lookup.Tables) string {
	raw := c.Ref.Value(row, tables)
	switch c.Format {
	case Money:
		if len(c.Ref.Fields) == 1 && c.Ref.Table == "" {
			if f, ok := row.Number(c.Ref.Fields[0]); ok {
				return FormatMoney(f)
			}
		}
	case Date, DateTime:
		if len(c.Ref.Fields) == 1 && c.Ref.Table == "" {
			if t, ok := row.Time(c.Ref.Fields[0]); ok {
				if c.Format == Date {
					return t.Format("02/01/2006")
				}
				return t.Format("02/01/2006 15:04")
			}
		}
	case Active:
		if c.Ref.Table == "" && len(c.Ref.Fields) == 1 {
			if row.Bool(c.Ref.Fields[0]) {
				return "Activo"
			}
			return "Inactivo"
		}
	}
	return raw
}

// FormatMoney renders an amount in bolivianos with two decimals.
func FormatMoney(v float64) string {
	return "Bs. " + humanize.FormatFloat("#,###.##", v)
}

// View is a list view: the controller declaration plus its presentation.
type View struct {
	listctl.Config
	Title   string
	Columns []Column
	// Uploads marks views that accept document uploads.
	Uploads bool
}

// Headers returns the column headers.
func (v View) Headers() []string {
	out := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		out[i] = c.Header
	}
	return out
}

// Cells renders rows through the view's columns.
func (v View) Cells(rows []domain.Entity, tables lookup.Tables) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(v.Columns))
		for i, c := range v.Columns {
			cells[i] = c.Cell(row, tables)
		}
		out = append(out, cells)
	}
	return out
}

// Catalog is an ordered set of views.
type Catalog struct {
	views []View
}

// New creates a catalog from views, in display order.
func New(views ...View) *Catalog {
	return &Catalog{views: views}
}

// View returns the view called name.
func (c *Catalog) View(name string) (View, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	i := slices.IndexFunc(c.views, func(v View) bool { return v.Name == name })
	if i < 0 {
		return View{}, zerr.With(zerr.Wrap(domain.ErrUnknownView, "no such view"), "view", name)
	}
	return c.views[i], nil
}

// Views returns every view in display order.
func (c *Catalog) Views() []View {
	return slices.Clone(c.views)
}

// Names returns the view names in display order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.views))
	for i, v := range c.views {
		out[i] = v.Name
	}
	return out
}
