package derive_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/engine/derive"
	"go.trai.ch/estatedesk/internal/engine/lookup"
)

var propertyRules = derive.Rules{
	Search: []derive.FieldRef{
		derive.Direct("nombre_propiedad"),
		derive.Joined("propietarios", "ci_propietario",
			"nombres_completo_propietario", "apellidos_completo_propietario").Or("Desconocido"),
	},
	Filters: []derive.Filter{
		{Name: "tipo", Ref: derive.Direct("tipo_operacion_propiedad"), Match: derive.MatchExact},
		{Name: "zona", Ref: derive.Direct("zona_propiedad"), Match: derive.MatchContains},
		{Name: "estado", Ref: derive.Direct("estado_propiedad"), Remote: true, Param: "estado"},
	},
	Sort: []derive.Sort{{Field: "precio_propiedad", Kind: derive.ByNumber}},
}

func ownerTables() lookup.Tables {
	owners := []domain.Entity{
		{"ci_propietario": "1", "nombres_completo_propietario": "Ana", "apellidos_completo_propietario": "Smith"},
		{"ci_propietario": "2", "nombres_completo_propietario": "Luis", "apellidos_completo_propietario": "Rojas"},
	}
	return lookup.ResolveAll(
		[]lookup.Source{{Name: "propietarios", Resource: domain.Resource{PrimaryKey: "ci_propietario"}}},
		[][]domain.Entity{owners},
	)
}

// hundredProperties returns rows where every 10th is owned by Smith and every
// 25th, offset by 3, carries "Smith" in its own name.
func hundredProperties() []domain.Entity {
	rows := make([]domain.Entity, 0, 100)
	for i := range 100 {
		owner := "2"
		if i%10 == 0 {
			owner = "1"
		}
		name := fmt.Sprintf("Casa %03d", i)
		if i%25 == 3 {
			name = fmt.Sprintf("Casa SMITH %03d", i)
		}
		rows = append(rows, domain.Entity{
			"id_propiedad":     i,
			"nombre_propiedad": name,
			"ci_propietario":   owner,
			"precio_propiedad": float64(i),
		})
	}
	return rows
}

func TestDerive_SearchAcrossJoinedOwner(t *testing.T) {
	rows := hundredProperties()
	tables := ownerTables()

	for _, page := range []int{1, 2, 7} {
		q := domain.NewQuery(5).WithSearch("smith").WithPage(page)
		view := derive.Derive(rows, tables, propertyRules, q)

		// 10 owned by Smith plus 4 named Smith, none overlapping.
		assert.Equal(t, 14, view.TotalCount, "page %d", page)
		assert.Equal(t, 3, view.TotalPages)
		for _, row := range view.Filtered {
			owner := tables.Table("propietarios").Field(row.Key("ci_propietario"), "apellidos_completo_propietario")
			hit := strings.Contains(strings.ToLower(row.String("nombre_propiedad")), "smith") || owner == "Smith"
			assert.True(t, hit, "row %v should not match", row)
		}
	}
}

func TestDerive_Pagination(t *testing.T) {
	rows := hundredProperties()

	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantFirst int
		wantLen   int
	}{
		{name: "first page", page: 1, wantPage: 1, wantFirst: 1, wantLen: 30},
		{name: "last partial page", page: 4, wantPage: 4, wantFirst: 91, wantLen: 10},
		{name: "beyond range clamps", page: 9, wantPage: 4, wantFirst: 91, wantLen: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := derive.Derive(rows, nil, propertyRules, domain.NewQuery(30).WithPage(tt.page))

			assert.Equal(t, 100, view.TotalCount)
			assert.Equal(t, 4, view.TotalPages)
			assert.Equal(t, tt.wantPage, view.Page)
			assert.Equal(t, tt.wantFirst, view.First())
			assert.Len(t, view.Paged, tt.wantLen)
		})
	}
}

func TestDerive_EmptyCollection(t *testing.T) {
	view := derive.Derive(nil, nil, propertyRules, domain.NewQuery(10).WithPage(3))

	assert.Equal(t, 0, view.TotalCount)
	assert.Equal(t, 1, view.TotalPages)
	assert.Equal(t, 1, view.Page)
	assert.Empty(t, view.Paged)
	assert.False(t, view.HasNext())
	assert.False(t, view.HasPrev())
}

func TestDerive_Filters(t *testing.T) {
	rows := []domain.Entity{
		{"nombre_propiedad": "A", "tipo_operacion_propiedad": "Venta", "zona_propiedad": "Zona Norte", "estado_propiedad": "Disponible"},
		{"nombre_propiedad": "B", "tipo_operacion_propiedad": "Alquiler", "zona_propiedad": "Zona Sur", "estado_propiedad": "Vendida"},
		{"nombre_propiedad": "C", "tipo_operacion_propiedad": "Venta", "zona_propiedad": "Centro", "estado_propiedad": "Vendida"},
	}

	t.Run("exact", func(t *testing.T) {
		view := derive.Derive(rows, nil, propertyRules, domain.NewQuery(10).WithFilter("tipo", "Venta"))
		assert.Equal(t, 2, view.TotalCount)
	})

	t.Run("exact is case sensitive", func(t *testing.T) {
		view := derive.Derive(rows, nil, propertyRules, domain.NewQuery(10).WithFilter("tipo", "venta"))
		assert.Equal(t, 0, view.TotalCount)
	})

	t.Run("contains ignores case", func(t *testing.T) {
		view := derive.Derive(rows, nil, propertyRules, domain.NewQuery(10).WithFilter("zona", "zona"))
		assert.Equal(t, 2, view.TotalCount)
	})

	t.Run("remote filters are not applied locally", func(t *testing.T) {
		view := derive.Derive(rows, nil, propertyRules, domain.NewQuery(10).WithFilter("estado", "Disponible"))
		assert.Equal(t, 3, view.TotalCount)
	})

	t.Run("filters combine", func(t *testing.T) {
		q := domain.NewQuery(10).WithFilter("tipo", "Venta").WithFilter("zona", "centro")
		view := derive.Derive(rows, nil, propertyRules, q)
		require.Equal(t, 1, view.TotalCount)
		assert.Equal(t, "C", view.Paged[0].String("nombre_propiedad"))
	})
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	rows := []domain.Entity{
		{"precio_propiedad": 30.0},
		{"precio_propiedad": 10.0},
		{"precio_propiedad": 20.0},
	}

	view := derive.Derive(rows, nil, propertyRules, domain.NewQuery(10))

	assert.InDelta(t, 30.0, rows[0]["precio_propiedad"], 0)
	got := make([]float64, 0, len(view.Paged))
	for _, row := range view.Paged {
		n, _ := row.Number("precio_propiedad")
		got = append(got, n)
	}
	assert.Equal(t, []float64{10, 20, 30}, got)
}

func TestDerive_Idempotent(t *testing.T) {
	rows := hundredProperties()
	q := domain.NewQuery(7).WithSearch("casa 0").WithPage(2)

	first := derive.Derive(rows, ownerTables(), propertyRules, q)
	second := derive.Derive(rows, ownerTables(), propertyRules, q)

	assert.Equal(t, first, second)
	assert.LessOrEqual(t, len(first.Paged), first.PageSize)
}

func TestDerive_SortKeys(t *testing.T) {
	rules := derive.Rules{Sort: []derive.Sort{
		{Field: "fecha_pago", Kind: derive.ByTime, Descending: true},
		{Field: "cuota", Kind: derive.ByNumber},
	}}
	rows := []domain.Entity{
		{"id": "a", "fecha_pago": "2024-01-01", "cuota": "2"},
		{"id": "b", "fecha_pago": "2024-03-01", "cuota": "1"},
		{"id": "c"},
		{"id": "d", "fecha_pago": "2024-01-01", "cuota": "1"},
	}

	view := derive.Derive(rows, nil, rules, domain.NewQuery(10))

	ids := make([]string, 0, len(view.Paged))
	for _, row := range view.Paged {
		ids = append(ids, row.String("id"))
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func TestRules_RemoteParams(t *testing.T) {
	q := domain.NewQuery(10).WithFilter("estado", "Disponible").WithFilter("tipo", "Venta")

	params := propertyRules.RemoteParams(q)

	assert.Equal(t, "estado=Disponible", params.Encode())
	assert.Empty(t, propertyRules.RemoteParams(domain.NewQuery(10)))
}

func TestFieldRef_Placeholder(t *testing.T) {
	ref := derive.Joined("propietarios", "ci_propietario", "nombres_completo_propietario").Or("Desconocido")

	assert.Equal(t, "Ana", ref.Value(domain.Entity{"ci_propietario": 1}, ownerTables()))
	assert.Equal(t, "Desconocido", ref.Value(domain.Entity{"ci_propietario": 99}, ownerTables()))
	assert.Equal(t, "Desconocido", ref.Value(domain.Entity{}, nil))
}

func TestDerive_SearchIgnoresPlaceholders(t *testing.T) {
	rows := []domain.Entity{
		{"nombre_propiedad": "Casa 1", "ci_propietario": "1"},
		{"nombre_propiedad": "Casa 2", "ci_propietario": "99"},
	}
	owner := derive.Joined("propietarios", "ci_propietario", "nombres_completo_propietario").Or("N/A")
	rules := derive.Rules{Search: []derive.FieldRef{derive.Direct("nombre_propiedad"), owner}}

	view := derive.Derive(rows, ownerTables(), rules, domain.NewQuery(10).WithSearch("n/a"))
	assert.Zero(t, view.TotalCount)

	view = derive.Derive(rows, ownerTables(), rules, domain.NewQuery(10).WithSearch("ana"))
	assert.Equal(t, 1, view.TotalCount)

	rules.Search[1] = owner.Searchable()
	view = derive.Derive(rows, ownerTables(), rules, domain.NewQuery(10).WithSearch("n/a"))
	require.Equal(t, 1, view.TotalCount)
	assert.Equal(t, "Casa 2", view.Filtered[0].String("nombre_propiedad"))
}

func TestAggregate(t *testing.T) {
	rows := []domain.Entity{
		{"estado_pago": "Pagado", "monto_pago": "100.50"},
		{"estado_pago": "Pendiente", "monto_pago": 50.0},
		{"estado_pago": "Pagado", "monto_pago": "bad"},
		nil,
	}
	stats := []derive.Stat{
		{Name: "total"},
		{Name: "pagados", Where: []derive.Condition{{Ref: derive.Direct("estado_pago"), In: []string{"Pagado"}}}},
		{Name: "otros", Where: []derive.Condition{{Ref: derive.Direct("estado_pago"), In: []string{"Pagado"}, Not: true}}},
		{Name: "recaudado", Sum: "monto_pago", Where: []derive.Condition{{Ref: derive.Direct("estado_pago"), In: []string{"Pagado"}}}},
	}

	got := derive.Aggregate(rows, nil, stats)

	require.Len(t, got, 4)
	v, _ := got.Get("total")
	assert.InDelta(t, 3, v, 0)
	v, _ = got.Get("pagados")
	assert.InDelta(t, 2, v, 0)
	v, _ = got.Get("otros")
	assert.InDelta(t, 1, v, 0)
	v, _ = got.Get("recaudado")
	assert.InDelta(t, 100.5, v, 0.001)
	assert.True(t, got[3].Amount)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, derive.TotalPages(0, 10))
	assert.Equal(t, 1, derive.TotalPages(10, 10))
	assert.Equal(t, 2, derive.TotalPages(11, 10))
	assert.Equal(t, 5, derive.TotalPages(5, 0))
}
