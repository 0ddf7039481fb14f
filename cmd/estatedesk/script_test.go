package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"estatedesk": main,
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: setupScript,
	})
}

func setupScript(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)

	srv := httptest.NewServer(newBackend().routes())
	env.Defer(srv.Close)
	env.Setenv("ESTATEDESK_API_URL", srv.URL)
	env.Setenv("ESTATEDESK_TOKEN", "script-token")
	return nil
}

type record = map[string]any

// backend is a small in-memory stand-in for the real-estate API.
type backend struct {
	mu          sync.Mutex
	propiedades []record
	documentos  []record
}

func newBackend() *backend {
	return &backend{
		propiedades: []record{
			{"id_propiedad": 1, "codigo_publico_propiedad": "P-1", "titulo_propiedad": "Casa Norte", "ci_propietario": "100", "estado_propiedad": "Publicada", "tipo_operacion_propiedad": "Venta", "precio_publicado_propiedad": 125000.5},
			{"id_propiedad": 2, "codigo_publico_propiedad": "P-2", "titulo_propiedad": "Lote Sur", "ci_propietario": "999", "estado_propiedad": "Captada", "tipo_operacion_propiedad": "Alquiler"},
			{"id_propiedad": 7, "codigo_publico_propiedad": "P-7", "titulo_propiedad": "Depto Centro", "ci_propietario": "100", "estado_propiedad": "Reservada", "tipo_operacion_propiedad": "Venta"},
		},
	}
}

func (b *backend) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /propiedades/", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.propiedades)
	})
	mux.HandleFunc("DELETE /propiedades/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if r.PathValue("id") == "7" {
			writeJSON(w, http.StatusBadRequest, record{"detail": "violates foreign key constraint on contratos"})
			return
		}
		b.propiedades = slices.DeleteFunc(b.propiedades, func(p record) bool {
			return jsonString(p["id_propiedad"]) == r.PathValue("id")
		})
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /propietarios", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer script-token" {
			writeJSON(w, http.StatusUnauthorized, record{"detail": "Not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, record{"items": []record{
			{"ci_propietario": "100", "nombres_completo_propietario": "Ana", "apellidos_completo_propietario": "Smith", "es_activo_propietario": true},
		}})
	})

	mux.HandleFunc("GET /citas-visita", func(w http.ResponseWriter, r *http.Request) {
		citas := []record{
			{"id_cita": 1, "id_propiedad": 1, "ci_cliente": "55", "id_usuario_asesor": 3, "estado_cita": "Programada", "fecha_visita_cita": "2026-03-01T10:00:00"},
			{"id_cita": 2, "id_propiedad": 7, "ci_cliente": "56", "estado_cita": "Realizada", "fecha_visita_cita": "2026-02-01T09:30:00"},
		}
		if estado := r.URL.Query().Get("estado"); estado != "" {
			citas = slices.DeleteFunc(citas, func(c record) bool { return c["estado_cita"] != estado })
		}
		writeJSON(w, http.StatusOK, citas)
	})
	mux.HandleFunc("GET /clientes", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []record{{"ci_cliente": "55", "nombres_completo_cliente": "Luis", "apellidos_completo_cliente": "Paz"}})
	})
	mux.HandleFunc("POST /clientes", func(w http.ResponseWriter, r *http.Request) {
		var body record
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, record{"detail": []record{{"loc": []string{"body"}, "msg": err.Error()}}})
			return
		}
		writeJSON(w, http.StatusCreated, body)
	})
	mux.HandleFunc("GET /usuarios", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []record{})
	})

	mux.HandleFunc("GET /documentos-propiedad/", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.documentos)
	})
	mux.HandleFunc("POST /documentos-propiedad/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, record{"detail": err.Error()})
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, record{"detail": err.Error()})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		doc := record{
			"id_documento":            len(b.documentos) + 1,
			"id_propiedad":            r.FormValue("id_propiedad"),
			"tipo_documento":          r.FormValue("tipo_documento"),
			"observaciones_documento": r.FormValue("observaciones_documento"),
			"nombre_archivo_original": header.Filename,
		}
		b.documentos = append(b.documentos, doc)
		writeJSON(w, http.StatusCreated, doc)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonString(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
