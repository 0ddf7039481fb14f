package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/estatedesk/internal/adapters/httpapi"
	"go.trai.ch/estatedesk/internal/core/domain"
)

const baseURL = "http://backend.test"

func newClient(t *testing.T, opts ...httpapi.Option) *httpapi.Client {
	t.Helper()
	hc := &http.Client{}
	gock.InterceptClient(hc)
	t.Cleanup(func() {
		gock.RestoreClient(hc)
		gock.Off()
	})
	return httpapi.New(baseURL+"/", append([]httpapi.Option{httpapi.WithHTTPClient(hc)}, opts...)...)
}

func TestClient_ListBareArray(t *testing.T) {
	c := newClient(t, httpapi.WithToken("secret"))

	gock.New(baseURL).
		Get("/propiedades/").
		MatchHeader("Authorization", "^Bearer secret$").
		MatchHeader("Accept", "application/json").
		HeaderPresent(httpapi.RequestIDHeader).
		Reply(http.StatusOK).
		JSON([]map[string]any{
			{"id_propiedad": 1, "precio_propiedad": "1500.50"},
			{"id_propiedad": 2, "precio_propiedad": 320},
		})

	rows, err := c.List(context.Background(), "/propiedades/", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Key("1"), rows[0].Key("id_propiedad"))
	assert.Equal(t, json.Number("320"), rows[1]["precio_propiedad"])
	assert.True(t, gock.IsDone())
}

func TestClient_ListEnvelope(t *testing.T) {
	c := newClient(t)

	gock.New(baseURL).
		Get("/propiedades/").
		MatchParam("estado_propiedad", "Publicada").
		Reply(http.StatusOK).
		JSON(map[string]any{
			"items":       []any{map[string]any{"id_propiedad": 7}, nil},
			"total":       1,
			"page":        1,
			"page_size":   20,
			"total_pages": 1,
		})

	rows, err := c.List(context.Background(), "/propiedades/", url.Values{"estado_propiedad": {"Publicada"}})
	require.NoError(t, err)
	require.Len(t, rows, 1, "null rows are dropped")
	assert.Equal(t, domain.Key("7"), rows[0].Key("id_propiedad"))
}

func TestClient_ListUnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "object without items", body: `{"total": 3}`},
		{name: "scalar", body: `"nope"`},
		{name: "empty", body: ``},
		{name: "malformed", body: `[{"id": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t)
			gock.New(baseURL).Get("/roles/").Reply(http.StatusOK).BodyString(tt.body)

			_, err := c.List(context.Background(), "/roles/", nil)
			require.ErrorIs(t, err, domain.ErrUnexpectedResponse)
		})
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"detail":"Not authenticated"}`, wantErr: domain.ErrUnauthorized, wantMsg: "Not authenticated"},
		{name: "forbidden", status: http.StatusForbidden, wantErr: domain.ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, body: `{"detail":"Propiedad no encontrada"}`, wantErr: domain.ErrNotFound, wantMsg: "Propiedad no encontrada"},
		{name: "conflict", status: http.StatusConflict, wantErr: domain.ErrConflict},
		{
			name:    "referential integrity",
			status:  http.StatusBadRequest,
			body:    `{"detail":"No se puede eliminar: existen registros asociados"}`,
			wantErr: domain.ErrConflict,
			wantMsg: "No se puede eliminar: existen registros asociados",
		},
		{
			name:    "validation list",
			status:  http.StatusUnprocessableEntity,
			body:    `{"detail":[{"loc":["body","precio_propiedad"],"msg":"field required"}]}`,
			wantErr: domain.ErrConflict,
			wantMsg: "body.precio_propiedad: field required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t)
			gock.New(baseURL).Delete("/propiedades/5").Reply(tt.status).BodyString(tt.body)

			err := c.Delete(context.Background(), "/propiedades/5")
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestClient_ServerErrorIsGeneric(t *testing.T) {
	c := newClient(t)
	gock.New(baseURL).Get("/pagos/").Reply(http.StatusInternalServerError)

	_, err := c.List(context.Background(), "/pagos/", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrCancelled)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_DeleteAcceptsNoContent(t *testing.T) {
	c := newClient(t)
	gock.New(baseURL).Delete("/citas/3").Reply(http.StatusNoContent)

	require.NoError(t, c.Delete(context.Background(), "/citas/3"))
}

func TestClient_CreateAndUpdateSendJSON(t *testing.T) {
	c := newClient(t)

	gock.New(baseURL).
		Post("/clientes/").
		MatchType("json").
		JSON(map[string]any{"ci_cliente": "123", "nombres_completo_cliente": "Ana"}).
		Reply(http.StatusCreated).
		JSON(map[string]any{"ci_cliente": "123"})
	gock.New(baseURL).
		Put("/clientes/123").
		JSON(map[string]any{"nombres_completo_cliente": "Ana María"}).
		Reply(http.StatusOK).
		JSON(map[string]any{"ci_cliente": "123", "nombres_completo_cliente": "Ana María"})

	created, err := c.Create(context.Background(), "/clientes/", domain.Entity{"ci_cliente": "123", "nombres_completo_cliente": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "123", created.String("ci_cliente"))

	updated, err := c.Update(context.Background(), "/clientes/123", domain.Entity{"nombres_completo_cliente": "Ana María"})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.String("nombres_completo_cliente"))
	assert.True(t, gock.IsDone())
}

func TestClient_UploadMultipart(t *testing.T) {
	c := newClient(t)

	var fields map[string][]string
	var fileName string
	var content []byte

	gock.New(baseURL).
		Post("/documentos-propiedad/upload").
		MatchType("multipart/form-data").
		AddMatcher(func(req *http.Request, _ *gock.Request) (bool, error) {
			raw, err := io.ReadAll(req.Body)
			if err != nil {
				return false, err
			}
			req.Body = io.NopCloser(bytes.NewReader(raw))
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				return false, err
			}
			fields = req.MultipartForm.Value
			fh := req.MultipartForm.File["archivo"]
			if len(fh) != 1 {
				return false, nil
			}
			fileName = fh[0].Filename
			f, err := fh[0].Open()
			if err != nil {
				return false, err
			}
			defer f.Close()
			content, err = io.ReadAll(f)
			return err == nil, err
		}).
		Reply(http.StatusCreated).
		JSON(map[string]any{"id_documento": 9})

	got, err := c.Upload(context.Background(), "/documentos-propiedad/upload", domain.UploadForm{
		Fields:    map[string]string{"id_propiedad": "4", "tipo_documento": "Escritura"},
		FileField: "archivo",
		FileName:  "escritura.pdf",
		Content:   []byte("%PDF-1.7"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Key("9"), got.Key("id_documento"))
	assert.Equal(t, []string{"4"}, fields["id_propiedad"])
	assert.Equal(t, []string{"Escritura"}, fields["tipo_documento"])
	assert.Equal(t, "escritura.pdf", fileName)
	assert.Equal(t, []byte("%PDF-1.7"), content)
}

func TestClient_CancellationIsTagged(t *testing.T) {
	c := newClient(t)
	gock.New(baseURL).Get("/propiedades/").Reply(http.StatusOK).Delay(5 * time.Second).JSON([]any{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.List(ctx, "/propiedades/", nil)
	require.ErrorIs(t, err, domain.ErrCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_TimeoutLeavesSharedClientUntouched(t *testing.T) {
	hc := &http.Client{}
	gock.InterceptClient(hc)
	t.Cleanup(func() {
		gock.RestoreClient(hc)
		gock.Off()
	})
	gock.New(baseURL).Get("/propiedades/").Reply(http.StatusOK).Delay(5 * time.Second).JSON([]any{})

	// The timeout option comes first and still applies to the client given later.
	c := httpapi.New(baseURL, httpapi.WithTimeout(50*time.Millisecond), httpapi.WithHTTPClient(hc))

	_, err := c.List(context.Background(), "/propiedades/", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCancelled, "a transport timeout is not a caller cancellation")
	assert.Zero(t, hc.Timeout)
}

func TestClient_AlreadyCancelled(t *testing.T) {
	c := newClient(t)
	gock.New(baseURL).Get("/roles/").Reply(http.StatusOK).JSON([]any{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx, "/roles/", nil)
	require.ErrorIs(t, err, domain.ErrCancelled)
}
