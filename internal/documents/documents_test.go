package documents_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/documents"
	"go.trai.ch/zerr"
)

func validUpload() documents.Upload {
	return documents.Upload{
		PropertyID: "4",
		Type:       "Folio real",
		FileName:   "/tmp/folio.pdf",
		Content:    []byte("%PDF-1.7"),
	}
}

func TestValidator_Accepts(t *testing.T) {
	require.NoError(t, documents.NewValidator().Validate(validUpload()))
}

func TestValidator_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*documents.Upload)
		wantMsg string
	}{
		{name: "missing property", mutate: func(u *documents.Upload) { u.PropertyID = "  " }, wantMsg: "Seleccione la propiedad del documento"},
		{name: "missing type", mutate: func(u *documents.Upload) { u.Type = "" }, wantMsg: "Seleccione el tipo de documento"},
		{name: "unknown type", mutate: func(u *documents.Upload) { u.Type = "Factura" }, wantMsg: "Tipo de documento no permitido: Factura"},
		{name: "empty file", mutate: func(u *documents.Upload) { u.Content = nil }, wantMsg: "El archivo está vacío"},
		{name: "extension", mutate: func(u *documents.Upload) { u.FileName = "folio.exe" }, wantMsg: "Tipo de archivo no permitido"},
		{
			name:    "too large",
			mutate:  func(u *documents.Upload) { u.Content = bytes.Repeat([]byte{'x'}, documents.MaxSize+1) },
			wantMsg: "El archivo supera el tamaño máximo de 10 MiB (10 MiB)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUpload()
			tt.mutate(&u)

			err := documents.NewValidator().Validate(u)
			require.ErrorIs(t, err, domain.ErrValidationRejected)

			var zErr *zerr.Error
			require.ErrorAs(t, err, &zErr)
			assert.Contains(t, zErr.Message(), tt.wantMsg)
		})
	}
}

func TestValidator_CollectsEveryProblem(t *testing.T) {
	err := documents.NewValidator().Validate(documents.Upload{FileName: "a.pdf"})
	require.ErrorIs(t, err, domain.ErrValidationRejected)
	assert.Contains(t, err.Error(), "Seleccione la propiedad del documento")
	assert.Contains(t, err.Error(), "Seleccione el tipo de documento")
	assert.Contains(t, err.Error(), "El archivo está vacío")
}

func TestValidator_ExactlyAtLimit(t *testing.T) {
	u := validUpload()
	u.Content = make([]byte, documents.MaxSize)
	require.NoError(t, documents.NewValidator().Validate(u))
}

func TestUpload_Form(t *testing.T) {
	u := validUpload()
	u.PropertyID = " 4 "
	u.Notes = "  copia legalizada "

	form := u.Form()
	assert.Equal(t, map[string]string{
		"id_propiedad":            "4",
		"tipo_documento":          "Folio real",
		"observaciones_documento": "copia legalizada",
	}, form.Fields)
	assert.Equal(t, "file", form.FileField)
	assert.Equal(t, "folio.pdf", form.FileName)

	assert.NotContains(t, validUpload().Form().Fields, "observaciones_documento")
}
