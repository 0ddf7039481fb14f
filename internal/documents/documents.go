// Package documents validates property document uploads before they reach
// the network.
package documents

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/zerr"
)

// MaxSize is the largest file accepted for upload.
const MaxSize = 10 << 20

// Types are the accepted values of tipo_documento.
var Types = []string{
	"Título de propiedad",
	"Plano catastral",
	"Folio real",
	"Impuestos al día",
	"Certificado de tradición",
	"Contrato de compraventa",
	"Avalúo comercial",
	"Certificado de libertad",
	"Otro",
}

// Extensions are the file extensions the backend stores.
var Extensions = []string{".pdf", ".doc", ".docx", ".txt", ".jpg", ".jpeg", ".png"}

// Upload is a document upload as entered by the user.
type Upload struct {
	PropertyID string `validate:"required"`
	Type       string `validate:"required,doctype"`
	Notes      string `validate:"max=500"`
	FileName   string `validate:"required,docext"`
	Content    []byte `validate:"min=1,max=10485760"`
}

// Form converts the upload to the multipart payload.
func (u Upload) Form() domain.UploadForm {
	fields := map[string]string{
		"id_propiedad":   strings.TrimSpace(u.PropertyID),
		"tipo_documento": u.Type,
	}
	if notes := strings.TrimSpace(u.Notes); notes != "" {
		fields["observaciones_documento"] = notes
	}
	return domain.UploadForm{
		Fields:    fields,
		FileField: "file",
		FileName:  filepath.Base(u.FileName),
		Content:   u.Content,
	}
}

// Validator checks uploads.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
		return slices.Contains(Types, fl.Field().String())
	})
	_ = v.RegisterValidation("docext", func(fl validator.FieldLevel) bool {
		return slices.Contains(Extensions, strings.ToLower(filepath.Ext(fl.Field().String())))
	})
	return &Validator{validate: v}
}

// Validate returns nil when u can be uploaded, or an error tagged
// domain.ErrValidationRejected whose message lists every problem.
func (v *Validator) Validate(u Upload) error {
	u.PropertyID = strings.TrimSpace(u.PropertyID)

	err := v.validate.Struct(u)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return zerr.Wrap(err, "failed to validate upload")
	}

	messages := make([]string, 0, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, describe(fe, u))
		fields = append(fields, fe.Field())
	}
	return zerr.With(zerr.Wrap(domain.ErrValidationRejected, strings.Join(messages, "; ")), "fields", fields)
}

func describe(fe validator.FieldError, u Upload) string {
	switch fe.Field() {
	case "PropertyID":
		return "Seleccione la propiedad del documento"
	case "Type":
		if fe.Tag() == "required" {
			return "Seleccione el tipo de documento"
		}
		return "Tipo de documento no permitido: " + u.Type
	case "Notes":
		return "Las observaciones no pueden superar 500 caracteres"
	case "FileName":
		if fe.Tag() == "required" {
			return "Seleccione un archivo"
		}
		return "Tipo de archivo no permitido. Use: " + strings.Join(Extensions, ", ")
	case "Content":
		if fe.Tag() == "min" {
			return "El archivo está vacío"
		}
		return "El archivo supera el tamaño máximo de " + humanize.IBytes(MaxSize) +
			" (" + humanize.IBytes(uint64(len(u.Content))) + ")"
	default:
		return fe.Error()
	}
}
