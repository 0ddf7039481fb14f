package listctl

import (
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
	"go.trai.ch/estatedesk/internal/engine/derive"
	"go.trai.ch/estatedesk/internal/engine/lookup"
)

// DefaultPageSize is used when a view declares none.
const DefaultPageSize = 20

// Config declares one list view.
type Config struct {
	// Name identifies the view in logs, spans and errors.
	Name    string
	Primary domain.Resource
	// Lookups are fetched alongside Primary on every cycle.
	Lookups  []lookup.Source
	Rules    derive.Rules
	PageSize int
	Messages Messages
}

// Messages are the user-facing texts of a view.
type Messages struct {
	// Singular names one record with its article, e.g. "la propiedad".
	Singular string
	// Plural names the collection with its article, e.g. "las propiedades".
	Plural string
	// Conflict is shown when a delete is refused because of related records.
	Conflict string
}

// Deps are the collaborators shared by every controller.
type Deps struct {
	Transport ports.Transport
	Cache     ports.Cache
	Notifier  ports.Notifier
	Confirmer ports.Confirmer
	Logger    ports.Logger
	Tracer    ports.Tracer
}
