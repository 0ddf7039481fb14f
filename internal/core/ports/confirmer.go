package ports

import "context"

// Confirmer is the synchronous yes/no gate in front of destructive actions.
//
//go:generate mockgen -source=confirmer.go -destination=mocks/mock_confirmer.go -package=mocks
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}
