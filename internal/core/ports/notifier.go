package ports

import "go.trai.ch/estatedesk/internal/core/domain"

// Notifier delivers user-facing notices.
//
//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks
type Notifier interface {
	Notify(n domain.Notice)
}
