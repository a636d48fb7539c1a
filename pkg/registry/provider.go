// Package registry supplies client registry snapshots to the matcher.
package registry

import (
	"context"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
)

// Provider fetches a registry snapshot. The matcher scores against whatever
// snapshot it is handed; refresh policy lives entirely in the provider.
type Provider interface {
	Clients(ctx context.Context) ([]models.Client, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) ([]models.Client, error)

func (f ProviderFunc) Clients(ctx context.Context) ([]models.Client, error) {
	return f(ctx)
}
