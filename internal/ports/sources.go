package ports

import (
	"context"

	"github.com/bnema/balance-dispatcher/internal/domain"
)

type LedgerLoader interface {
	LoadLedger(ctx context.Context, path string) (domain.Ledger, error)
}

type DirectoryLoader interface {
	LoadDirectory(ctx context.Context, path string) (domain.Directory, error)
}

type ArtifactRenderer interface {
	Render(ctx context.Context, group domain.AgentGroup, destination string) (domain.Artifact, error)
}

type LocatorProfileStore interface {
	Load(ctx context.Context) (domain.LocatorProfile, error)
	Save(ctx context.Context, profile domain.LocatorProfile) error
}
