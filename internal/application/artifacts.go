package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/platform/logger"
	"github.com/bnema/balance-dispatcher/internal/ports"
)

const outputDirMode = 0o755

type ArtifactPipeline struct {
	renderer ports.ArtifactRenderer
	log      *logger.Logger
}

func NewArtifactPipeline(renderer ports.ArtifactRenderer, log *logger.Logger) *ArtifactPipeline {
	if log == nil {
		log = logger.NewNop()
	}

	return &ArtifactPipeline{renderer: renderer, log: log.With("component", "artifacts")}
}

// Produce renders one artifact for group under outDir.
func (p *ArtifactPipeline) Produce(ctx context.Context, outDir string, group domain.AgentGroup) (domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, err
	}

	destination := filepath.Join(outDir, domain.ArtifactFileName(group.Agent))
	if err := os.MkdirAll(filepath.Dir(destination), outputDirMode); err != nil {
		return domain.Artifact{}, fmt.Errorf("create output directory: %w", err)
	}

	artifact, err := p.renderer.Render(ctx, group, destination)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("render artifact for agent %s: %w", group.Agent, err)
	}
	if artifact.Path == "" {
		artifact.Path = destination
	}
	if artifact.Agent == "" {
		artifact.Agent = group.Agent
	}

	p.log.Debug("artifact rendered", "agent", group.Agent, "path", artifact.Path, "records", len(group.Records))
	return artifact, nil
}
