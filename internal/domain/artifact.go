package domain

import (
	"fmt"
	"strings"
)

const artifactFilePrefix = "imagem_assessor_"

// Artifact is the rendered summary of one agent's records.
type Artifact struct {
	Agent AgentID
	Path  string
}

// ArtifactFileName derives the per-agent image name. Path separators in the id
// are replaced so the file always lands directly in the output directory.
func ArtifactFileName(id AgentID) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(string(id))
	return fmt.Sprintf("%s%s.png", artifactFilePrefix, safe)
}
