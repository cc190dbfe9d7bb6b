package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/stratum-quant/stratum/internal/contracts"
)

// PillarProvider supplies the pillar scores for one scoring run. The
// pillar calculators themselves live upstream; this seam is how their
// output reaches the engine.
type PillarProvider interface {
	PillarScores(ctx context.Context) (contracts.ScoreInput, error)
}

// FileProvider reads pillar scores from a JSON file matching
// contracts.ScoreInput.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider reading from path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// PillarScores loads and decodes the input file.
func (p *FileProvider) PillarScores(_ context.Context) (contracts.ScoreInput, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return contracts.ScoreInput{}, fmt.Errorf("failed to read pillar scores: %w", err)
	}

	var input contracts.ScoreInput
	if err := json.Unmarshal(data, &input); err != nil {
		return contracts.ScoreInput{}, fmt.Errorf("failed to decode pillar scores: %w", err)
	}

	return input, nil
}
