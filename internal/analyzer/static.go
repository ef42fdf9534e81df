package analyzer

import (
	"context"

	"github.com/ginjaninja78/revenue-guard/internal/types"
)

// StaticAnalyzer returns fixed replies. It backs the --finding flags of the
// CLI and tests.
type StaticAnalyzer struct {
	Visual types.Finding
	Audio  string
}

// AnalyzeVisual returns the configured visual finding.
func (s StaticAnalyzer) AnalyzeVisual(ctx context.Context, _, _, _ string) (types.Finding, *types.BoundingBox, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	box, _ := ParseBoundingBox(s.Visual)
	return s.Visual, box, nil
}

// AnalyzeAudio returns the configured acoustic reply.
func (s StaticAnalyzer) AnalyzeAudio(ctx context.Context, _ string) (string, types.Finding, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	return s.Audio, ParseDiagnosis(s.Audio).Finding(), nil
}
