package analyzer

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"

	"github.com/ginjaninja78/revenue-guard/internal/config"
	"github.com/ginjaninja78/revenue-guard/internal/types"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
)

const visualPrompt = `You are auditing a vehicle repair. The first image was taken BEFORE the repair and the second AFTER it.
Identify the single part that was replaced or repaired.
Reply with exactly one line and nothing else, in this format:
PART:<part name>|CONF:<confidence between 0 and 1>|BOX:<ymin,xmin,ymax,xmax>
The box locates the part on the AFTER image, with coordinates normalized to 0-1000.`

const audioPrompt = `You are a master mechanic listening to an engine recording.
Diagnose the fault you hear and name the parts responsible.
Reply with exactly one line and nothing else, in this format:
DIAGNOSIS:<one sentence diagnosis>|PARTS:<comma separated part names>`

// contentGenerator is the subset of *genai.Models used by GeminiAnalyzer.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiAnalyzer forwards evidence to a hosted Gemini model.
type GeminiAnalyzer struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGeminiAnalyzer creates an analyzer from the analyzer settings.
// It returns ErrAPIKeyRequired when no key is found in the environment.
func NewGeminiAnalyzer(ctx context.Context, settings config.AnalyzerSettings) (*GeminiAnalyzer, error) {
	apiKey := settings.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", ErrAPIKeyRequired, settings.APIKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiAnalyzer{
		models:  client.Models,
		model:   settings.Model,
		timeout: settings.Timeout,
	}, nil
}

// AnalyzeVisual sends both photos and returns the normalized PART: finding
// and the bounding box, when the reply contains one.
func (g *GeminiAnalyzer) AnalyzeVisual(ctx context.Context, beforePath, afterPath, fileName string) (types.Finding, *types.BoundingBox, error) {
	before, err := readEvidence(beforePath, beforePath)
	if err != nil {
		return "", nil, err
	}
	after, err := readEvidence(afterPath, fileName)
	if err != nil {
		return "", nil, err
	}

	reply, err := g.generate(ctx, genai.NewPartFromText(visualPrompt), before, after)
	if err != nil {
		return "", nil, err
	}

	finding := types.Finding(reply)
	box, _ := ParseBoundingBox(finding)
	return finding, box, nil
}

// AnalyzeAudio sends the recording and returns the normalized diagnosis.
func (g *GeminiAnalyzer) AnalyzeAudio(ctx context.Context, path string) (string, types.Finding, error) {
	audio, err := readEvidence(path, path)
	if err != nil {
		return "", "", err
	}

	reply, err := g.generate(ctx, genai.NewPartFromText(audioPrompt), audio)
	if err != nil {
		return "", "", err
	}

	return reply, ParseDiagnosis(reply).Finding(), nil
}

func (g *GeminiAnalyzer) generate(ctx context.Context, parts ...*genai.Part) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	startTime := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)},
	)
	if err != nil {
		return "", fmt.Errorf("analyzer request failed: %w", err)
	}

	reply := normalizeReply(resp.Text())
	logging.FromContext(ctx).Debug().
		Str("model", g.model).
		Str("reply", reply).
		Dur("duration", time.Since(startTime)).
		Msg("Analyzer replied")

	if reply == "" {
		return "", fmt.Errorf("analyzer returned an empty reply")
	}
	return reply, nil
}

// readEvidence loads an evidence file as an inline part. name selects the
// media type.
func readEvidence(path, name string) (*genai.Part, error) {
	mime, err := mimeType(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence: %w", err)
	}

	return genai.NewPartFromBytes(data, mime), nil
}
