package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ginjaninja78/revenue-guard/internal/config"
	"github.com/ginjaninja78/revenue-guard/internal/types"
)

type fakeGenerator struct {
	reply    string
	err      error
	model    string
	contents []*genai.Content
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(f.reply, genai.RoleModel),
		}},
	}, nil
}

func writeEvidence(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("evidence-"+name), 0644))
	return path
}

func TestGeminiAnalyzeVisual(t *testing.T) {
	gen := &fakeGenerator{reply: "```\nPART:Front Bumper|CONF:0.8|BOX:120, 80, 560, 910\n```"}
	g := &GeminiAnalyzer{models: gen, model: "gemini-2.5-flash"}

	before := writeEvidence(t, "before.jpg")
	after := writeEvidence(t, "upload.tmp")

	finding, box, err := g.AnalyzeVisual(context.Background(), before, after, "after.png")
	require.NoError(t, err)

	assert.Equal(t, types.Finding("PART:Front Bumper|CONF:0.8|BOX:120, 80, 560, 910"), finding)
	assert.Equal(t, &types.BoundingBox{YMin: 120, XMin: 80, YMax: 560, XMax: 910}, box)
	assert.Equal(t, "gemini-2.5-flash", gen.model)

	require.Len(t, gen.contents, 1)
	parts := gen.contents[0].Parts
	require.Len(t, parts, 3)
	assert.Contains(t, parts[0].Text, "PART:<part name>")
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MIMEType)
	assert.Equal(t, "image/png", parts[2].InlineData.MIMEType)
	assert.Equal(t, []byte("evidence-upload.tmp"), parts[2].InlineData.Data)
}

func TestGeminiAnalyzeAudio(t *testing.T) {
	gen := &fakeGenerator{reply: "DIAGNOSIS:Worn pads grinding|PARTS:Brake Pads, Rotors"}
	g := &GeminiAnalyzer{models: gen, model: "gemini-2.5-flash"}

	raw, finding, err := g.AnalyzeAudio(context.Background(), writeEvidence(t, "engine.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "DIAGNOSIS:Worn pads grinding|PARTS:Brake Pads, Rotors", raw)
	assert.Equal(t, types.Finding("PART:Brake Pads"), finding)
	assert.Equal(t, "audio/mp3", gen.contents[0].Parts[1].InlineData.MIMEType)
}

func TestGeminiErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("request failure", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		g := &GeminiAnalyzer{models: &fakeGenerator{err: boom}}
		_, _, err := g.AnalyzeAudio(ctx, writeEvidence(t, "engine.wav"))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty reply", func(t *testing.T) {
		g := &GeminiAnalyzer{models: &fakeGenerator{reply: "\n```\n```\n"}}
		_, _, err := g.AnalyzeAudio(ctx, writeEvidence(t, "engine.wav"))
		assert.Error(t, err)
	})

	t.Run("unsupported media", func(t *testing.T) {
		g := &GeminiAnalyzer{models: &fakeGenerator{reply: "x"}}
		_, _, err := g.AnalyzeAudio(ctx, writeEvidence(t, "engine.flac"))
		assert.ErrorIs(t, err, ErrUnsupportedMedia)
	})

	t.Run("missing file", func(t *testing.T) {
		g := &GeminiAnalyzer{models: &fakeGenerator{reply: "x"}}
		_, _, err := g.AnalyzeVisual(ctx, filepath.Join(t.TempDir(), "nope.jpg"), "after.jpg", "after.jpg")
		assert.Error(t, err)
	})
}

func TestNewGeminiAnalyzerRequiresKey(t *testing.T) {
	t.Setenv("REVGUARD_TEST_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := NewGeminiAnalyzer(context.Background(), config.AnalyzerSettings{
		Model:     "gemini-2.5-flash",
		APIKeyEnv: "REVGUARD_TEST_KEY",
	})
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestParseDiagnosis(t *testing.T) {
	tests := []struct {
		raw  string
		want Diagnosis
	}{
		{
			raw:  "DIAGNOSIS: Rod knock at idle | PARTS: Rod bearing",
			want: Diagnosis{Text: "Rod knock at idle", Parts: "Rod bearing", Structured: true},
		},
		{
			raw:  "Sounds healthy",
			want: Diagnosis{Text: "Sounds healthy"},
		},
		{
			raw:  "Belt squeal|Serpentine belt|extra",
			want: Diagnosis{Text: "Belt squeal", Parts: "Serpentine belt", Structured: true},
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDiagnosis(tt.raw), "raw %q", tt.raw)
	}

	assert.Equal(t, types.Finding(""), ParseDiagnosis("Sounds healthy").Finding())
	assert.Equal(t, types.Finding(""), ParseDiagnosis("DIAGNOSIS:ok|PARTS:").Finding())
}

func TestParseBoundingBox(t *testing.T) {
	box, ok := ParseBoundingBox("PART:Headlight|CONF:0.7|box:[10,20,30,40]")
	require.True(t, ok)
	assert.Equal(t, &types.BoundingBox{YMin: 10, XMin: 20, YMax: 30, XMax: 40}, box)

	for _, f := range []types.Finding{"PART:Headlight", "PART:x|BOX:1,2,3", "PART:x|BOX:a,b,c,d", ""} {
		_, ok := ParseBoundingBox(f)
		assert.False(t, ok, "finding %q", f)
	}
}

func TestStaticAnalyzer(t *testing.T) {
	s := StaticAnalyzer{
		Visual: "PART:Oil Filter|CONF:0.9|BOX:1,2,3,4",
		Audio:  "DIAGNOSIS:Ticking|PARTS:Lifter",
	}

	finding, box, err := s.AnalyzeVisual(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.Equal(t, s.Visual, finding)
	assert.NotNil(t, box)

	raw, audioFinding, err := s.AnalyzeAudio(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, s.Audio, raw)
	assert.Equal(t, types.Finding("PART:Lifter"), audioFinding)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = s.AnalyzeVisual(ctx, "", "", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMimeType(t *testing.T) {
	for name, want := range map[string]string{
		"a.JPG":  "image/jpeg",
		"a.jpeg": "image/jpeg",
		"a.png":  "image/png",
		"a.wav":  "audio/wav",
		"a.mp3":  "audio/mp3",
	} {
		got, err := mimeType(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := mimeType("a.gif")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}
