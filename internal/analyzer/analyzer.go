// =============================================================================
// Revenue Guard - Evidence Analyzer
// =============================================================================
//
// The evidence analyzer turns photos and engine recordings into findings.
// Inference itself is delegated to a hosted model; this package only sends
// the evidence and normalizes the reply into the informal finding format:
//
//   Visual:   PART:<name>|CONF:<0..1>|BOX:<ymin,xmin,ymax,xmax>
//   Acoustic: DIAGNOSIS:<text>|PARTS:<comma separated parts>
//
// =============================================================================

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/revenue-guard/internal/types"
)

// ErrAPIKeyRequired indicates that no API key is configured for the hosted model.
var ErrAPIKeyRequired = errors.New("API key required")

// ErrUnsupportedMedia indicates an evidence file type the analyzer cannot send.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// Analyzer produces findings from evidence files.
type Analyzer interface {
	// AnalyzeVisual compares the before and after photos. fileName is the
	// original name of the after photo and selects its media type.
	AnalyzeVisual(ctx context.Context, beforePath, afterPath, fileName string) (types.Finding, *types.BoundingBox, error)

	// AnalyzeAudio diagnoses an engine recording. raw is the normalized reply;
	// finding names the first responsible part.
	AnalyzeAudio(ctx context.Context, path string) (raw string, finding types.Finding, err error)
}

// =============================================================================
// ACOUSTIC DIAGNOSIS
// =============================================================================

// Diagnosis is the display form of an acoustic analyzer reply.
type Diagnosis struct {
	// Text is the diagnosis sentence, or the whole reply when unstructured.
	Text string

	// Parts lists the responsible parts as reported.
	Parts string

	// Structured is true when the reply had a "|" separator.
	Structured bool
}

// ParseDiagnosis splits "DIAGNOSIS:<text>|PARTS:<parts>" into its fields.
// A reply without "|" is returned unstructured.
func ParseDiagnosis(raw string) Diagnosis {
	if !strings.Contains(raw, "|") {
		return Diagnosis{Text: strings.TrimSpace(raw)}
	}

	segments := strings.Split(raw, "|")
	return Diagnosis{
		Text:       strings.TrimSpace(strings.ReplaceAll(segments[0], "DIAGNOSIS:", "")),
		Parts:      strings.TrimSpace(strings.ReplaceAll(segments[1], "PARTS:", "")),
		Structured: true,
	}
}

// Finding returns a PART: finding for the first responsible part, or an
// empty finding when none was reported.
func (d Diagnosis) Finding() types.Finding {
	if !d.Structured {
		return ""
	}
	first, _, _ := strings.Cut(d.Parts, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return ""
	}
	return types.Finding("PART:" + first)
}

// =============================================================================
// FINDING HELPERS
// =============================================================================

// ParseBoundingBox reads the BOX:<ymin,xmin,ymax,xmax> segment of a finding.
func ParseBoundingBox(finding types.Finding) (*types.BoundingBox, bool) {
	for _, segment := range strings.Split(string(finding), "|") {
		segment = strings.TrimSpace(segment)
		if len(segment) < 4 || !strings.EqualFold(segment[:4], "BOX:") {
			continue
		}

		value := strings.Trim(strings.TrimSpace(segment[4:]), "[]()")
		fields := strings.Split(value, ",")
		if len(fields) != 4 {
			return nil, false
		}

		var coords [4]int
		for i, f := range fields {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, false
			}
			coords[i] = n
		}

		return &types.BoundingBox{YMin: coords[0], XMin: coords[1], YMax: coords[2], XMax: coords[3]}, true
	}
	return nil, false
}

// normalizeReply strips markdown code fences and returns the first
// non-empty line of a model reply.
func normalizeReply(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		return strings.Trim(line, "`")
	}
	return ""
}

// mimeType maps an evidence file name to the media type sent to the model.
func mimeType(fileName string) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	case ".webp":
		return "image/webp", nil
	case ".mp3":
		return "audio/mp3", nil
	case ".wav":
		return "audio/wav", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, fileName)
	}
}
