package reconcile

import (
	"strings"

	"github.com/ginjaninja78/revenue-guard/internal/types"
)

const (
	segmentSeparator = "|"
	partMarker       = "PART:"
)

// ExtractPart returns the part name claimed by a finding, trimmed and
// lower-cased, and whether a PART: marker was present.
//
// Only the first "|" segment is considered. The text after the last
// case-insensitive PART: marker in that segment is the part name. Without a
// marker the whole first segment is returned.
//
// A marker with nothing after it ("PART:", "PART:  |CONF:1") yields "" with
// true. Reconcile reports such a finding as a MalformedFinding mismatch and
// never treats an empty part as billed.
//
// Examples:
//
//	"PART:Front Bumper|CONF:0.8" -> "front bumper", true
//	"  part: Oil Filter "        -> "oil filter", true
//	"Brake Pads|CONF:0.4"        -> "brake pads", false
func ExtractPart(finding types.Finding) (string, bool) {
	segment, _, _ := strings.Cut(string(finding), segmentSeparator)

	found := false
	if idx := lastIndexFold(segment, partMarker); idx >= 0 {
		segment = segment[idx+len(partMarker):]
		found = true
	}

	return strings.ToLower(strings.TrimSpace(segment)), found
}

// lastIndexFold is strings.LastIndex with ASCII case folding.
func lastIndexFold(s, substr string) int {
	for i := len(s) - len(substr); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

// billedHaystack joins the lower-cased item names with single spaces.
// Matching against the joined string means a part name can match across two
// adjacent item names ("filter brake" matches "Oil Filter" + "Brake Pads").
func billedHaystack(records []types.BillingRecord) string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.ItemName
	}
	return strings.ToLower(strings.Join(names, " "))
}
