// Package session holds the audit dashboard state of one repair order.
//
// State is a plain value. Every handler takes the current State and returns
// the next one; nothing is kept in package variables. The CLI persists the
// State between invocations with Load and Save.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/revenue-guard/internal/inventory"
	"github.com/ginjaninja78/revenue-guard/internal/types"
)

// State is the dashboard state of one repair order.
type State struct {
	RepairOrderID string `yaml:"ro_id"`

	// BillingComplete is set once the technician submitted parts and note.
	BillingComplete bool `yaml:"billing_complete"`

	// Submitted is set once the audit was sent to the service manager.
	Submitted bool `yaml:"submitted"`

	// InvoiceScanned is set once the digital invoice audit ran.
	InvoiceScanned bool `yaml:"invoice_scanned"`

	// Errors holds the digital invoice audit results.
	Errors []string `yaml:"errors,omitempty"`

	// AIDiagnosis is the raw acoustic analyzer reply.
	AIDiagnosis string `yaml:"ai_diagnosis,omitempty"`

	// VisualFindings is the raw visual analyzer finding.
	VisualFindings types.Finding `yaml:"visual_findings,omitempty"`

	// BoundingBox locates the detected part on the after photo.
	BoundingBox *types.BoundingBox `yaml:"bounding_box,omitempty"`

	UpdatedAt time.Time `yaml:"updated_at"`
}

// BillingInput is what the technician enters on the billing form.
type BillingInput struct {
	RepairOrderID string
	PartNames     []string
	Note          string
}

// ErrUnknownPart is returned when a selected part is not in the catalog.
var ErrUnknownPart = errors.New("unknown part")

// now is replaced in tests.
var now = time.Now

// Reset returns a fresh state for roID.
func Reset(roID string) State {
	return State{RepairOrderID: roID, UpdatedAt: now()}
}

// SubmitBilling turns the technician's selection into billing records and a
// mechanic note, and marks billing complete.
//
// Each selected name maps to the first catalog part with that exact name.
// The selection order is kept and duplicates are billed twice.
func SubmitBilling(state State, input BillingInput, catalog *inventory.Catalog) (State, []types.BillingRecord, types.MechanicNote, error) {
	roID := strings.TrimSpace(input.RepairOrderID)
	if roID == "" {
		return state, nil, types.MechanicNote{}, fmt.Errorf("repair order id is required")
	}

	records := make([]types.BillingRecord, 0, len(input.PartNames))
	for _, name := range input.PartNames {
		part, ok := catalog.ByName(name)
		if !ok {
			return state, nil, types.MechanicNote{}, fmt.Errorf("%w: %q", ErrUnknownPart, name)
		}
		records = append(records, types.BillingRecord{
			RepairOrderID: roID,
			ItemID:        part.ID,
			ItemName:      part.Name,
			BilledPrice:   part.Price,
		})
	}

	note := types.MechanicNote{RepairOrderID: roID, NoteText: input.Note}

	next := state
	if next.RepairOrderID != roID {
		next = Reset(roID)
	}
	next.BillingComplete = true
	next.UpdatedAt = now()

	return next, records, note, nil
}

// RecordInvoiceScan stores the digital audit results.
func RecordInvoiceScan(state State, errs []string) State {
	state.InvoiceScanned = true
	state.Errors = append([]string(nil), errs...)
	state.UpdatedAt = now()
	return state
}

// RecordVisual stores the visual finding and its bounding box.
func RecordVisual(state State, finding types.Finding, box *types.BoundingBox) State {
	state.VisualFindings = finding
	if box != nil {
		b := *box
		state.BoundingBox = &b
	} else {
		state.BoundingBox = nil
	}
	state.UpdatedAt = now()
	return state
}

// RecordAudio stores the raw acoustic diagnosis.
func RecordAudio(state State, raw string) State {
	state.AIDiagnosis = raw
	state.UpdatedAt = now()
	return state
}

// Submit marks the audit as sent to the service manager.
func Submit(state State) State {
	state.Submitted = true
	state.UpdatedAt = now()
	return state
}

// Load reads the state from path. A missing file yields Reset(roID).
// A stored state for a different repair order is also replaced by a fresh one.
func Load(path, roID string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Reset(roID), nil
		}
		return State{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse session file: %w", err)
	}

	if roID != "" && state.RepairOrderID != roID {
		return Reset(roID), nil
	}
	return state, nil
}

// Save writes the state to path.
func Save(path string, state State) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Remove deletes the session file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
