// =============================================================================
// Revenue Guard - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the CLI, including:
//   - Output directory management
//   - Output file naming
//   - Audit report generation
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a regular file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//     {ro}        - Repair order id (passed in params)
//   - params: A map of placeholder values, keyed without braces.
//   - ext: The extension to ensure, e.g. ".xml".
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//
//	format: "{ro}_{timestamp}_{uuid}"
//	params: {"ro": "RO-500"}
//	ext:    ".xml"
//	output: "RO-500_20261018_093000_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xml"
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	for key, value := range params {
		replacements["{"+key+"}"] = sanitizeFileName(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// sanitizeFileName replaces path separators and other characters that are
// unsafe in file names.
func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
}

// =============================================================================
// AUDIT REPORT
// =============================================================================

// AuditReport is the final audit and revenue report of a repair order.
type AuditReport struct {
	ID            string
	RepairOrderID string
	GeneratedAt   time.Time
	Submitted     bool

	// MechanicNote is the technician's work description.
	MechanicNote string

	// InvoiceScanned is true once the digital audit ran.
	InvoiceScanned bool
	DigitalErrors  []string

	// VisualFinding is empty when no visual audit ran.
	VisualFinding string
	VisualVerdict string
	VisualMatched bool

	// AcousticDiagnosis is empty when no acoustic audit ran.
	AcousticDiagnosis string
	AcousticParts     string
}

// NewAuditReport creates a report with a fresh id.
func NewAuditReport(roID string) *AuditReport {
	return &AuditReport{
		ID:            uuid.New().String(),
		RepairOrderID: roID,
		GeneratedAt:   time.Now(),
	}
}

// Format renders the report as plain text.
func (r *AuditReport) Format() string {
	var b strings.Builder

	b.WriteString("Revenue Guard - Final Audit & Revenue Report\n")
	b.WriteString("================================================================================\n\n")
	fmt.Fprintf(&b, "  Report ID:      %s\n", r.ID)
	fmt.Fprintf(&b, "  Repair Order:   %s\n", r.RepairOrderID)
	fmt.Fprintf(&b, "  Generated:      %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "  Submitted:      %t\n", r.Submitted)
	if r.MechanicNote != "" {
		fmt.Fprintf(&b, "  Mechanic Note:  %s\n", r.MechanicNote)
	}
	b.WriteString("\n")

	b.WriteString("Digital Audit Results:\n")
	b.WriteString("--------------------------------------------------------------------------------\n")
	switch {
	case !r.InvoiceScanned:
		b.WriteString("  Not run\n")
	case len(r.DigitalErrors) == 0:
		b.WriteString("  ✓ No issues found\n")
	default:
		for _, e := range r.DigitalErrors {
			fmt.Fprintf(&b, "  ✗ %s\n", e)
		}
	}
	b.WriteString("\n")

	b.WriteString("Visual Audit Results:\n")
	b.WriteString("--------------------------------------------------------------------------------\n")
	if r.VisualFinding == "" {
		b.WriteString("  Not run\n")
	} else {
		mark := "✗"
		if r.VisualMatched {
			mark = "✓"
		}
		fmt.Fprintf(&b, "  Finding:  %s\n", r.VisualFinding)
		fmt.Fprintf(&b, "  %s %s\n", mark, r.VisualVerdict)
	}
	b.WriteString("\n")

	b.WriteString("Acoustic Diagnosis:\n")
	b.WriteString("--------------------------------------------------------------------------------\n")
	if r.AcousticDiagnosis == "" {
		b.WriteString("  Not run\n")
	} else {
		fmt.Fprintf(&b, "  Diagnosis:         %s\n", r.AcousticDiagnosis)
		if r.AcousticParts != "" {
			fmt.Fprintf(&b, "  Responsible Parts: %s\n", r.AcousticParts)
		}
	}
	b.WriteString("\n")

	b.WriteString("================================================================================\n")
	b.WriteString("End of Report\n")

	return b.String()
}

// WriteAuditReport writes the report to outputDir.
//
// PARAMETERS:
//   - report: The report to write.
//   - outputDir: The directory to write the report file.
//   - format: The file name format (see GenerateOutputFileName).
//
// RETURNS:
//   - The path to the report file.
//   - An error if writing fails.
func WriteAuditReport(report *AuditReport, outputDir, format string) (string, error) {
	if err := EnsureDir(outputDir); err != nil {
		return "", err
	}

	fileName := "audit_" + GenerateOutputFileName(format, map[string]string{"ro": report.RepairOrderID}, ".txt")
	reportPath := filepath.Join(outputDir, fileName)

	file, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("failed to create audit report: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writer.WriteString(report.Format())

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush audit report: %w", err)
	}

	return reportPath, nil
}
