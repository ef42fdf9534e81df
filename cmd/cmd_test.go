package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/revenue-guard/internal/reconcile"
)

// writeTestConfig writes a configuration keeping every file under dir.
// extra lines are appended to the YAML document.
func writeTestConfig(t *testing.T, dir string, extra ...string) string {
	t.Helper()

	content := fmt.Sprintf(`ledger_file: %s
notes_file: %s
session_file: %s
output_dir: %s
log_level: error
`,
		filepath.Join(dir, "final_invoice.csv"),
		filepath.Join(dir, "mechanic_notes.csv"),
		filepath.Join(dir, "session.yaml"),
		filepath.Join(dir, "output"),
	)
	for _, line := range extra {
		content += line + "\n"
	}

	path := filepath.Join(dir, "revguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// resetFlags restores every flag of c and its subcommands to its default,
// so values set by one command line do not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			// A slice flag appends once it has been set; emptying it makes
			// the next Set start over.
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestWorkflow(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)
	common := []string{"--config", cfg, "--ro", "RO-500"}
	run := func(args ...string) string {
		t.Helper()
		out, err := executeCommand(t, append(args, common...)...)
		require.NoError(t, err, out)
		return out
	}

	out := run("bill", "--part", "Oil Filter", "--part", "Brake Pads", "--note", "Changed oil and pads")
	assert.Contains(t, out, "BILLING SUBMITTED")
	assert.Contains(t, out, "$205.00")
	assert.FileExists(t, filepath.Join(dir, "final_invoice.csv"))

	out = run("reconcile", "--finding", "PART:Front Bumper|CONF:0.8", "--json")
	var verdict reconcile.Verdict
	require.NoError(t, json.Unmarshal([]byte(out), &verdict))
	assert.Equal(t, reconcile.StatusMismatch, verdict.Status)
	assert.Equal(t, "front bumper", verdict.DetectedPart)
	assert.Equal(t, 2, verdict.RecordsChecked)

	out = run("audit", "invoice")
	assert.Contains(t, out, "✓ No issues found")

	out = run("audit", "visual", "--finding", "PART:Oil Filter|CONF:0.9|BOX:10,20,30,40")
	assert.Contains(t, out, "✓ Verified: OIL FILTER is documented.")
	assert.Contains(t, out, "ymin=10 xmin=20 ymax=30 xmax=40")

	out = run("audit", "audio", "--finding", "DIAGNOSIS:Worn pads squeal|PARTS:Brake Pads, Rotor")
	assert.Contains(t, out, "Responsible Parts: Brake Pads, Rotor")
	assert.Contains(t, out, "✓ Verified: BRAKE PADS is documented.")

	out = run("submit")
	assert.Contains(t, out, "sent to the service manager")

	out = run("report")
	assert.Contains(t, out, "Submitted:      true")
	assert.Contains(t, out, "Mechanic Note:  Changed oil and pads")
	assert.Contains(t, out, "Diagnosis:         Worn pads squeal")
	assert.Contains(t, out, "Report saved to:")

	reports, err := filepath.Glob(filepath.Join(dir, "output", "audit_RO-500_*.txt"))
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	out = run("invoice", "--export", "xml")
	assert.Contains(t, out, "Total Amount: $205.00")
	invoices, err := filepath.Glob(filepath.Join(dir, "output", "invoice_RO-500_*.xml"))
	require.NoError(t, err)
	assert.Len(t, invoices, 1)

	out = run("reset")
	assert.Contains(t, out, "Session reset for RO-500")
	assert.NoFileExists(t, filepath.Join(dir, "session.yaml"))
}

func TestReconcileWithoutLedger(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)

	out, err := executeCommand(t, "reconcile", "--config", cfg, "--ro", "RO-500",
		"--finding", "PART:Front Bumper")
	require.NoError(t, err)
	assert.Contains(t, out, "Reconciliation Error:")
	assert.Contains(t, out, string(reconcile.CodeLedgerUnavailable))
}

func TestBillRejectsUnknownPart(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)

	_, err := executeCommand(t, "bill", "--config", cfg, "--ro", "RO-500", "--part", "Flux Capacitor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Flux Capacitor")
	assert.Contains(t, err.Error(), "available: Oil Filter, Brake Pads")
	assert.NoFileExists(t, filepath.Join(dir, "final_invoice.csv"))
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Revenue Guard")
	assert.Contains(t, out, "Version:    "+Version)
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)

	for i := 0; i < 2; i++ {
		out, err := executeCommand(t, "bill", "--config", cfg, "--ro", "RO-500",
			"--part", "Oil Filter", "--part", "Brake Pads")
		require.NoError(t, err, out)
		assert.Contains(t, out, "$205.00", "run %d", i+1)
	}

	out, err := executeCommand(t, "reconcile", "--config", cfg, "--ro", "RO-500",
		"--finding", "PART:Oil Filter", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))

	out, err = executeCommand(t, "reconcile", "--config", cfg, "--ro", "RO-500",
		"--finding", "PART:Oil Filter")
	require.NoError(t, err)
	assert.Contains(t, out, "RECONCILIATION")
}

func TestInvoiceWithoutLedger(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)

	out, err := executeCommand(t, "invoice", "--config", cfg, "--ro", "RO-500")
	require.NoError(t, err)
	assert.Contains(t, out, "No invoice recorded for RO-500")
	assert.NotContains(t, out, "FINAL INVOICE")
}

func TestInvoiceWithoutSQLiteLedger(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir, "ledger_backend: sqlite", "sqlite_path: "+filepath.Join(dir, "revguard.db"))

	out, err := executeCommand(t, "invoice", "--config", cfg, "--ro", "RO-500")
	require.NoError(t, err)
	assert.Contains(t, out, "No invoice recorded for RO-500")
}

func TestBillRejectionWritesValidationLog(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "parts.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte(`parts:
  - id: P-1
    name: Wiper Blade
    price: "12.50"
`), 0644))
	cfg := writeTestConfig(t, dir, "inventory_file: "+catalog)

	out, err := executeCommand(t, "bill", "--config", cfg, "--ro", "RO-500", "--part", "Wiper Blade")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "billing rejected")
	assert.Contains(t, out, "Validation log saved to:")
	assert.NoFileExists(t, filepath.Join(dir, "final_invoice.csv"))

	logs, err := filepath.Glob(filepath.Join(dir, "output", "validation_RO-500_*.log"))
	require.NoError(t, err)
	require.Len(t, logs, 1)

	raw, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Field 'item_id'")
}

func TestAuditInvoiceChecksCatalog(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)
	ledgerFile := "ro_id,item_id,item_name,billed_price\nRO-500,P101,Oil Filter,95.00\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "final_invoice.csv"), []byte(ledgerFile), 0644))

	out, err := executeCommand(t, "audit", "invoice", "--config", cfg, "--ro", "RO-500")
	require.NoError(t, err)
	assert.Contains(t, out, "✗ ")
	assert.Contains(t, out, "billed at 95.00 but the inventory price is 85.00")
}

func TestAuditRequiresEvidenceFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)

	_, err := executeCommand(t, "audit", "visual", "--config", cfg,
		"--before", filepath.Join(dir, "before.jpg"), "--after", filepath.Join(dir, "after.jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evidence file not found")

	_, err = executeCommand(t, "audit", "audio", "--config", cfg, "--audio", filepath.Join(dir, "engine.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evidence file not found")
}
