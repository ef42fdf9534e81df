package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var inventoryExport string

// inventoryCmd lists the parts catalog the technician can bill from.
var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "List the parts catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		table := tablewriter.NewWriter(out)
		table.Header("Item ID", "Item Name", "Price ($)")
		for _, part := range catalog.Parts() {
			if err := table.Append(part.ID, part.Name, part.Price.StringFixed(2)); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}

		if inventoryExport != "" {
			if err := catalog.WriteXLSX(inventoryExport); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nCatalog saved to: %s\n", inventoryExport)
		}
		return nil
	},
}

func init() {
	inventoryCmd.Flags().StringVar(&inventoryExport, "export", "", "Write the catalog to this .xlsx file")
	rootCmd.AddCommand(inventoryCmd)
}
