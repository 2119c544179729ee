package subcmd

import (
	"fmt"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewLookupCommand())
}

func NewLookupCommand() *cobra.Command {
	lookupCmd := &LookupCommand{}

	cmd := &cobra.Command{
		Use:   "lookup <barcode>",
		Short: "Look a barcode up in grocy, or in Open Food Facts with --fallback",
		Args:  cobra.ExactArgs(1),
		RunE:  lookupCmd.run,
	}

	cmd.Flags().BoolVar(&lookupCmd.Fallback, "fallback", false, "query Open Food Facts instead of grocy")
	cmd.Flags().StringVar(&lookupCmd.OptionsPath, "options", "", "path to the add-on options file (overrides config)")

	return cmd
}

type LookupCommand struct {
	Fallback    bool
	OptionsPath string
}

func (l *LookupCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if l.OptionsPath != "" {
		cfg.OptionsPath = l.OptionsPath
	}
	rt, err := newRuntime(cfg, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	if l.Fallback {
		product, err := rt.scanner.Fallback(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		t.AppendHeader(table.Row{"Barcode", "Name", "Brands", "Quantity"})
		t.AppendRow(table.Row{product.Code, product.ProductName, product.Brands, product.Quantity})
		t.Render()
		return nil
	}

	result, err := rt.scanner.Lookup(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if result.Outcome != model.Found {
		return fmt.Errorf("%s: %s", result.Outcome, result.Message)
	}
	p := result.Product
	t.AppendHeader(table.Row{"Barcode", "Name", "Stock", "Unit", "Location"})
	t.AppendRow(table.Row{p.Barcode, p.Name, p.StockAmount, p.Unit, p.Location})
	t.Render()
	return nil
}
