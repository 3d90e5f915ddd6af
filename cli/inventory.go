package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanload/inventory"
)

// InventoryCmd prints the booked lots of a ledger.
type InventoryCmd struct {
	File    string `help:"Beancount input filename." arg:""`
	Account string `help:"Only show accounts starting with this prefix." short:"a"`
}

// lotRow is one lot in the JSON output.
type lotRow struct {
	Account  string `json:"account"`
	Currency string `json:"currency"`
	Units    string `json:"units"`
	Cost     string `json:"cost,omitempty"`
	Date     string `json:"date,omitempty"`
	Label    string `json:"label,omitempty"`
}

func (cmd *InventoryCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := globals.withTelemetry(context.Background(), commandName("inventory", cmd.File), ctx.Stderr)
	defer report()

	ldr, err := globals.newLoader(cmd.File, nil)
	if err != nil {
		return err
	}

	result, err := ldr.Load(runCtx, cmd.File)
	if err != nil {
		if globals.Format == "json" {
			return writeJSONReport(ctx.Stdout, result, err)
		}
		return writeCheckReport(ctx.Stdout, ctx.Stderr, result, err)
	}

	rows := lotRows(result.Inventory, cmd.Account)
	if globals.Format == "json" {
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	writeInventory(ctx.Stdout, rows)
	return nil
}

// lotRows lists the lots of every account matching prefix, accounts and
// currencies sorted, lots in inventory order.
func lotRows(engine *inventory.Engine, prefix string) []lotRow {
	rows := []lotRow{}
	for _, account := range engine.Accounts() {
		if !strings.HasPrefix(account, prefix) {
			continue
		}
		inv, _ := engine.Account(account)
		for _, currency := range inv.Currencies() {
			commodity, _ := inv.Commodity(currency)
			for _, lot := range commodity.Lots() {
				row := lotRow{Account: account, Currency: currency, Units: lot.Units.String(), Label: lot.CostLabel}
				if lot.CostNumber != nil || lot.CostCurrency != "" {
					row.Cost = strings.TrimSpace(fmt.Sprintf("%s %s", costNumber(lot), lot.CostCurrency))
				}
				if !lot.CostDate.IsZero() {
					row.Date = lot.CostDate.Format("2006-01-02")
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func costNumber(lot inventory.Lot) string {
	if lot.CostNumber == nil {
		return ""
	}
	return lot.CostNumber.String()
}

func writeInventory(w io.Writer, rows []lotRow) {
	if len(rows) == 0 {
		printInfof(w, "No lots held")
		return
	}

	table := [][]string{{"Account", "Units", "Currency", "Cost", "Date", "Label"}}
	for _, r := range rows {
		table = append(table, []string{r.Account, r.Units, r.Currency, r.Cost, r.Date, r.Label})
	}

	var buf strings.Builder
	writeTable(&buf, table, 1)
	lines := strings.SplitAfter(buf.String(), "\n")
	_, _ = io.WriteString(w, headerStyle.Render(strings.TrimSuffix(lines[0], "\n"))+"\n")
	_, _ = io.WriteString(w, strings.Join(lines[1:], ""))
}
