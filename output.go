package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/0xpanoramix/flashbots-relay/pkg/rpc"
)

const weiDecimals = 18

// fmtWei renders a base-10 wei amount as ETH. Values that are not decimal
// integers are returned unchanged.
func fmtWei(wei string) string {
	amount, err := decimal.NewFromString(wei)
	if err != nil || !amount.Equal(amount.Truncate(0)) {
		return wei
	}
	return amount.Shift(-weiDecimals).String() + " ETH"
}

func fmtOptWei(wei *string) string {
	if wei == nil {
		return "N/A"
	}
	return fmtWei(*wei)
}

func fmtOptString(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

func fmtOptBool(b *bool) string {
	if b == nil {
		return "N/A"
	}
	return strconv.FormatBool(*b)
}

// newTable renders box-drawing tables on a terminal and ASCII otherwise.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.SetStyle(table.StyleLight)
	}
	return t
}

func renderUserStats(w io.Writer, stats rpc.UserStats) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Stat", "Value"})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"High priority", fmtOptBool(stats.IsHighPriority)},
		{"All-time miner payments", fmtOptWei(stats.AllTimeMinerPayments)},
		{"All-time gas simulated", fmtOptString(stats.AllTimeGasSimulated)},
		{"7d miner payments", fmtOptWei(stats.Last7dMinerPayments)},
		{"7d gas simulated", fmtOptString(stats.Last7dGasSimulated)},
		{"1d miner payments", fmtOptWei(stats.Last1dMinerPayments)},
		{"1d gas simulated", fmtOptString(stats.Last1dGasSimulated)},
	})
	t.Render()
}

func renderBundleStats(w io.Writer, stats rpc.BundleStats) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Stat", "Value"})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Simulated", fmtOptBool(stats.IsSimulated)},
		{"Sent to miners", fmtOptBool(stats.IsSentToMiners)},
		{"High priority", fmtOptBool(stats.IsHighPriority)},
		{"Submitted at", fmtOptString(stats.SubmittedAt)},
		{"Simulated at", fmtOptString(stats.SimulatedAt)},
		{"Sent to miners at", fmtOptString(stats.SentToMinersAt)},
	})
	t.Render()
}

func renderCallBundle(w io.Writer, res rpc.CallBundleResult) {
	summary := newTable(w)
	summary.AppendHeader(table.Row{"Bundle", "Value"})
	summary.AppendSeparator()
	summary.AppendRows([]table.Row{
		{"Hash", res.BundleHash},
		{"State block", res.StateBlockNumber},
		{"Gas price", res.BundleGasPrice},
		{"Total gas used", res.TotalGasUsed},
		{"Gas fees", fmtWei(res.GasFees)},
		{"Coinbase diff", fmtWei(res.CoinbaseDiff)},
		{"ETH sent to coinbase", fmtWei(res.EthSentToCoinbase)},
	})
	summary.Render()

	txs := newTable(w)
	txs.AppendHeader(table.Row{"#", "Tx Hash", "From", "To", "Gas Used", "Coinbase Diff", "Status"})
	txs.AppendSeparator()
	for i, tx := range res.Results {
		status := "ok"
		switch {
		case tx.Error != "":
			status = "error: " + tx.Error
		case tx.Revert != "":
			status = "revert: " + tx.Revert
		}
		txs.AppendRow(table.Row{i, tx.TxHash, tx.FromAddress, tx.ToAddress, tx.GasUsed, fmtWei(tx.CoinbaseDiff), status})
	}
	txs.Render()
}

func renderKV(w io.Writer, header string, rows ...table.Row) {
	t := newTable(w)
	t.AppendHeader(table.Row{header, "Value"})
	t.AppendSeparator()
	t.AppendRows(rows)
	t.Render()
}

func renderHistory(w io.Writer, entries []SubmissionDTO) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Time", "Method", "Signer", "Block", "Reference", "Outcome", "Error"})
	t.AppendSeparator()
	for _, e := range entries {
		relayErr := ""
		if e.ErrorCode != nil {
			relayErr = fmt.Sprintf("%d: %s", *e.ErrorCode, e.ErrorMessage)
		} else if e.ErrorMessage != "" {
			relayErr = e.ErrorMessage
		}
		t.AppendRow(table.Row{e.ID, e.CreatedAt.Format(time.RFC3339), e.Method, e.Signer, e.Block, e.Reference, e.Outcome, relayErr})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, AutoMerge: true},
	})
	t.Render()
}
