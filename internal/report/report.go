package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"tokenchecker/internal/coordinator"
	"tokenchecker/internal/domain/model"
)

// ExplorerURL is the account page prefix used for wallet links.
const ExplorerURL = "https://solscan.io/account/"

// Filter is the threshold the rendered results were filtered with.
type Filter struct {
	Threshold float64    `json:"threshold" yaml:"threshold"`
	Unit      model.Unit `json:"-" yaml:"-"`
	UnitName  string     `json:"unit" yaml:"unit"`
}

// NewFilter builds a Filter for threshold on unit.
func NewFilter(threshold float64, unit model.Unit) Filter {
	return Filter{Threshold: threshold, Unit: unit, UnitName: unit.String()}
}

// Report is the structured form of a finished run.
type Report struct {
	Results []model.Result    `json:"results" yaml:"results"`
	Stats   coordinator.Stats `json:"stats" yaml:"stats"`
	Filter  *Filter           `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// Reporter writes progress and the final report for one format.
type Reporter struct {
	w      io.Writer
	format string
}

// New creates a reporter writing format ("table", "json" or "yaml") to w.
func New(w io.Writer, format string) *Reporter {
	return &Reporter{w: w, format: format}
}

// Progress prints one line for a completed wallet. Structured formats keep
// stdout clean, so progress is only shown for the table format.
func (r *Reporter) Progress(done, total int, res model.Result) {
	if r.format != "table" {
		return
	}
	fmt.Fprintln(r.w, ProgressLine(done, total, res))
}

// ProgressLine formats a completed wallet with the remaining count.
func ProgressLine(done, total int, res model.Result) string {
	counter := fmt.Sprintf("[%d/%d]", done, total)
	if res.HasError() {
		return pterm.Error.Sprintf("%s %s: %s", counter, res.Wallet, res.Message)
	}
	return pterm.Success.Sprintf("%s %s: %s", counter, res.Wallet, describe(res))
}

// Retried prints the outcome of a single-wallet retry, table format only.
func (r *Reporter) Retried(res model.Result) {
	if r.format != "table" {
		return
	}
	fmt.Fprintln(r.w, RetryLine(res))
}

// RetryLine formats the outcome of a single-wallet retry.
func RetryLine(res model.Result) string {
	if res.HasError() {
		return pterm.Warning.Sprintf("retry %s: %s", res.Wallet, res.Message)
	}
	return pterm.Success.Sprintf("retry %s: %s", res.Wallet, describe(res))
}

// Render writes the filtered results and the stats of the full result set.
func (r *Reporter) Render(results []model.Result, stats coordinator.Stats, filter Filter) error {
	rep := Report{Results: results, Stats: stats}
	if filter.Threshold != 0 {
		rep.Filter = &filter
	}

	switch r.format {
	case "json":
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	default:
		return r.renderTable(rep)
	}
}

func (r *Reporter) renderTable(rep Report) error {
	if len(rep.Results) > 0 {
		table, err := pterm.DefaultTable.
			WithHasHeader().
			WithData(TableData(rep.Results)).
			Srender()
		if err != nil {
			return fmt.Errorf("failed to render results table: %w", err)
		}
		fmt.Fprintln(r.w, table)
	}

	fmt.Fprintln(r.w, StatsLine(rep.Stats))
	if rep.Filter != nil {
		fmt.Fprintln(r.w, FilterLine(*rep.Filter))
	}
	return nil
}

// TableData lays results out as table rows, header first.
func TableData(results []model.Result) pterm.TableData {
	data := pterm.TableData{{"#", "Wallet", "Balance", "Asset", "USD", "Status", "Explorer"}}
	for i, res := range results {
		row := []string{strconv.Itoa(i + 1), res.Wallet}
		switch {
		case res.Retrying:
			row = append(row, "", "", "", "retrying")
		case res.HasError():
			row = append(row, "", "", "", res.Message)
		default:
			row = append(row, FormatAmount(res.Balance), res.Classifier, FormatUSD(res.USDValue), "ok")
		}
		data = append(data, append(row, ExplorerURL+res.Wallet))
	}
	return data
}

// StatsLine summarises a run. The USD total is only shown when positive.
func StatsLine(s coordinator.Stats) string {
	parts := []string{
		fmt.Sprintf("Total: %d wallets", s.Total),
		fmt.Sprintf("Non-zero: %d", s.NonZero),
		fmt.Sprintf("Sum: %s %s", FormatAmount(s.TotalTokens), s.Label),
	}
	if s.TotalUSD > 0 {
		parts = append(parts, "Value: "+FormatUSD(s.TotalUSD))
	}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("Failed: %d", s.Failed))
	}
	return strings.Join(parts, " | ")
}

// FilterLine describes an active threshold filter.
func FilterLine(f Filter) string {
	return fmt.Sprintf("Filtered %s ≥ %s", f.Unit, FormatAmount(f.Threshold))
}

// FormatAmount prints a token amount with at most nine decimals and no
// trailing zeros.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).Round(9).String()
}

// FormatUSD prints a dollar value with cents.
func FormatUSD(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func describe(res model.Result) string {
	s := FormatAmount(res.Balance) + " " + res.Classifier
	if res.USDValue > 0 {
		s += " (" + FormatUSD(res.USDValue) + ")"
	}
	return s
}
