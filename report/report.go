// Package report prints the workflow results as terminal tables.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gonum.org/v1/gonum/stat"

	"github.com/biswajyotidutta/tabeda/analysis"
	"github.com/biswajyotidutta/tabeda/metrics"
	"github.com/biswajyotidutta/tabeda/pkg/errors"
)

// Report writes styled sections to w. Colors are dropped automatically when
// w is not a terminal.
type Report struct {
	w io.Writer

	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	number lipgloss.Style
	banner lipgloss.Style
}

// New returns a Report writing to w.
func New(w io.Writer) *Report {
	re := lipgloss.NewRenderer(w)
	return &Report{
		w:      w,
		title:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("13")).MarginTop(1),
		header: re.NewStyle().Bold(true).Padding(0, 1),
		cell:   re.NewStyle().Padding(0, 1),
		number: re.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		banner: re.NewStyle().
			Background(lipgloss.Color("13")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 2),
	}
}

func (r *Report) section(name string, body string) error {
	_, err := fmt.Fprintln(r.w, r.title.Render(name)+"\n"+body)
	return errors.Wrapf(err, "write %s", name)
}

// table renders rows under headers; columns after the first are right aligned.
func (r *Report) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return r.header
			case col == 0:
				return r.cell
			default:
				return r.number
			}
		}).
		String()
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Summary prints shape, describe table, missing counts, the top target
// correlations and the skewness ranking.
func (r *Report) Summary(s *analysis.Summary, target string) error {
	shape := fmt.Sprintf("%d rows × %d features (+ target %s)", s.Rows, s.Features, target)
	if err := r.section("Shape", shape); err != nil {
		return err
	}
	if err := r.Describe(s.Columns); err != nil {
		return err
	}
	if err := r.Missing(s.Missing); err != nil {
		return err
	}
	if err := r.Ranking("Top correlations with "+target, "corr", s.TopWithTarget); err != nil {
		return err
	}
	return r.Ranking("Skewness", "skew", s.Skewness)
}

// Describe prints one row per column.
func (r *Report) Describe(cols []analysis.ColumnSummary) error {
	rows := make([][]string, len(cols))
	for i, c := range cols {
		rows[i] = []string{
			c.Name, strconv.Itoa(c.Count),
			num(c.Mean), num(c.Std), num(c.Min),
			num(c.Q25), num(c.Q50), num(c.Q75), num(c.Max),
		}
	}
	headers := []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	return r.section("Summary statistics", r.table(headers, rows))
}

// Missing prints the columns that have missing values, or a single line when
// none do.
func (r *Report) Missing(missing map[string]int) error {
	names := make([]string, 0, len(missing))
	for name, n := range missing {
		if n > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return r.section("Missing values", "none")
	}
	sort.Strings(names)
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, strconv.Itoa(missing[name])}
	}
	return r.section("Missing values", r.table([]string{"column", "missing"}, rows))
}

// Ranking prints ranked values in order.
func (r *Report) Ranking(title, label string, ranked []analysis.Ranked) error {
	if len(ranked) == 0 {
		return r.section(title, "none")
	}
	rows := make([][]string, len(ranked))
	for i, v := range ranked {
		rows[i] = []string{strconv.Itoa(i + 1), v.Name, num(v.Value)}
	}
	return r.section(title, r.table([]string{"#", "column", label}, rows))
}

// Split prints the partition sizes.
func (r *Report) Split(train, test int) error {
	return r.section("Split", fmt.Sprintf("train %d, test %d", train, test))
}

// Metrics prints an evaluation report under the model name.
func (r *Report) Metrics(model string, m metrics.Report) error {
	rows := [][]string{
		{"samples", strconv.Itoa(m.Samples)},
		{"MSE", num(m.MSE)},
		{"RMSE", num(m.RMSE)},
		{"MAE", num(m.MAE)},
		{"R²", num(m.R2)},
	}
	body := r.table([]string{"metric", "value"}, rows)
	return r.section("Evaluation: "+model, body+"\n"+r.banner.Render(fmt.Sprintf("MSE %s   R² %s", num(m.MSE), num(m.R2))))
}

// CrossValidation prints per-fold R² with the mean and standard deviation.
func (r *Report) CrossValidation(scores []float64) error {
	if len(scores) == 0 {
		return errors.NewValueError("CrossValidation", "no scores")
	}
	rows := make([][]string, len(scores))
	for i, s := range scores {
		rows[i] = []string{strconv.Itoa(i + 1), num(s)}
	}
	mean, std := stat.PopMeanStdDev(scores, nil)
	body := r.table([]string{"fold", "R²"}, rows) + fmt.Sprintf("\nmean %s ± %s", num(mean), num(std))
	return r.section("Cross-validation", body)
}

// Files lists written files, one per line.
func (r *Report) Files(title string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	return r.section(title, strings.Join(paths, "\n"))
}
