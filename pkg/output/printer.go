package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/nrgaway/topd/pkg/paths"
	"github.com/nrgaway/topd/pkg/topfile"
	"github.com/nrgaway/topd/pkg/tops"
)

// Printer writes styled command output to one writer.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a printer for w. Color is enabled only when w is a
// terminal and NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) &&
			os.Getenv("NO_COLOR") == ""
	}
	return &Printer{w: w, color: color}
}

// NewPlainPrinter returns a printer that never emits ANSI codes.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) render(style lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return style.Render(text)
}

func (p *Printer) indicator(styled, plain string) string {
	if !p.color {
		return plain
	}
	return styled
}

// Status prints the enabled and disabled top records as two sections.
func (p *Printer) Status(status *tops.Status) {
	p.section("Enabled tops", status.Enabled, p.indicator(enabledIndicator, "+"))
	fmt.Fprintln(p.w)
	p.section("Disabled tops", status.Disabled, p.indicator(disabledIndicator, "-"))
}

// Records prints one titled section of top records.
func (p *Printer) Records(title string, records []tops.Record) {
	p.section(title, records, p.indicator(disabledIndicator, "-"))
}

func (p *Printer) section(title string, records []tops.Record, mark string) {
	fmt.Fprintln(p.w, p.render(titleStyle, title))
	if len(records) == 0 {
		fmt.Fprintln(p.w, p.render(mutedStyle, listItemStyle.Render("(none)")))
		return
	}
	for _, record := range records {
		line := fmt.Sprintf("%s %s  %s", mark,
			record.Saltenv+"|"+record.TopName,
			p.render(pathStyle, record.AbsPath))
		fmt.Fprintln(p.w, listItemStyle.Render(line))
	}
}

// Result prints the outcome buckets of an Enable or Disable call. The verb
// names the performed action, e.g. "enabled".
func (p *Printer) Result(verb string, result *tops.Result) {
	for _, name := range result.Enabled {
		fmt.Fprintf(p.w, "%s %s %s\n", p.indicator(enabledIndicator, "+"), name,
			p.render(successStyle, "enabled"))
	}
	for _, name := range result.Disabled {
		fmt.Fprintf(p.w, "%s %s %s\n", p.indicator(disabledIndicator, "-"), name,
			p.render(mutedStyle, "disabled"))
	}
	for _, name := range result.Unchanged {
		fmt.Fprintf(p.w, "%s %s %s\n", p.indicator(unchangedIndicator, "="), name,
			p.render(mutedStyle, "already "+verb))
	}
	for _, name := range result.Errors {
		fmt.Fprintf(p.w, "%s %s %s\n", p.indicator(errorIndicator, "!"), name,
			p.render(errorStyle, "not found"))
	}
}

// Names prints a titled name list.
func (p *Printer) Names(title string, names []string) {
	fmt.Fprintln(p.w, p.render(titleStyle, title))
	for _, name := range names {
		fmt.Fprintln(p.w, listItemStyle.Render(name))
	}
}

// Document prints a merged top document as YAML.
func (p *Printer) Document(document *topfile.Document) error {
	if document.IsEmpty() {
		fmt.Fprintln(p.w, p.render(mutedStyle, "# empty"))
		return nil
	}
	data, err := yaml.Marshal(document)
	if err != nil {
		return err
	}
	_, err = p.w.Write(data)
	return err
}

// Report prints per-file path information as YAML, keyed by absolute path
// in sorted order.
func (p *Printer) Report(report map[string]paths.Info) error {
	keys := make([]string, 0, len(report))
	for key := range report {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := map[string]paths.Info{key: report[key]}
		data, err := yaml.Marshal(entry)
		if err != nil {
			return err
		}
		if _, err := p.w.Write(data); err != nil {
			return err
		}
	}
	return nil
}
