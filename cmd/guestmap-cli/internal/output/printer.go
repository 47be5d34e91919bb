// Package output formats CLI results as tables, JSON or status lines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gookit/color"
	"github.com/nfrund/guestmap/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Printer writes to w, optionally with ANSI colours.
type Printer struct {
	w      io.Writer
	colour bool
}

// NewPrinter creates a Printer.
func NewPrinter(w io.Writer, colour bool) *Printer {
	return &Printer{w: w, colour: colour}
}

func (p *Printer) paint(style color.Style, s string) string {
	if !p.colour {
		return s
	}
	return style.Render(s)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, msg)
}

func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, p.paint(color.New(color.FgGreen, color.OpBold), "✔ "+msg))
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.w, p.paint(color.New(color.FgYellow), "! "+msg))
}

func (p *Printer) Failure(msg string) {
	fmt.Fprintln(p.w, p.paint(color.New(color.FgRed, color.OpBold), "✘ "+msg))
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Groups renders one row per message. The coordinates and group size are
// only printed on the first row of each group.
func (p *Printer) Groups(groups []domain.LocationGroup) {
	table := p.newTable([]string{"Latitude", "Longitude", "Count", "Name", "Message"})
	for _, g := range groups {
		msgs := g.Messages()
		for i, m := range msgs {
			row := []string{"", "", "", m.Name, Truncate(m.Message, 60)}
			if i == 0 {
				row[0] = formatFloat(m.Latitude)
				row[1] = formatFloat(m.Longitude)
				row[2] = strconv.Itoa(len(msgs))
			}
			table.Append(row)
		}
	}
	table.Render()
}

// Viewer renders a resolved or default viewer location.
func (p *Printer) Viewer(v domain.ViewerLocation) {
	source := string(v.Source)
	if !v.Resolved {
		source = "none"
	}
	table := p.newTable([]string{"Latitude", "Longitude", "Zoom", "Source"})
	table.Append([]string{formatFloat(v.Latitude), formatFloat(v.Longitude), strconv.Itoa(v.Zoom), source})
	table.Render()
}

func (p *Printer) newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(p.w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truncate shortens s to at most max characters, ending in "..." when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return "..."
	}
	return string(r[:max-3]) + "..."
}
