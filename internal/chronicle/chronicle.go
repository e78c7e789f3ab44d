// Package chronicle renders a run's story history as a PDF keepsake.
package chronicle

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/jwebster45206/verdant-hollow/pkg/player"
)

const (
	margin   = 48.0
	lineH    = 14.0
	bodySize = 11.0
)

// Chronicle is what goes into the PDF.
type Chronicle struct {
	Player  player.Player
	Points  int
	Stage   string
	History []string
	Written time.Time
}

// Render lays out a title page header, the player's sheet and every
// history line, breaking pages as needed.
func Render(c Chronicle) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin + 10)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 100, 80)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	width := pageW - 2*margin

	pdf.SetTextColor(60, 40, 25)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(width, 28, tr(fmt.Sprintf("The Chronicle of %s", c.Player.Name)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 10)
	written := c.Written
	if written.IsZero() {
		written = time.Now()
	}
	pdf.CellFormat(width, 14, "Written "+written.Format("2 January 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetDrawColor(80, 50, 30)
	pdf.SetFillColor(245, 235, 210)
	pdf.SetFont("Helvetica", "", bodySize)
	for _, row := range sheet(c) {
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.CellFormat(110, lineH+4, tr(row[0]), "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.CellFormat(width-110, lineH+4, tr(row[1]), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(width, 18, "The Tale", "B", 1, "L", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", bodySize)
	if len(c.History) == 0 {
		pdf.SetFont("Helvetica", "I", bodySize)
		pdf.MultiCell(width, lineH, "Nothing has happened yet.", "", "L", false)
	}
	for _, line := range c.History {
		pdf.MultiCell(width, lineH, tr(line), "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render chronicle: %w", err)
	}
	return buf.Bytes(), nil
}

func sheet(c Chronicle) [][2]string {
	p := c.Player
	roles := make([]string, len(p.AvailableRoles))
	for i, r := range p.AvailableRoles {
		roles[i] = string(r)
	}
	items := "nothing"
	if len(p.Inventory) > 0 {
		items = strings.Join(p.Inventory, ", ")
	}
	stage := "the beginning"
	if c.Stage != "" {
		stage = strings.ReplaceAll(c.Stage, "_", " ")
	}
	rows := [][2]string{
		{"Level", fmt.Sprintf("%d", p.Level)},
		{"Health", fmt.Sprintf("%d / %d", p.Health, p.MaxHealth)},
		{"Stats", fmt.Sprintf("Strength %d, Luck %d, Agility %d", p.Strength, p.Luck, p.Agility)},
		{"Standing", fmt.Sprintf("Reputation %d, Corruption %d", p.Reputation, p.Corruption)},
		{"Points", fmt.Sprintf("%d", c.Points)},
		{"Inventory", items},
		{"Last seen", stage},
	}
	if len(roles) > 0 {
		rows = append(rows, [2]string{"Known as", strings.Join(roles, ", ")})
	}
	return rows
}

// Filename is a safe download name for a player's chronicle.
func Filename(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(name))
	clean = strings.Trim(clean, "-")
	if clean == "" {
		clean = "adventurer"
	}
	return clean + "-chronicle.pdf"
}
