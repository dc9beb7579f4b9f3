// Package pdf renders a submission as a printable setup sheet.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/kartsetup/setupsheet/internal/submission"
	"github.com/kartsetup/setupsheet/internal/team"
)

const (
	margin     = 14.0
	rowHeight  = 10.0
	headHeight = 8.0
)

type rgb struct{ r, g, b int }

var (
	dark      = rgb{26, 26, 26}
	textColor = rgb{51, 51, 51}
	valueGrey = rgb{102, 102, 102}
	white     = rgb{255, 255, 255}
)

type cell struct {
	label string
	value string
}

type section struct {
	title string
	rows  [][2]cell
}

// Render builds the setup sheet PDF for s, branded with the team's color.
func Render(t *team.Team, s *submission.Submission) ([]byte, error) {
	accent := parseHexColor(t.Color())
	driver := ""
	if s.User != nil {
		driver = s.User.FullName()
	}

	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle(fmt.Sprintf("%s Setup - %s", t.Name, driver), true)
	doc.SetAuthor(t.Name, true)
	doc.SetSubject("Kart Setup Sheet", true)
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.AddPage()

	pageW, pageH := doc.GetPageSize()
	contentW := pageW - 2*margin

	fill(doc, accent)
	doc.Rect(0, 0, pageW, 3, "F")

	doc.SetXY(margin, 12)
	doc.SetFont("Helvetica", "B", 22)
	color(doc, dark)
	doc.CellFormat(contentW, 10, "SETUP SHEET", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	color(doc, valueGrey)
	doc.CellFormat(contentW, 5, tr(t.Name), "", 1, "L", false, 0, "")

	// Driver bar.
	y := 32.0
	fill(doc, dark)
	doc.Rect(margin, y, contentW, 13, "F")
	doc.SetXY(margin+4, y+1.5)
	doc.SetFont("Helvetica", "B", 12)
	color(doc, white)
	doc.CellFormat(contentW/2, 6, tr(strings.ToUpper(driver)), "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	doc.CellFormat(contentW/2-8, 6, s.CreatedAt.Format("02/01/2006"), "", 1, "R", false, 0, "")
	doc.SetX(margin + 4)
	color(doc, rgb{204, 204, 204})
	doc.CellFormat(contentW-8, 5,
		tr(submission.Label("sessionType", s.Setup.SessionType)+" | "+s.Setup.Track), "", 1, "L", false, 0, "")

	doc.SetY(y + 17)
	for _, sec := range sections(&s.Setup) {
		if len(sec.rows) == 0 {
			continue
		}
		sectionHeader(doc, accent, contentW, sec.title)
		for _, row := range sec.rows {
			dataRow(doc, tr, contentW, row)
		}
		doc.Ln(2)
	}

	if s.Setup.Observation != "" {
		sectionHeader(doc, accent, contentW, "Notes")
		doc.SetFont("Helvetica", "", 10)
		color(doc, valueGrey)
		doc.MultiCell(contentW, 5, tr(s.Setup.Observation), "", "L", false)
	}

	fill(doc, accent)
	doc.Rect(0, pageH-6, pageW, 3, "F")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering setup sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func sections(s *submission.Setup) []section {
	v := func(field, value string) string { return submission.Label(field, value) }

	engine := [][2]cell{
		{{"Engine Number", s.EngineNumber}, {"Carburator", s.CarburatorNumber}},
	}
	if s.GearRatio != "" {
		engine = append(engine, [2]cell{{"Gear Ratio", s.GearRatio}})
	} else {
		engine = append(engine, [2]cell{{"Drive Sprocket", s.DriveSprocket}, {"Driven Sprocket", s.DrivenSprocket}})
	}

	seat := s.SeatPosition
	if seat != "" {
		seat += " cm"
	}

	out := []section{
		{"General Information", [][2]cell{
			{{"Championship", s.Championship}, {"Division", s.Division}},
			{{"Class Code", s.ClassCode}, {"Session", v("sessionType", s.SessionType)}},
		}},
		{"Engine Setup", engine},
		{"Tyres Data", [][2]cell{
			{{"Tyre Model", s.TyreModel}, {"Tyre Age", s.TyreAge}},
			{{"Cold Pressure", s.TyreColdPressure}},
		}},
		{"Kart Setup", [][2]cell{
			{{"Chassis", s.Chassis}, {"Axle", s.Axle}},
			{{"Rear Hubs", joinNonEmpty(" - ", v("rearHubsMaterial", s.RearHubsMaterial), s.RearHubsLength)},
				{"Front Hubs", v("frontHubsMaterial", s.FrontHubsMaterial)}},
			{{"Front Height", v("frontHeight", s.FrontHeight)}, {"Back Height", v("backHeight", s.BackHeight)}},
			{{"Front Bar", v("frontBar", s.FrontBar)}, {"Spindle", v("spindle", s.Spindle)}},
			{{"Caster", s.Caster}, {"Seat Position", seat}},
		}},
	}
	if s.LapTime != "" {
		out = append(out, section{"Session Results", [][2]cell{{{"Lap Time", s.LapTime}}}})
	}
	return out
}

func sectionHeader(doc *fpdf.Fpdf, accent rgb, w float64, title string) {
	fill(doc, accent)
	color(doc, white)
	doc.SetFont("Helvetica", "B", 11)
	doc.SetX(margin)
	doc.CellFormat(w, headHeight, "  "+strings.ToUpper(title), "", 1, "L", true, 0, "")
	doc.Ln(1)
}

func dataRow(doc *fpdf.Fpdf, tr func(string) string, w float64, row [2]cell) {
	colW := w / 2
	y := doc.GetY()
	for i, c := range row {
		if c.label == "" {
			continue
		}
		x := margin + 4 + float64(i)*colW
		value := c.value
		if value == "" {
			value = "-"
		}
		doc.SetXY(x, y)
		doc.SetFont("Helvetica", "B", 7)
		color(doc, textColor)
		doc.CellFormat(colW-4, 4, strings.ToUpper(c.label), "", 0, "L", false, 0, "")
		doc.SetXY(x, y+4)
		doc.SetFont("Helvetica", "", 10)
		color(doc, valueGrey)
		doc.CellFormat(colW-4, 5, tr(value), "", 0, "L", false, 0, "")
	}
	doc.SetXY(margin, y+rowHeight)
}

func fill(doc *fpdf.Fpdf, c rgb)  { doc.SetFillColor(c.r, c.g, c.b) }
func color(doc *fpdf.Fpdf, c rgb) { doc.SetTextColor(c.r, c.g, c.b) }

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// parseHexColor reads #rgb or #rrggbb; anything else yields the default red.
func parseHexColor(s string) rgb {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return parseHexColor(team.DefaultPrimaryColor)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return parseHexColor(team.DefaultPrimaryColor)
	}
	return rgb{int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)}
}
