package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/submission"
	"github.com/kartsetup/setupsheet/internal/team"
)

var sectionTitles = []struct {
	section string
	title   string
}{
	{submission.SectionGeneral, "General Information"},
	{submission.SectionEngine, "Engine Setup"},
	{submission.SectionTyres, "Tyres"},
	{submission.SectionChassis, "Chassis Setup"},
	{submission.SectionConclusion, "Conclusion"},
}

var emailTemplate = template.Must(template.New("submission").Parse(`<div style="font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; color: #1f2937;">
  <div style="background-color: {{.Color}}; padding: 20px; border-radius: 8px 8px 0 0;">
    <h2 style="color: white; margin: 0; text-transform: uppercase;">New Setup Submission</h2>
    <p style="color: white; margin: 5px 0 0 0;">{{.Driver}} | {{.When}}</p>
  </div>
  <div style="background-color: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; border-top: none;">
{{- range .Sections}}
    <h3 style="color: {{$.Color}}; border-bottom: 2px solid #e5e7eb; padding-bottom: 5px;">{{.Title}}</h3>
    <table style="width: 100%; margin-bottom: 20px;">
    {{- range .Rows}}
      <tr><td style="width: 40%;"><strong>{{.Label}}:</strong></td><td style="white-space: pre-wrap;">{{.Value}}</td></tr>
    {{- end}}
    </table>
{{- end}}
{{- if .DashboardURL}}
    <div style="text-align: center; margin-top: 30px;">
      <a href="{{.DashboardURL}}" style="background-color: {{.Color}}; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold;">View in Dashboard</a>
    </div>
{{- end}}
  </div>
</div>
`))

type emailRow struct {
	Label string
	Value string
}

type emailSection struct {
	Title string
	Rows  []emailRow
}

type emailData struct {
	Color        template.CSS
	Driver       string
	When         string
	Sections     []emailSection
	DashboardURL string
}

// Subject returns the subject line for a submission notification.
func Subject(u *auth.User, s *submission.Submission) string {
	return fmt.Sprintf("New Setup Submission from %s - %s", u.FullName(), s.Setup.Track)
}

// DashboardLink returns the manager dashboard URL of t, or "" when base is empty.
func DashboardLink(base string, t *team.Team) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + t.Slug + "/manager/dashboard"
}

// Render produces the HTML body of a submission notification.
func Render(t *team.Team, u *auth.User, s *submission.Submission, dashboardBase string) (string, error) {
	data := emailData{
		Color:        template.CSS(t.Color()),
		Driver:       u.FullName(),
		When:         s.CreatedAt.UTC().Format(time.RFC1123),
		DashboardURL: DashboardLink(dashboardBase, t),
	}

	for _, st := range sectionTitles {
		sec := emailSection{Title: st.title}
		for _, f := range submission.FieldsIn(st.section) {
			v := submission.Label(f.Name, f.Value(&s.Setup))
			if v == "" {
				v = "-"
			}
			sec.Rows = append(sec.Rows, emailRow{Label: f.Label, Value: v})
		}
		data.Sections = append(data.Sections, sec)
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering notification: %w", err)
	}
	return buf.String(), nil
}
