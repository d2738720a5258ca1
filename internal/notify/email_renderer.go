package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/shanehull/filinglens/internal/types"
)

// HTMLEmailRenderer renders analyses as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

type emailData struct {
	*types.Analysis
	TopKeywords []types.KeywordPoint
}

// NewHTMLEmailRenderer creates a renderer with the default email template.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Funcs(template.FuncMap{
		"score": func(v float64) string { return fmt.Sprintf("%+.3f", v) },
		"fixed": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"years": formatYears,
	}).Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

// Render produces an HTML email with plain text alternative.
func (r *HTMLEmailRenderer) Render(a *types.Analysis) (*RenderedMessage, error) {
	if a == nil {
		return nil, fmt.Errorf("nothing to render")
	}
	subject := fmt.Sprintf("Filing Analysis: %s (%s)", a.Entity, formatYears(a.Years))

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, emailData{Analysis: a, TopKeywords: topKeywords(a.Keywords)}); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(a),
		HTML:    htmlBuf.String(),
	}, nil
}

// renderPlainText produces a readable plain text version for email clients that don't support HTML.
func renderPlainText(a *types.Analysis) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s - %s\n", a.Entity, formatYears(a.Years)))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString("SENTIMENT\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	sb.WriteString(formatSentiment(a.Sentiment) + "\n")

	sb.WriteString(fmt.Sprintf("KEYWORDS (%d)\n", int(a.KeywordYear)))
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	sb.WriteString(formatKeywords(a.Keywords) + "\n")

	sb.WriteString(fmt.Sprintf("RELATIONS (%d)\n", int(a.GraphYear)))
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	sb.WriteString(formatRelations(a.Graph, a.GraphError) + "\n")

	if len(a.Failures) > 0 {
		sb.WriteString("FAILED YEARS\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		for _, f := range a.Failures {
			sb.WriteString(fmt.Sprintf("• %d: %s\n", int(f.Year), f.Reason))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Run %s\n", a.RunID))
	return sb.String()
}
