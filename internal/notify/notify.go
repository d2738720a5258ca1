/*
Package notify reports analysis results via console output and email.
*/
package notify

import (
	"fmt"
	"io"
	"strings"

	"github.com/shanehull/filinglens/internal/types"
)

// RenderedMessage is an email ready to send.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

const maxReportedKeywords = 15

func topKeywords(points []types.KeywordPoint) []types.KeywordPoint {
	if len(points) > maxReportedKeywords {
		return points[:maxReportedKeywords]
	}
	return points
}

func formatYears(years []types.FiscalYear) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprint(int(y))
	}
	return strings.Join(parts, ", ")
}

func formatSentiment(points []types.SeriesPoint) string {
	if len(points) == 0 {
		return "\tN/A\n"
	}
	var sb strings.Builder
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("\t%d  %+.3f\n", int(p.Year), p.Value))
	}
	return sb.String()
}

func formatKeywords(points []types.KeywordPoint) string {
	if len(points) == 0 {
		return "\tN/A\n"
	}
	var sb strings.Builder
	for _, k := range topKeywords(points) {
		sb.WriteString(fmt.Sprintf("\t- %s (count %d, relevance %.2f, fog %.2f)\n", k.Text, k.Count, k.Relevance, k.Readability))
	}
	return sb.String()
}

func formatRelations(g *types.RelationGraph, graphErr string) string {
	if g == nil {
		if graphErr == "" {
			return "\tN/A\n"
		}
		return fmt.Sprintf("\t%s\n", graphErr)
	}
	var sb strings.Builder
	for _, e := range g.Edges {
		sb.WriteString(fmt.Sprintf("\t- %s --%s--> %s\n", e.Source, e.Label, e.Target))
	}
	return sb.String()
}

// ReportAnalysis writes a human-readable summary of a to w.
func ReportAnalysis(w io.Writer, a *types.Analysis) {
	if a == nil || len(a.Years) == 0 {
		fmt.Fprintln(w, "\n-------------------------------------------")
		fmt.Fprintln(w, "No annotated filings to report.")
		fmt.Fprintln(w, "-------------------------------------------")
		return
	}

	fmt.Fprintln(w, "\n===========================================")
	fmt.Fprintf(w, "✅ %s: %d FISCAL YEARS ANALYSED\n", a.Entity, len(a.Years))
	fmt.Fprintln(w, "===========================================")

	output := fmt.Sprintf("Run:    %s\n", a.RunID) +
		fmt.Sprintf("Years:  %s\n", formatYears(a.Years)) +
		fmt.Sprintf("\nSentiment by year:\n%s", formatSentiment(a.Sentiment)) +
		fmt.Sprintf("\nKeywords (%d):\n%s", int(a.KeywordYear), formatKeywords(a.Keywords)) +
		fmt.Sprintf("\nRelations (%d):\n%s", int(a.GraphYear), formatRelations(a.Graph, a.GraphError))
	fmt.Fprint(w, output)

	if len(a.Skipped) > 0 || len(a.Failures) > 0 {
		fmt.Fprintln(w, "\nSkipped:")
		for _, s := range a.Skipped {
			fmt.Fprintf(w, "\t- %s [%s] %s\n", s.Name, s.Kind, s.Reason)
		}
		for _, f := range a.Failures {
			fmt.Fprintf(w, "\t- %d [annotation] %s\n", int(f.Year), f.Reason)
		}
	}

	fmt.Fprintln(w, "\n===========================================")
	fmt.Fprintf(w, "Analysis complete at %s.\n", a.GeneratedAt.Format("02 Jan 2006 3:04 PM"))
	fmt.Fprintln(w, "===========================================")
}
