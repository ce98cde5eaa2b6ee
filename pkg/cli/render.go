package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/agentmatrix-dev/agentmatrix/internal/query"
	"github.com/agentmatrix-dev/agentmatrix/internal/validation"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func itemRow(it *models.Item) []string {
	usage := models.UsageStatsOf(it)
	verified := ""
	if it.Verified {
		verified = "yes"
	}
	return []string{
		it.ID,
		it.Name,
		it.Type,
		string(models.StatusOf(it)),
		string(models.GovernanceStatusOf(it)),
		it.PricingModel,
		verified,
		validation.LatestVersion(it.Versions),
		strconv.FormatInt(usage.Invocations, 10),
		strings.Join(models.TagsOf(it), ", "),
	}
}

func renderBuckets(w io.Writer, kind models.Kind, buckets []query.Bucket) {
	for _, b := range buckets {
		title := kind.Label() + "s"
		if b.Name != "" {
			title += " / " + b.Name
		}
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(b.Items))))
		if len(b.Items) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("  none"))
			continue
		}
		t := newTable("ID", "NAME", "TYPE", "STATUS", "GOVERNANCE", "PRICING", "VERIFIED", "LATEST", "CALLS", "TAGS")
		for _, it := range b.Items {
			t.Row(itemRow(it)...)
		}
		fmt.Fprintln(w, t.Render())
	}
}

func renderView(w io.Writer, v query.View) {
	renderBuckets(w, models.KindAgent, v.Agents)
	renderBuckets(w, models.KindMCP, v.MCPServers)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d of %d items match", v.Matched, v.Total)))
}

func renderStats(w io.Writer, s query.Stats) {
	summary := newTable("", "TOTAL", "ONLINE").
		Row("Agents", strconv.Itoa(s.Agents.Total), strconv.Itoa(s.Agents.Online)).
		Row("MCP Servers", strconv.Itoa(s.MCPServers.Total), strconv.Itoa(s.MCPServers.Online))
	fmt.Fprintln(w, titleStyle.Render("Registry"))
	fmt.Fprintln(w, summary.Render())

	fmt.Fprintln(w, titleStyle.Render("Usage"))
	usage := newTable("INVOCATIONS", "SUCCESS", "ERRORS", "SUCCESS RATE").
		Row(
			strconv.FormatInt(s.Totals.Invocations, 10),
			strconv.FormatInt(s.Totals.Success, 10),
			strconv.FormatInt(s.Totals.Error, 10),
			s.SuccessRate,
		)
	fmt.Fprintln(w, usage.Render())

	renderCounts(w, "Governance", s.Governance)
	renderCounts(w, "Status", s.Status)
	renderRanked(w, "Most used", s.TopUsage)
	renderRanked(w, "Most errors", s.TopErrors)
	renderCounts(w, "Top tags", s.TopTags)
}

func renderCounts(w io.Writer, title string, counts []query.Count) {
	if len(counts) == 0 {
		return
	}
	t := newTable("KEY", "COUNT")
	for _, c := range counts {
		t.Row(c.Key, strconv.Itoa(c.Count))
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, t.Render())
}

func renderRanked(w io.Writer, title string, ranked []query.Ranked) {
	if len(ranked) == 0 {
		return
	}
	t := newTable("ID", "NAME", "KIND", "VALUE")
	for _, r := range ranked {
		t.Row(r.ID, r.Name, r.Kind.Label(), strconv.FormatInt(r.Value, 10))
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, t.Render())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
