package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvake/drift/internal/adapters/repository"
	session "github.com/nvake/drift/internal/app"
)

// labelWidth bounds the rendered "author: text" snippet per message.
const labelWidth = 28

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6C7086")).
				Background(lipgloss.Color("#313244")).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89B4FA"))

	laneLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	rankStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAB387"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))
)

func (m uiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitleBar())
	b.WriteRune('\n')
	b.WriteString(m.renderTabBar())
	b.WriteRune('\n')
	b.WriteRune('\n')

	var content string
	switch m.activeView {
	case viewFlow:
		content = m.renderFlow()
	case viewTop:
		content = m.renderTop()
	}
	b.WriteString(content)

	// Pad to fill screen.
	rendered := strings.Count(b.String(), "\n")
	for rendered < m.height-2 {
		b.WriteRune('\n')
		rendered++
	}

	if m.showHelp {
		b.WriteString(m.help.View(keys))
	} else {
		b.WriteString(m.renderStatusBar())
	}

	return b.String()
}

func (m uiModel) renderTitleBar() string {
	ctx := context.Background()
	title := titleStyle.Render("drift " + m.sess.Channel())
	stats := dimStyle.Render(fmt.Sprintf(
		"level %d | queue %d | %d in flight",
		m.sess.Level(ctx),
		m.sess.QueueDepth(ctx),
		len(m.sess.Active(ctx)),
	))
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(title)-lipgloss.Width(stats)-2))
	return title + gap + stats
}

func (m uiModel) renderTabBar() string {
	var tabs []string
	for i := viewID(0); i < viewCount; i++ {
		if i == m.activeView {
			tabs = append(tabs, tabActiveStyle.Render(i.String()))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(i.String()))
		}
	}
	return strings.Join(tabs, " ")
}

func (m uiModel) renderStatusBar() string {
	left := " tab: flow/top | ?: help | q: quit"
	gap := strings.Repeat(" ", max(0, m.width-len(left)))
	return statusBarStyle.Render(left + gap)
}

// --- Flow view ---

func (m uiModel) renderFlow() string {
	ctx := context.Background()
	placed := m.sess.Active(ctx)
	lanes := m.sess.Layout().Lanes

	// Lane label plus separator eat a fixed prefix of each row.
	prefixWidth := 5 // "L0 │ "
	fieldWidth := m.width - prefixWidth
	if fieldWidth < 10 {
		fieldWidth = 10
	}

	rows := buildFlowRows(placed, lanes, fieldWidth)

	var b strings.Builder
	for i, row := range rows {
		b.WriteString(laneLabelStyle.Render(fmt.Sprintf("L%d │ ", i)))
		b.WriteString(messageStyle.Render(row))
		b.WriteRune('\n')
	}
	if len(placed) == 0 {
		b.WriteRune('\n')
		b.WriteString(dimStyle.Render("  (no messages in flight)"))
		b.WriteRune('\n')
	}
	return b.String()
}

// buildFlowRows stamps each message's label onto its lane row at the column
// derived from its horizontal placement. Labels clip at the field edges, so
// a message entering from the right or leaving on the left shows partially,
// matching how browser clients let messages slide off screen.
func buildFlowRows(placed []session.Placed, lanes, fieldWidth int) []string {
	grid := make([][]rune, lanes)
	for i := range grid {
		grid[i] = blankRow(fieldWidth)
	}

	for _, p := range placed {
		if p.Lane < 0 || p.Lane >= lanes {
			continue
		}
		label := flowLabel(p.Author, p.Text)
		col := columnFor(p.Placement.Left, fieldWidth)
		stampLabel(grid[p.Lane], col, label)
	}

	rows := make([]string, lanes)
	for i, row := range grid {
		rows[i] = string(row)
	}
	return rows
}

// columnFor maps a percentage left coordinate onto a terminal column. The
// placement function ranges beyond [0, 100] at entry and exit, so the result
// may fall outside the field; stampLabel clips it.
func columnFor(leftPct float64, fieldWidth int) int {
	return int(leftPct / 100 * float64(fieldWidth))
}

// stampLabel writes label into row starting at col, discarding runes that
// fall outside the row.
func stampLabel(row []rune, col int, label string) {
	for i, r := range []rune(label) {
		x := col + i
		if x >= 0 && x < len(row) {
			row[x] = r
		}
	}
}

func flowLabel(author, text string) string {
	label := author + ": " + text
	runes := []rune(label)
	if len(runes) > labelWidth {
		return string(runes[:labelWidth-1]) + "…"
	}
	return label
}

func blankRow(width int) []rune {
	row := make([]rune, width)
	for i := range row {
		row[i] = ' '
	}
	return row
}

// --- Top view ---

func (m uiModel) renderTop() string {
	ctx := context.Background()

	var b strings.Builder
	b.WriteString(headerStyle.Render("Top messages"))
	b.WriteRune('\n')

	entries, err := m.sess.TopN(ctx, topLimit)
	if err != nil {
		b.WriteString(dimStyle.Render("  " + err.Error()))
		b.WriteRune('\n')
		return b.String()
	}
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("  (nothing archived yet)"))
		b.WriteRune('\n')
		return b.String()
	}

	for _, e := range entries {
		b.WriteString(renderTopEntry(e, m.width))
		b.WriteRune('\n')
	}
	return b.String()
}

func renderTopEntry(e repository.Entry, width int) string {
	rank := rankStyle.Render(fmt.Sprintf("#%-3d", e.Rank))
	net := headerStyle.Render(fmt.Sprintf("%+d", e.Net()))
	body := fmt.Sprintf(" %s: %s", e.Author, e.Text)
	line := fmt.Sprintf("  %s %s%s", rank, net, body)
	if lipgloss.Width(line) > width && width > 1 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}
