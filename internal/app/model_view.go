package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"leadboard/internal/projector"
	"leadboard/internal/state"
	"leadboard/internal/types"
)

type tableColumn struct {
	name  string
	title string
	width int
}

// Columns shown in the list; the rest live in the detail view.
var tableColumns = []tableColumn{
	{name: types.ColumnCompanyName, title: "Company", width: 24},
	{name: types.ColumnContactName, title: "CEO", width: 18},
	{name: types.ColumnContactEmail, title: "Email", width: 28},
	{name: types.ColumnRanking, title: "Rank", width: 6},
	{name: types.ColumnRevenue, title: "Revenue", width: 12},
	{name: types.ColumnEmployeeCount, title: "Staff", width: 8},
	{name: types.ColumnWebsite, title: "Website", width: 24},
}

const selectColumnWidth = 4

func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}
	height := m.height
	if height <= 0 {
		height = 30
	}
	switch m.mode {
	case uiModeConfirm:
		return m.confirm.View(width, height)
	case uiModePrompt:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.prompt.View())
	case uiModeDetail:
		return m.renderOverlay(m.detail.Title, "↑/↓ scroll • v view email • y copy email • esc close")
	case uiModeEmail:
		title := "Saved email"
		if m.email != nil && m.email.Email != "" {
			title += " for " + m.email.Email
		}
		return m.renderOverlay(title, "↑/↓ scroll • y copy body • esc close")
	}

	model := projector.Project(m.store, m.timerState())
	sections := []string{
		m.renderHeader(model, width),
		m.renderControls(model.Controls),
		renderProgressBar(model.Progress.Percent, model.Progress.Complete, width) + " " + statusStyle.Render(model.Progress.Text),
	}
	if model.EmailProgress.Active {
		sections = append(sections, renderProgressBar(model.EmailProgress.Percent, model.EmailProgress.Sent >= model.EmailProgress.Total, width)+" "+statusStyle.Render(model.EmailProgress.Text))
	}
	sections = append(sections, dividerStyle.Render(strings.Repeat("─", width)))
	sections = append(sections, m.renderTable(model, width))
	sections = append(sections, sectionStyle.Render("Logs"))
	sections = append(sections, m.logs.View())
	if len(model.EmailFeed) > 0 {
		sections = append(sections, sectionStyle.Render("Email status"))
		sections = append(sections, renderEmailFeed(model.EmailFeed, width))
	}
	sections = append(sections, m.renderFooter(model, width))
	return strings.Join(sections, "\n")
}

func (m *Model) renderHeader(model projector.DisplayModel, width int) string {
	parts := []string{
		headerStyle.Render("leadboard"),
		toneStyle(model.Connection.Tone).Render(model.Connection.Label),
		statusStyle.Render("agent " + model.Phase.String()),
		statusStyle.Render("cost " + model.Cost),
		statusStyle.Render("elapsed " + model.Elapsed),
		statusStyle.Render("mode " + m.emailMode),
		statusStyle.Render(sortLabel(model.SortMode)),
	}
	if model.SelectedCount > 0 {
		parts = append(parts, enabledStyle.Render(fmt.Sprintf("%d selected", model.SelectedCount)))
	}
	if m.anyPending() {
		parts = append(parts, m.loader.View())
	}
	return truncateToWidth(strings.Join(parts, "  "), width)
}

func (m *Model) renderControls(c projector.Controls) string {
	control := func(key, label string, enabled bool) string {
		text := "[" + key + "] " + label
		if enabled {
			return enabledStyle.Render(text)
		}
		return disabledStyle.Render(text)
	}
	return strings.Join([]string{
		control("s", "start", c.StartEnabled),
		control("x", "stop", c.StopEnabled),
		control("c", "clear", c.ClearEnabled),
		control("e", "send emails", c.SendEnabled),
		control("d", "download", c.DownloadEnabled),
		control("v", "view email", c.ViewEmailEnabled),
	}, " ")
}

func renderProgressBar(percent float64, done bool, width int) string {
	barWidth := min(40, max(10, width/3))
	filled := int(percent / 100 * float64(barWidth))
	filled = max(0, min(barWidth, filled))
	style := progressFillStyle
	if done {
		style = progressDoneStyle
	}
	return style.Render(strings.Repeat("█", filled)) + progressTrackStyle.Render(strings.Repeat("░", barWidth-filled))
}

func (m *Model) tableHeight() int {
	height := m.height
	if height <= 0 {
		height = 30
	}
	// header, controls, progress, divider, column header, logs title, logs,
	// footer
	reserved := 7 + logPanelHeight
	if len(m.store.EmailFeed()) > 0 {
		reserved += 1 + feedPanelHeight
	}
	if m.store.EmailProgress().Total > 0 {
		reserved++
	}
	return max(minTableHeight, height-reserved)
}

func (m *Model) renderTable(model projector.DisplayModel, width int) string {
	indicators := make(map[string]string, len(model.Columns))
	for _, col := range model.Columns {
		indicators[col.Name] = col.Indicator
	}
	header := []string{fitCell("", selectColumnWidth)}
	for _, col := range tableColumns {
		title := col.title
		if ind := indicators[col.name]; ind != "" {
			title += " " + ind
		}
		header = append(header, fitCell(title, col.width))
	}
	lines := []string{columnHeaderStyle.Render(truncateToWidth(strings.Join(header, " "), width))}

	if len(model.Rows) == 0 {
		lines = append(lines, helpStyle.Render("No companies yet. Press s to start the agent."))
		return strings.Join(lines, "\n")
	}

	positions := make([]int, len(tableColumns))
	for i, col := range tableColumns {
		positions[i] = -1
		for j, name := range types.CompanyColumns {
			if name == col.name {
				positions[i] = j
				break
			}
		}
	}

	end := min(len(model.Rows), m.tableOffset+m.tableHeight())
	for i := m.tableOffset; i < end; i++ {
		row := model.Rows[i]
		mark := "[ ]"
		switch {
		case !row.Selectable:
			mark = " - "
		case row.Selected:
			mark = "[x]"
		}
		cells := []string{fitCell(mark, selectColumnWidth)}
		for c, col := range tableColumns {
			value := ""
			if p := positions[c]; p >= 0 && p < len(row.Cells) {
				value = row.Cells[p]
			}
			cells = append(cells, fitCell(value, col.width))
		}
		line := truncateToWidth(strings.Join(cells, " "), width)
		if i == m.cursor {
			line = selectedStyle.Render(padToWidth(line, width))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// refreshLogs rebuilds the log panel content: one line per worker, with the
// expanded worker's entries listed below it.
func (m *Model) refreshLogs() {
	groups := projector.Project(m.store, m.timerState()).Logs
	if m.logExpanded >= len(groups) {
		m.logExpanded = -1
	}
	var lines []string
	for i, group := range groups {
		expanded := group.Expanded
		if m.logExpanded >= 0 {
			expanded = i == m.logExpanded
		}
		marker := "▸"
		if expanded {
			marker = "▾"
		}
		lines = append(lines, sectionStyle.Render(fmt.Sprintf("%s %s (%d)", marker, group.WorkerID, len(group.Lines))))
		if !expanded {
			continue
		}
		for _, line := range group.Lines {
			lines = append(lines, "  "+timestampStyle.Render(line.Timestamp)+" "+
				toneStyle(line.Tone).Render(fitCell(line.Level, 7))+" "+line.Task)
		}
	}
	if len(lines) == 0 {
		lines = []string{helpStyle.Render("No activity yet.")}
	}
	atBottom := m.logs.AtBottom()
	m.logs.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		m.logs.GotoBottom()
	}
}

func renderEmailFeed(feed []projector.EmailStatusView, width int) string {
	start := max(0, len(feed)-feedPanelHeight)
	lines := make([]string, 0, feedPanelHeight)
	for _, status := range feed[start:] {
		text := status.Company + ": " + status.Message
		if status.Email != "" {
			text += " (" + status.Email + ")"
		}
		lines = append(lines, toneStyle(status.Tone).Render(truncateToWidth(text, width)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter(model projector.DisplayModel, width int) string {
	help := "↑/↓ move • space select • enter details • r/o sort • m mode • g logs • y copy • q quit"
	if !model.EmailActionsVisible {
		help = "↑/↓ move • enter details • r/o sort • g logs • q quit"
	}
	if m.status != "" {
		help = m.status + " • " + help
	}
	line := helpStyle.Render(truncateToWidth(help, width))
	if toast := m.toastLine(width); toast != "" {
		return line + "\n" + toast
	}
	return line
}

func (m *Model) renderOverlay(title, help string) string {
	width := max(20, m.width)
	body := []string{
		headerStyle.Render(truncateToWidth(title, width-4)),
		m.detailView.View(),
		helpStyle.Render(help),
	}
	if toast := m.toastLine(width - 4); toast != "" {
		body = append(body, toast)
	}
	return detailFrameStyle.Render(strings.Join(body, "\n"))
}

func renderDetail(view projector.DetailView, width int) string {
	keyWidth := 0
	for _, field := range view.Fields {
		keyWidth = max(keyWidth, len(field.Name))
	}
	valueWidth := max(10, width-keyWidth-2)
	var lines []string
	for _, field := range view.Fields {
		wrapped := strings.Split(wrapText(field.Value, valueWidth), "\n")
		for i, part := range wrapped {
			key := ""
			if i == 0 {
				key = field.Name
			}
			lines = append(lines, detailKeyStyle.Render(padToWidth(key, keyWidth))+"  "+part)
		}
	}
	return strings.Join(lines, "\n")
}

func sortLabel(mode state.SortMode) string {
	switch mode {
	case state.SortRankingDesc:
		return "sort rank ▼"
	case state.SortRankingAsc:
		return "sort rank ▲"
	case state.SortEmailPresentFirst:
		return "sort email ▼"
	case state.SortEmailMissingFirst:
		return "sort email ▲"
	default:
		return "unsorted"
	}
}
