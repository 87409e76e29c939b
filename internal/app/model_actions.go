package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"leadboard/internal/client"
	"leadboard/internal/dispatch"
	"leadboard/internal/projector"
	"leadboard/internal/state"
	"leadboard/internal/types"
)

var emailModes = []string{client.EmailModeSend, client.EmailModeDraft, client.EmailModeFollowUp}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case uiModeConfirm:
		return m.handleConfirmKey(msg)
	case uiModePrompt:
		return m.handlePromptKey(msg)
	case uiModeDetail:
		return m.handleDetailKey(msg)
	case uiModeEmail:
		return m.handleEmailKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "s":
		return m.openPrompt(promptFile, "Start agent", "Path to the companies CSV", "companies.csv", m.lastUpload)
	case "x":
		return m.issue(m.dispatcher.StopRun())
	case "c":
		if !m.controls().ClearEnabled {
			m.showWarningToast("Stop the agent before clearing data")
			return nil
		}
		m.openConfirm(confirmClear, "Clear All Data?", "This clears all logs, companies and cost for the session.", "Clear")
	case "e":
		return m.beginSend()
	case "m":
		m.cycleEmailMode()
	case "d":
		if !m.controls().DownloadEnabled {
			m.showWarningToast("No companies to download yet")
			return nil
		}
		return m.issue(m.dispatcher.DownloadArtifact(m.downloadDir))
	case "v":
		return m.viewSelectedEmail()
	case " ":
		m.toggleCurrent()
	case "r":
		m.store.AdvanceSort(state.SortAxisRanking)
		m.clampCursor()
		m.saveAppState()
	case "o":
		m.store.AdvanceSort(state.SortAxisEmail)
		m.clampCursor()
		m.saveAppState()
	case "enter":
		m.openDetail()
	case "y":
		m.copyCurrentEmail()
	case "g":
		m.cycleLogGroup()
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.tableHeight())
	case "pgdown":
		m.moveCursor(m.tableHeight())
	case "home":
		m.moveCursor(-len(m.store.Companies()))
	case "end":
		m.moveCursor(len(m.store.Companies()))
	case "ctrl+u":
		m.logs.SetYOffset(m.logs.YOffset - m.logs.Height/2)
	case "ctrl+d":
		m.logs.SetYOffset(m.logs.YOffset + m.logs.Height/2)
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch m.mode {
	case uiModeConfirm:
		handled, choice := m.confirm.HandleMouse(msg, m.width, m.height)
		if handled {
			return m.resolveConfirm(choice)
		}
	case uiModeNormal:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			m.moveCursor(1)
		}
	}
	return nil
}

func (m *Model) openConfirm(intent confirmIntent, title, message, confirmLabel string) {
	m.confirmIntent = intent
	m.confirm.Open(title, message, confirmLabel, "Cancel")
	m.mode = uiModeConfirm
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	_, choice := m.confirm.HandleKey(msg)
	return m.resolveConfirm(choice)
}

func (m *Model) resolveConfirm(choice confirmChoice) tea.Cmd {
	if choice == confirmChoiceNone {
		return nil
	}
	intent := m.confirmIntent
	m.confirm.Close()
	m.confirmIntent = confirmNone
	m.mode = uiModeNormal
	confirmed := choice == confirmChoiceConfirm

	switch intent {
	case confirmStart:
		upload := m.upload
		m.upload = dispatch.Upload{}
		if !confirmed {
			return nil
		}
		m.lastUpload = upload.Path
		m.saveAppState()
		return m.issue(m.dispatcher.StartRun(upload.Path))
	case confirmClear:
		return m.issue(m.dispatcher.ClearData(confirmed))
	case confirmSend:
		rng := m.rankRange
		m.rankRange = nil
		if !confirmed {
			return nil
		}
		return m.issue(m.dispatcher.SendBulkEmails(m.emailMode, rng))
	}
	return nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	submitted, cancelled, cmd := m.prompt.Update(msg)
	if cancelled {
		m.closePrompt()
		return cmd
	}
	if !submitted {
		return cmd
	}
	value := m.prompt.Value()
	switch m.promptIntent {
	case promptFile:
		upload, err := dispatch.InspectUpload(value)
		if err != nil {
			m.prompt.SetError(errorText(err))
			return cmd
		}
		m.closePrompt()
		m.upload = upload
		m.openConfirm(confirmStart, "Start agent?",
			fmt.Sprintf("%s (%s, %s)", upload.Name, formatSize(upload.Size), upload.MimeType), "Start")
	case promptRankRange:
		rng, err := parseRankRange(value)
		if err != nil {
			m.prompt.SetError(errorText(err))
			return cmd
		}
		m.closePrompt()
		m.rankRange = &rng
		m.openConfirm(confirmSend, "Send emails?",
			fmt.Sprintf("Do you want to %s emails for rankings %d-%d now?", modeVerb(m.emailMode), rng.Min, rng.Max), "Send")
	default:
		m.closePrompt()
	}
	return cmd
}

func (m *Model) openPrompt(intent promptIntent, title, hint, placeholder, value string) tea.Cmd {
	m.promptIntent = intent
	m.mode = uiModePrompt
	return m.prompt.Open(title, hint, placeholder, value)
}

func (m *Model) closePrompt() {
	m.prompt.Close()
	m.promptIntent = promptNone
	m.mode = uiModeNormal
}

func (m *Model) controls() projector.Controls {
	return projector.Project(m.store, m.timerState()).Controls
}

func (m *Model) beginSend() tea.Cmd {
	if !m.controls().SendEnabled {
		m.showWarningToast("No companies to email yet")
		return nil
	}
	if count := m.store.SelectionCount(); count > 0 {
		m.rankRange = nil
		m.openConfirm(confirmSend, "Send emails?",
			fmt.Sprintf("Do you want to %s emails to %d selected companies now?", modeVerb(m.emailMode), count), "Send")
		return nil
	}
	return m.openPrompt(promptRankRange, "Rank range", "min-max between 1 and 10", "8-10", "")
}

func (m *Model) cycleEmailMode() {
	for i, mode := range emailModes {
		if mode == m.emailMode {
			m.emailMode = emailModes[(i+1)%len(emailModes)]
			m.showInfoToast("Email mode: " + m.emailMode)
			m.saveAppState()
			return
		}
	}
	m.emailMode = client.EmailModeSend
}

func (m *Model) viewSelectedEmail() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return nil
	}
	cmd, notice, err := m.dispatcher.ViewSavedContent(row.Email)
	if err != nil {
		m.showDispatchError(err)
		return nil
	}
	if cmd == nil {
		m.showNotice(notice)
		return nil
	}
	return m.issue(cmd, nil)
}

func (m *Model) toggleCurrent() {
	row, ok := m.currentRow()
	if !ok {
		return
	}
	if !row.Selectable {
		m.showWarningToast("This company has no email")
		return
	}
	m.store.ToggleSelection(row.Email)
}

func (m *Model) copyCurrentEmail() {
	row, ok := m.currentRow()
	if !ok || row.Email == "" {
		m.showWarningToast("Nothing to copy")
		return
	}
	m.copyWithToast(row.Email, "Copied "+row.Email)
}

func (m *Model) openDetail() {
	row, ok := m.currentRow()
	if !ok {
		return
	}
	detail, ok := projector.ProjectDetail(m.store, row.Index)
	if !ok {
		return
	}
	m.detail = detail
	m.detailView.SetContent(renderDetail(detail, m.detailView.Width))
	m.detailView.GotoTop()
	m.mode = uiModeDetail
}

func (m *Model) openEmail(content *client.EmailContent) {
	m.email = content
	m.detailView.SetContent(renderMarkdown(emailMarkdown(content), m.detailView.Width, m.markdownStyle))
	m.detailView.GotoTop()
	m.mode = uiModeEmail
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "enter":
		m.mode = uiModeNormal
		m.detail = projector.DetailView{}
		return nil
	case "v":
		m.mode = uiModeNormal
		return m.viewSelectedEmail()
	case "y":
		if m.detail.Email != "" {
			m.copyWithToast(m.detail.Email, "Copied "+m.detail.Email)
		}
		return nil
	}
	var cmd tea.Cmd
	m.detailView, cmd = m.detailView.Update(msg)
	return cmd
}

func (m *Model) handleEmailKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.mode = uiModeNormal
		m.email = nil
		return nil
	case "y":
		if m.email != nil {
			m.copyWithToast(m.email.Body, "Copied email body")
		}
		return nil
	}
	var cmd tea.Cmd
	m.detailView, cmd = m.detailView.Update(msg)
	return cmd
}

func (m *Model) cycleLogGroup() {
	groups := m.store.Logs()
	if len(groups) == 0 {
		return
	}
	m.logExpanded++
	if m.logExpanded >= len(groups) {
		m.logExpanded = 0
	}
	m.refreshLogs()
}

func (m *Model) currentRow() (projector.RowView, bool) {
	rows := projector.Project(m.store, m.timerState()).Rows
	if m.cursor < 0 || m.cursor >= len(rows) {
		return projector.RowView{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	count := len(m.store.Companies())
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	height := m.tableHeight()
	if m.cursor < m.tableOffset {
		m.tableOffset = m.cursor
	}
	if m.cursor >= m.tableOffset+height {
		m.tableOffset = m.cursor - height + 1
	}
	if m.tableOffset < 0 {
		m.tableOffset = 0
	}
}

func (m *Model) showDispatchError(err error) {
	switch {
	case err == nil:
	case errors.Is(err, dispatch.ErrCancelled):
	case errors.Is(err, dispatch.ErrBusy):
		m.showInfoToast("Already in progress")
	case dispatch.IsValidation(err):
		m.showWarningToast(errorText(err))
	default:
		m.showErrorToast(errorText(err))
	}
}

func (m *Model) showTransportNotice(name string, err error) {
	switch name {
	case types.EventConnect:
		m.showInfoToast("Connected to server")
	case types.EventDisconnect:
		m.showWarningToast("Disconnected from server")
	case types.EventConnectError:
		msg := "Connection failed"
		if err != nil {
			msg += ": " + err.Error()
		}
		m.showErrorToast(msg)
	}
}

func errorText(err error) string {
	var verr *dispatch.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

// parseRankRange accepts "min-max" or a single rank.
func parseRankRange(raw string) (dispatch.RankRange, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dispatch.RankRange{}, &dispatch.ValidationError{Op: "send emails", Message: "enter a rank range such as 8-10"}
	}
	lo, hi, found := strings.Cut(raw, "-")
	if !found {
		hi = lo
	}
	minRank, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return dispatch.RankRange{}, &dispatch.ValidationError{Op: "send emails", Message: "minimum rank must be a number"}
	}
	maxRank, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return dispatch.RankRange{}, &dispatch.ValidationError{Op: "send emails", Message: "maximum rank must be a number"}
	}
	rng := dispatch.RankRange{Min: minRank, Max: maxRank}
	if err := rng.Validate(); err != nil {
		return dispatch.RankRange{}, err
	}
	return rng, nil
}

func modeVerb(mode string) string {
	switch mode {
	case client.EmailModeDraft:
		return "draft"
	case client.EmailModeFollowUp:
		return "send follow-up"
	default:
		return "send"
	}
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
