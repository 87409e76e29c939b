package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"leadboard/internal/dispatch"
)

type toastLevel int

const (
	toastLevelInfo toastLevel = iota
	toastLevelWarning
	toastLevelError
)

func (m *Model) showInfoToast(message string) {
	m.showToast(toastLevelInfo, message)
}

func (m *Model) showWarningToast(message string) {
	m.showToast(toastLevelWarning, message)
}

func (m *Model) showErrorToast(message string) {
	m.showToast(toastLevelError, message)
}

func (m *Model) showToast(level toastLevel, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	m.toastText = message
	m.toastLevel = level
	m.toastUntil = m.now().Add(m.toastDuration)
	m.logger.Debug("toast", logField("message", message))
}

// showNotice maps a dispatcher notice onto a toast.
func (m *Model) showNotice(notice dispatch.Notice) {
	if notice.Empty() {
		return
	}
	text := notice.Title
	if notice.Message != "" {
		if text != "" {
			text += ": "
		}
		text += notice.Message
	}
	switch notice.Severity {
	case dispatch.SeverityError:
		m.showErrorToast(text)
	case dispatch.SeverityWarning:
		m.showWarningToast(text)
	default:
		m.showInfoToast(text)
	}
}

func (m *Model) clearToast() {
	m.toastText = ""
	m.toastLevel = toastLevelInfo
	m.toastUntil = time.Time{}
}

func (m *Model) toastActive(at time.Time) bool {
	if strings.TrimSpace(m.toastText) == "" {
		return false
	}
	if m.toastUntil.IsZero() {
		return true
	}
	return at.Before(m.toastUntil)
}

func (m *Model) toastLine(width int) string {
	if !m.toastActive(m.now()) || width <= 0 {
		return ""
	}
	maxTextWidth := max(1, width-4)
	text := truncateToWidth(m.toastText, maxTextWidth)
	pill := m.toastStyle().Render(" " + text + " ")
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, pill)
}

func (m *Model) toastStyle() lipgloss.Style {
	switch m.toastLevel {
	case toastLevelWarning:
		return toastWarningStyle
	case toastLevelError:
		return toastErrorStyle
	default:
		return toastInfoStyle
	}
}
