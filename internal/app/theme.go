package app

import (
	"github.com/charmbracelet/lipgloss"

	"leadboard/internal/projector"
)

var (
	headerStyle              = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle                = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle              = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	selectedStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	dividerStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	columnHeaderStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Bold(true)
	menuDropStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235"))
	dialogHeaderStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("251")).Background(lipgloss.Color("235")).Bold(true)
	confirmDialogBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208"))
	promptFrameStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("69")).Padding(0, 1)
	detailFrameStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	detailKeyStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	progressFillStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	progressDoneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	progressTrackStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	disabledStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	enabledStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	timestampStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	toneInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	toneWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	toneErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	toneOtherStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	toneSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("70")).Bold(true)

	toastInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)
	toastErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)

func toneStyle(tone projector.Tone) lipgloss.Style {
	switch tone {
	case projector.ToneInfo:
		return toneInfoStyle
	case projector.ToneWarning:
		return toneWarningStyle
	case projector.ToneError:
		return toneErrorStyle
	case projector.ToneSuccess:
		return toneSuccessStyle
	default:
		return toneOtherStyle
	}
}
