package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess = lipgloss.Color("#2ECC71") // green  — confirmed deployments
	ColorWarning = lipgloss.Color("#F5A623") // amber  — warnings, pending
	ColorError   = lipgloss.Color("#E74C3C") // red    — failures
	ColorAddress = lipgloss.Color("#3BC9DB") // cyan   — addresses, tx hashes
	ColorValue   = lipgloss.Color("#FFFFFF") // white bold — amounts
	ColorMeta    = lipgloss.Color("#666666") // dim gray — metadata
	ColorBorder  = lipgloss.Color("#2B4162") // dark blue — chrome
	ColorAccent  = lipgloss.Color("#845EF7") // violet — headings, contract names
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleAccent  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Underline(true)
)

// Banner returns the solterm startup banner.
func Banner() string {
	art := `
  ███████╗ ██████╗ ██╗  ████████╗███████╗██████╗ ███╗   ███╗
  ██╔════╝██╔═══██╗██║  ╚══██╔══╝██╔════╝██╔══██╗████╗ ████║
  ███████╗██║   ██║██║     ██║   █████╗  ██████╔╝██╔████╔██║
  ╚════██║██║   ██║██║     ██║   ██╔══╝  ██╔══██╗██║╚██╔╝██║
  ███████║╚██████╔╝███████╗██║   ███████╗██║  ██║██║ ╚═╝ ██║
  ╚══════╝ ╚═════╝ ╚══════╝╚═╝   ╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝`

	tagline := StyleMeta.Render("   Compile, estimate and deploy Solidity from your terminal")
	return StyleAccent.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats an informational message.
func Info(msg string) string { return StyleMeta.Render("· " + msg) }

// Hint formats a follow-up hint line.
func Hint(msg string) string { return StyleMeta.Render("  ↪ " + msg) }

// Addr formats an address or transaction hash.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// Contract formats a contract name.
func Contract(c string) string { return StyleAccent.Render(c) }

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
