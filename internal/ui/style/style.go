// Package style holds the colours and glyphs shared by the log handler and the
// table renderer.
package style

import "github.com/charmbracelet/lipgloss"

// Colours by role.
var (
	// Accent marks titles, table headers and info log lines.
	Accent = lipgloss.Color("#0F766E")
	// Muted is used for borders, footers and debug lines.
	Muted = lipgloss.Color("#667085")
	// Danger marks errors.
	Danger = lipgloss.Color("#D93025")
	// Caution marks warnings and stale data.
	Caution = lipgloss.Color("#F59E0B")
)

// Glyphs prefixing log lines and separating stats.
const (
	Check     = "✓"
	Cross     = "✗"
	Warning   = "!"
	Tilde     = "~"
	Separator = "●"
)
