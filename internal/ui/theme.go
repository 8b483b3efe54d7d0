package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/railtel/railgpt/internal/session"
)

// Theme is the palette for one role. Admin and regular users share a single
// view; the role swaps colors only, never structure.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
	Accent    lipgloss.Color
	Error     lipgloss.Color
}

// ThemeForRole returns the role's palette: blue for users, red for admins.
func ThemeForRole(role session.Role) Theme {
	if role == session.RoleAdmin {
		return Theme{
			Primary:   lipgloss.Color("#dc2626"),
			Secondary: lipgloss.Color("15"),
			Muted:     lipgloss.Color("8"),
			Border:    lipgloss.Color("#991b1b"),
			Accent:    lipgloss.Color("#f87171"),
			Error:     lipgloss.Color("9"),
		}
	}
	return Theme{
		Primary:   lipgloss.Color("#1976d2"),
		Secondary: lipgloss.Color("15"),
		Muted:     lipgloss.Color("8"),
		Border:    lipgloss.Color("#1565c0"),
		Accent:    lipgloss.Color("#64b5f6"),
		Error:     lipgloss.Color("9"),
	}
}

// DepartmentColor returns the tag color for a department chip.
func DepartmentColor(dept string) lipgloss.Color {
	switch dept {
	case "HR":
		return lipgloss.Color("#60a5fa")
	case "Finance":
		return lipgloss.Color("#34d399")
	case "Operations":
		return lipgloss.Color("#c084fc")
	default:
		return lipgloss.Color("8")
	}
}
