package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/vmsclient/internal/client/models"
	"github.com/dmitrijs2005/vmsclient/internal/client/services"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	markStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Column widths of the event table.
const (
	idWidth       = 6
	nameWidth     = 28
	startWidth    = 17
	locationWidth = 20
	slotsWidth    = 6
)

// prompt renders the REPL prompt: current location and, when signed in,
// the user and their primary role.
func (a *App) prompt() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("vms"))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render(a.nav.CurrentURL()))
	if snap := a.session.Snapshot(); snap.IsLoggedIn() {
		b.WriteString(" ")
		b.WriteString(userStyle.Render(snap.DisplayName()))
		b.WriteString(roleLabel(snap.PrimaryRole()))
	}
	b.WriteString(" > ")
	return b.String()
}

func renderEvents(list []services.EventView) string {
	if len(list) == 0 {
		return mutedStyle.Render("No events.") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(row("ID", "Name", "Start", "Location", "Slots", "")))
	b.WriteString("\n")
	for _, ev := range list {
		mark := ""
		if ev.Registered {
			mark = markStyle.Render("✓ registered")
		}
		b.WriteString(row(strconv.FormatInt(ev.ID, 10), ev.Name, shortTime(ev.StartDateTime), ev.Location, slots(ev.SlotsAvailable), mark))
		b.WriteString("\n")
	}
	return b.String()
}

func row(id, name, start, location, slotCount, mark string) string {
	cells := []string{
		cell(id, idWidth),
		cell(name, nameWidth),
		cell(start, startWidth),
		cell(location, locationWidth),
		cell(slotCount, slotsWidth),
	}
	return strings.TrimRight(strings.Join(cells, " ")+" "+mark, " ")
}

func cell(text string, width int) string {
	if lipgloss.Width(text) > width {
		text = truncate(text, width-1) + "…"
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

// truncate cuts text to maxWidth visual characters.
func truncate(text string, maxWidth int) string {
	if lipgloss.Width(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for length := len(runes) - 1; length >= 0; length-- {
		candidate := string(runes[:length])
		if lipgloss.Width(candidate) <= maxWidth {
			return candidate
		}
	}
	return ""
}

// shortTime drops seconds and the date-time separator from an ISO
// local date-time.
func shortTime(iso string) string {
	s := strings.Replace(iso, "T", " ", 1)
	if len(s) > 16 {
		s = s[:16]
	}
	return s
}

func slots(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

// renderEvent prints the event detail. With volunteers set, the assigned
// volunteers are listed as well.
func renderEvent(ev *models.Event, volunteers bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(ev.Name), mutedStyle.Render("#"+strconv.FormatInt(ev.ID, 10)))
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Width(12).Render(label), value)
		}
	}
	field("When:", shortTime(ev.StartDateTime)+" - "+shortTime(ev.EndDateTime))
	field("Where:", ev.Location)
	field("Organizer:", ev.OrganizerName)
	field("Slots:", slots(ev.SlotsAvailable))
	if ev.Description != "" {
		b.WriteString("\n" + ev.Description + "\n")
	}

	if !volunteers {
		return b.String()
	}
	b.WriteString("\n" + headerStyle.Render("Assigned volunteers") + "\n")
	if len(ev.AssignedVolunteers) == 0 {
		b.WriteString(mutedStyle.Render("None yet.") + "\n")
	}
	for _, v := range ev.AssignedVolunteers {
		fmt.Fprintf(&b, "  %s <%s>", v.Name, v.Email)
		if v.PhoneNumber != "" {
			fmt.Fprintf(&b, " %s", mutedStyle.Render(v.PhoneNumber))
		}
		b.WriteString("\n")
	}
	return b.String()
}
