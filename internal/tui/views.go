package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusedPane   = paneStyle.BorderForeground(lipgloss.Color("62"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	toastOKStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	toastErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func newOrderTable() table.Model {
	cols := []table.Column{
		{Title: "Product", Width: 32},
		{Title: "Unit Price", Width: 12},
		{Title: "Qty", Width: 5},
		{Title: "Total", Width: 12},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(12))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	styles.Selected = styles.Selected.Bold(true)
	t.SetStyles(styles)
	return t
}

func (a *App) resize() {
	catalogWidth := a.width * 2 / 5
	if catalogWidth < 30 {
		catalogWidth = 30
	}
	paneHeight := a.height - 10
	if paneHeight < 8 {
		paneHeight = 8
	}
	a.catalog.SetSize(catalogWidth-4, paneHeight)
	a.table.SetWidth(a.width - catalogWidth - 6)
	a.table.SetHeight(paneHeight)
}

func (a *App) View() string {
	var b strings.Builder

	name := a.order.Name
	if name == "" {
		name = a.ed.OrderID()
	}
	b.WriteString(titleStyle.Render("Order Products - " + name))
	b.WriteString("\n")

	if msg := a.ed.ErrorMessage(); msg != "" {
		b.WriteString(errorStyle.Render("An error occurred: " + msg))
		b.WriteString("\n")
	}
	for _, info := range a.ed.InfoMessages() {
		b.WriteString(infoStyle.Render(info))
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, a.catalogPane(), a.orderPane()))
	b.WriteString("\n")
	b.WriteString(a.footer())
	return b.String()
}

func (a *App) catalogPane() string {
	body := a.catalog.View()
	if a.catalogErr != "" {
		body = errorStyle.Render("An error occurred: " + a.catalogErr)
	}
	if a.focus == focusCatalog {
		return focusedPane.Render(body)
	}
	return paneStyle.Render(body)
}

func (a *App) orderPane() string {
	var body string
	switch {
	case a.ed.Empty():
		// the info message above already explains the empty table
		body = ""
	default:
		body = a.table.View()
	}
	if a.focus == focusOrder {
		return focusedPane.Render(body)
	}
	return paneStyle.Render(body)
}

func (a *App) footer() string {
	var parts []string
	switch {
	case a.ed.Busy():
		parts = append(parts, "saving...")
	case a.ed.Activated():
		parts = append(parts, "order activated - view only")
	default:
		parts = append(parts, "[enter] Add  [x] Remove  [s] Save")
		if a.ed.CanConfirm() {
			parts = append(parts, "[c] Confirm")
		}
		parts = append(parts, "[u] Undo")
	}
	parts = append(parts, "[tab] Switch pane  [q] Quit")
	out := strings.Join(parts, "  ")

	if len(a.toasts) > 0 {
		last := a.toasts[len(a.toasts)-1]
		line := fmt.Sprintf("%s: %s", last.Title, last.Body)
		if last.Success {
			out += "\n" + toastOKStyle.Render(line)
		} else {
			out += "\n" + toastErrStyle.Render(line)
		}
	}
	return out
}

// formatCents renders whole-dollar amounts without a fraction, matching how
// prices appear in the catalog data.
func formatCents(cents int64) string {
	if cents%100 == 0 {
		return strconv.FormatInt(cents/100, 10)
	}
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

func formatQty(qty int) string {
	return strconv.Itoa(qty)
}
