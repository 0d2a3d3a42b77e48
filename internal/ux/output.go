// Package ux renders the terminal client's output.
package ux

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"homebase/internal/calendar"
	"homebase/internal/model"
)

var (
	ColorAccent  = lipgloss.Color("#4F9DDE")
	ColorSuccess = lipgloss.Color("#3BB273")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#6C7A89")
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title      lipgloss.Style
	Header     lipgloss.Style
	Muted      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	WarningBox lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
	Header:  lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	WarningBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Padding(0, 1),
}

// BannerText is shown while the client works against local storage.
const BannerText = "Working offline: the server is unreachable, so changes are saved on this device only."

// Printer writes styled output to w.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Banner prints the degraded-mode notice.
func (p *Printer) Banner() {
	title := Styles.Warning.Bold(true).Render("Offline mode")
	body := BannerText + "\n" + Styles.Muted.Render("Run `homebase banner dismiss` to hide this notice.")
	fmt.Fprintln(p.w, Styles.WarningBox.Render(title+"\n"+body))
}

func (p *Printer) Success(text string) {
	fmt.Fprintf(p.w, "%s %s\n", Styles.Success.Render("✓"), text)
}

func (p *Printer) Error(text string) {
	fmt.Fprintf(p.w, "%s %s\n", Styles.Error.Render("✗"), text)
}

func (p *Printer) Title(text string) {
	fmt.Fprintln(p.w, Styles.Title.Render(text))
}

func (p *Printer) Muted(text string) {
	fmt.Fprintln(p.w, Styles.Muted.Render(text))
}

// Table prints rows under a bold header, padding each column to its widest cell.
func (p *Printer) Table(header []string, rows [][]string) {
	if len(rows) == 0 {
		p.Muted("No results.")
		return
	}
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style.Render(cell) + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	fmt.Fprintln(p.w, line(header, Styles.Header))
	for _, row := range rows {
		fmt.Fprintln(p.w, line(row, lipgloss.NewStyle()))
	}
}

// WarrantyStatus renders a warranty status in its traffic-light colour.
func WarrantyStatus(s calendar.WarrantyStatus) string {
	switch s {
	case calendar.StatusActive:
		return Styles.Success.Render(string(s))
	case calendar.StatusExpiringSoon:
		return Styles.Warning.Render(string(s))
	default:
		return Styles.Error.Render(string(s))
	}
}

func (p *Printer) Appliances(list []model.Appliance, today calendar.Date) {
	rows := make([][]string, len(list))
	for i, a := range list {
		rows[i] = []string{a.ID, a.Name, a.Brand + " " + a.Model, a.WarrantyExpiry.String(), WarrantyStatus(a.Status(today))}
	}
	p.Table([]string{"ID", "NAME", "MODEL", "WARRANTY", "STATUS"}, rows)
}

// ApplianceDetail prints one appliance followed by its tasks and contacts.
func (p *Printer) ApplianceDetail(d model.ApplianceDetail, today calendar.Date) {
	p.Title(d.Name)
	fields := [][2]string{
		{"ID", d.ID},
		{"Brand", d.Brand},
		{"Model", d.Model},
		{"Serial", d.SerialNumber},
		{"Purchased", d.PurchaseDate.String()},
		{"Warranty", fmt.Sprintf("%d months, until %s (%s)", d.WarrantyPeriodMonths, d.WarrantyExpiry, WarrantyStatus(d.Status(today)))},
		{"Bought at", d.PurchaseLocation},
		{"Manual", d.ManualLink},
		{"Receipt", d.ReceiptLink},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(p.w, "%s %s\n", Styles.Muted.Render(fmt.Sprintf("%-10s", f[0])), f[1])
	}
	fmt.Fprintln(p.w)
	p.Title("Maintenance")
	p.Tasks(d.MaintenanceTasks)
	fmt.Fprintln(p.w)
	p.Title("Contacts")
	p.Contacts(d.Contacts)
}

func done(b bool) string {
	if b {
		return Styles.Success.Render("done")
	}
	return "open"
}

func (p *Printer) Tasks(list []model.MaintenanceTask) {
	rows := make([][]string, len(list))
	for i, t := range list {
		rows[i] = []string{t.ID, t.TaskName, t.Date.String(), string(t.Frequency), t.ReminderDate.String(), done(t.Completed)}
	}
	p.Table([]string{"ID", "TASK", "DATE", "FREQUENCY", "REMINDER", "STATE"}, rows)
}

func (p *Printer) Upcoming(list []model.UpcomingTask) {
	rows := make([][]string, len(list))
	for i, t := range list {
		rows[i] = []string{t.ReminderDate.String(), t.TaskName, t.ApplianceName, t.ServiceProviderName, t.ServiceProviderContact}
	}
	p.Table([]string{"REMINDER", "TASK", "APPLIANCE", "PROVIDER", "CONTACT"}, rows)
}

func (p *Printer) Contacts(list []model.Contact) {
	rows := make([][]string, len(list))
	for i, c := range list {
		rows[i] = []string{c.ID, c.ContactName, c.Phone, c.Email}
	}
	p.Table([]string{"ID", "NAME", "PHONE", "EMAIL"}, rows)
}

func (p *Printer) Stats(s model.ApplianceStats) {
	p.Table([]string{"TOTAL", "ACTIVE", "EXPIRING SOON", "EXPIRED"}, [][]string{{
		strconv.Itoa(s.Total),
		Styles.Success.Render(strconv.Itoa(s.Active)),
		Styles.Warning.Render(strconv.Itoa(s.ExpiringSoon)),
		Styles.Error.Render(strconv.Itoa(s.Expired)),
	}})
}
