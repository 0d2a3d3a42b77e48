// Package export writes the tracked records to a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx/v3"

	"homebase/internal/calendar"
	"homebase/internal/model"
)

// Sheet names, in workbook order.
const (
	SheetAppliances  = "Appliances"
	SheetMaintenance = "Maintenance"
	SheetContacts    = "Contacts"
)

// Data is everything that goes into one workbook.
type Data struct {
	Appliances  []model.Appliance
	Maintenance []model.MaintenanceTask
	Contacts    []model.Contact
}

// WriteXLSX renders d as an .xlsx workbook with one sheet per record type.
// Warranty status is evaluated as of today.
func WriteXLSX(w io.Writer, d Data, today calendar.Date) error {
	file := xlsx.NewFile()

	names := make(map[string]string, len(d.Appliances))
	appliances, err := addSheet(file, SheetAppliances,
		"ID", "Name", "Brand", "Model", "Serial Number", "Purchase Date",
		"Warranty (months)", "Warranty Expiry", "Status", "Purchase Location", "Manual", "Receipt")
	if err != nil {
		return err
	}
	for _, a := range d.Appliances {
		names[a.ID] = a.Name
		row := appliances.AddRow()
		addStrings(row, a.ID, a.Name, a.Brand, a.Model, a.SerialNumber, a.PurchaseDate.String())
		row.AddCell().SetInt(a.WarrantyPeriodMonths)
		addStrings(row, a.WarrantyExpiry.String(), string(a.Status(today)), a.PurchaseLocation, a.ManualLink, a.ReceiptLink)
	}

	tasks, err := addSheet(file, SheetMaintenance,
		"ID", "Appliance", "Task", "Date", "Frequency", "Reminder", "Completed", "Provider", "Provider Contact")
	if err != nil {
		return err
	}
	for _, t := range d.Maintenance {
		row := tasks.AddRow()
		addStrings(row, t.ID, applianceName(names, t.ApplianceID), t.TaskName, t.Date.String(),
			string(t.Frequency), t.ReminderDate.String())
		row.AddCell().SetBool(t.Completed)
		addStrings(row, t.ServiceProviderName, t.ServiceProviderContact)
	}

	contacts, err := addSheet(file, SheetContacts, "ID", "Appliance", "Name", "Phone", "Email", "Notes")
	if err != nil {
		return err
	}
	for _, c := range d.Contacts {
		addStrings(contacts.AddRow(), c.ID, applianceName(names, c.ApplianceID), c.ContactName, c.Phone, c.Email, c.Notes)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func addSheet(file *xlsx.File, name string, header ...string) (*xlsx.Sheet, error) {
	sheet, err := file.AddSheet(name)
	if err != nil {
		return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
	addStrings(sheet.AddRow(), header...)
	return sheet, nil
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// applianceName falls back to the id for records whose appliance is not in the export.
func applianceName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
