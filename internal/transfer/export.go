package transfer

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jeanpaul/phonebook/internal/contact"
	"github.com/jeanpaul/phonebook/internal/store"
)

const sheetName = "Contacts"

// Export writes contacts to path in the format given by its extension,
// replacing any existing file.
func Export(path string, contacts []contact.Contact) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatCSV:
		return exportCSV(path, contacts)
	case FormatXLSX:
		return exportXLSX(path, contacts)
	default:
		data, err := store.EncodeContacts(contacts)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	}
}

func exportCSV(path string, contacts []contact.Contact) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, c := range contacts {
		if err := w.Write([]string{strconv.Itoa(c.ID), c.Name, c.Number}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func exportXLSX(path string, contacts []contact.Contact) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, c := range contacts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		// The number stays a string so that leading zeros survive.
		row := []any{c.ID, c.Name, c.Number}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return f.SaveAs(path)
}
