package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

func exportCustomersJSON(path string, customers []model.Customer) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(customers), "export: encode json")
}

func exportCustomersXLSX(path string, customers []model.Customer) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Customers")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{"ID", "Active", "Name", "Company", "Address", "City", "State", "Zip", "Stage", "Contact", "Phone", "Notes"} {
		header.AddCell().SetString(col)
	}

	for _, c := range customers {
		contactName, contactPhone := "", ""
		if pc := c.PrimaryContact(); pc != nil {
			contactName, contactPhone = pc.Name, pc.Phone
		}
		active := "no"
		if c.Active {
			active = "yes"
		}

		row := sheet.AddRow()
		for _, val := range []string{
			c.ID, active, c.Name, c.Company, c.Address, c.City, c.State, c.Zip,
			string(c.LeadStage), contactName, contactPhone, c.Notes,
		} {
			row.AddCell().SetString(val)
		}
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}
