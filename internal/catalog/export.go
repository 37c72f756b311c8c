package catalog

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pricebook-hq/pricebook-api/internal"
	catalogDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/catalog"
)

const exportSheetName = "Price Guide"

// exportHeader is the fixed column set shared by export and import.
var exportHeader = []string{
	"Name",
	"Maker",
	"Model No",
	"Year From",
	"Year To",
	"Price Low",
	"Price High",
	"Currency",
	"Notes",
	"Published",
}

var exportColumnWidths = []float64{32, 20, 18, 10, 10, 12, 12, 10, 40, 10}

// Exporter streams a company's catalog into an XLSX workbook. Entries
// are read in repository pages so a big catalog never sits in memory
// twice.
type Exporter struct {
	repo     RepositoryAPI
	pageSize int
}

func NewExporter(repo RepositoryAPI, pageSize int) *Exporter {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &Exporter{
		repo:     repo,
		pageSize: pageSize,
	}
}

// ExportWorkbook builds the workbook for one company and returns the
// serialized bytes.
func (x *Exporter) ExportWorkbook(companyID int64) (*bytes.Buffer, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		f.Close()
		return nil, internal.NewInternalError("failed to create sheet", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	if err := x.writeHeader(f); err != nil {
		f.Close()
		return nil, err
	}

	row := 2
	offset := 0
	for {
		entries, err := x.repo.GetEntriesPaged(companyID, offset, x.pageSize)
		if err != nil {
			f.Close()
			return nil, internal.NewInternalError("failed to read entries", err)
		}
		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			if err := x.writeEntry(f, row, entry); err != nil {
				f.Close()
				return nil, err
			}
			row++
		}
		offset += x.pageSize
	}

	if err := f.SetPanes(exportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, internal.NewInternalError("failed to freeze header", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, internal.NewInternalError("failed to serialize workbook", err)
	}
	if err := f.Close(); err != nil {
		return nil, internal.NewInternalError("failed to close workbook", err)
	}

	return &buf, nil
}

func (x *Exporter) writeHeader(f *excelize.File) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return internal.NewInternalError("failed to create header style", err)
	}

	for col, header := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return internal.NewInternalError("failed to address header cell", err)
		}
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return internal.NewInternalError(fmt.Sprintf("failed to write header cell %s", cell), err)
		}
		if err := f.SetCellStyle(exportSheetName, cell, cell, headerStyle); err != nil {
			return internal.NewInternalError("failed to style header cell", err)
		}

		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return internal.NewInternalError("failed to resolve column name", err)
		}
		if err := f.SetColWidth(exportSheetName, colName, colName, exportColumnWidths[col]); err != nil {
			return internal.NewInternalError("failed to set column width", err)
		}
	}
	return nil
}

func (x *Exporter) writeEntry(f *excelize.File, row int, entry *catalogDatamodel.Entry) error {
	published := "No"
	if entry.IsPublished {
		published = "Yes"
	}

	// Prices leave the system in major units so the sheet is readable.
	values := []interface{}{
		entry.Name,
		entry.Maker,
		entry.ModelNo,
		zeroAsBlank(entry.YearFrom),
		zeroAsBlank(entry.YearTo),
		centsToMajor(entry.PriceLowCents),
		centsToMajor(entry.PriceHighCents),
		entry.Currency,
		entry.Notes,
		published,
	}

	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return internal.NewInternalError("failed to address cell", err)
		}
		if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
			return internal.NewInternalError(fmt.Sprintf("failed to write cell %s", cell), err)
		}
	}
	return nil
}

func centsToMajor(cents int64) float64 {
	return float64(cents) / 100
}

func zeroAsBlank(year int) interface{} {
	if year == 0 {
		return ""
	}
	return year
}
