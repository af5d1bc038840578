package chantier

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// OpenDocument namespaces read by the ods reader.
const (
	odsTableNS  = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
	odsOfficeNS = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
	odsTextNS   = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
)

// Grid bounds of an ods sheet. Repeat counts are clipped to them, and runs of
// empty rows or cells are only materialized when real data follows them, so
// padding never shifts column indexes nor allocates past the grid.
const (
	maxColumns = 16384
	maxRows    = 1 << 20
)

// readODS returns the sheets of an OpenDocument spreadsheet in document order.
func readODS(path string) ([]sheet, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if f.Name != "content.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return parseODSContent(rc)
	}
	return nil, errors.New("content.xml not found in ods archive")
}

// odsCell accumulates one table cell while decoding.
type odsCell struct {
	value  string
	text   strings.Builder
	repeat int
	inText int
}

// parseODSContent decodes the content.xml stream of an ods file.
func parseODSContent(r io.Reader) ([]sheet, error) {
	dec := xml.NewDecoder(r)
	var (
		sheets       []sheet
		current      *sheet
		row          []string
		rowRepeat    int
		pendingCells int
		pendingRows  int
		cell         *odsCell
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("invalid ods content: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Space == odsTableNS && t.Name.Local == "table":
				sheets = append(sheets, sheet{name: attr(t, odsTableNS, "name")})
				current = &sheets[len(sheets)-1]
				pendingRows = 0
			case t.Name.Space == odsTableNS && t.Name.Local == "table-row":
				row = nil
				pendingCells = 0
				rowRepeat = repeatAttr(t, "number-rows-repeated")
			case t.Name.Space == odsTableNS && (t.Name.Local == "table-cell" || t.Name.Local == "covered-table-cell"):
				cell = &odsCell{value: cellValue(t), repeat: repeatAttr(t, "number-columns-repeated")}
			case cell != nil && t.Name.Space == odsTextNS:
				switch t.Name.Local {
				case "p":
					if cell.text.Len() > 0 {
						cell.text.WriteByte('\n')
					}
					cell.inText++
				case "s":
					n := repeatAttrNS(t, odsTextNS, "c")
					cell.text.WriteString(strings.Repeat(" ", n))
				case "tab":
					cell.text.WriteByte('\t')
				case "line-break":
					cell.text.WriteByte('\n')
				default:
					cell.inText++
				}
			}
		case xml.CharData:
			if cell != nil && cell.inText > 0 {
				cell.text.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Space == odsTableNS && (t.Name.Local == "table-cell" || t.Name.Local == "covered-table-cell"):
				if cell == nil {
					continue
				}
				value := cell.value
				if value == "" {
					value = cell.text.String()
				}
				if value == "" {
					pendingCells += cell.repeat
				} else {
					row = appendCells(row, "", pendingCells)
					row = appendCells(row, value, cell.repeat)
					pendingCells = 0
				}
				cell = nil
			case t.Name.Space == odsTableNS && t.Name.Local == "table-row":
				if current == nil {
					continue
				}
				row = trimTrailingEmpty(row)
				if len(row) == 0 {
					pendingRows += rowRepeat
				} else {
					current.rows = appendRows(current.rows, nil, pendingRows)
					current.rows = appendRows(current.rows, row, rowRepeat)
					pendingRows = 0
				}
				row = nil
			case t.Name.Space == odsTableNS && t.Name.Local == "table":
				current = nil
			case cell != nil && t.Name.Space == odsTextNS && t.Name.Local != "s" && t.Name.Local != "tab" && t.Name.Local != "line-break":
				cell.inText--
			}
		}
	}
	return sheets, nil
}

// cellValue returns the typed value of a cell, or "" for text cells.
func cellValue(t xml.StartElement) string {
	switch attr(t, odsOfficeNS, "value-type") {
	case "float", "percentage", "currency":
		return attr(t, odsOfficeNS, "value")
	case "date":
		return attr(t, odsOfficeNS, "date-value")
	case "time":
		return attr(t, odsOfficeNS, "time-value")
	case "boolean":
		return attr(t, odsOfficeNS, "boolean-value")
	}
	return ""
}

func attr(t xml.StartElement, space, local string) string {
	for _, a := range t.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func repeatAttr(t xml.StartElement, local string) int {
	return repeatAttrNS(t, odsTableNS, local)
}

func repeatAttrNS(t xml.StartElement, space, local string) int {
	n, err := strconv.Atoi(attr(t, space, local))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// appendCells appends n copies of value without growing the row past maxColumns.
func appendCells(row []string, value string, n int) []string {
	n = min(n, maxColumns-len(row))
	for range n {
		row = append(row, value)
	}
	return row
}

// appendRows appends n references to row without growing the sheet past maxRows.
func appendRows(rows [][]string, row []string, n int) [][]string {
	n = min(n, maxRows-len(rows))
	for range n {
		rows = append(rows, row)
	}
	return rows
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}
