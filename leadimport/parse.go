package leadimport

import (
	"fmt"
	"strings"
)

// Record is a validated lead candidate taken from one CSV row. Absent
// attributes are empty strings.
type Record struct {
	Name           string `json:"name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	SourceURL      string `json:"source_url,omitempty"`
	SourcePlatform string `json:"source_platform,omitempty"`
}

func (r *Record) set(f Field, v string) {
	switch f {
	case FieldName:
		r.Name = v
	case FieldPhone:
		r.Phone = v
	case FieldEmail:
		r.Email = v
	case FieldCompanyName:
		r.CompanyName = v
	case FieldJobTitle:
		r.JobTitle = v
	case FieldSourceURL:
		r.SourceURL = v
	case FieldSourcePlatform:
		r.SourcePlatform = v
	}
}

// Valid reports whether the record carries at least one way to reach the lead.
func (r Record) Valid() bool {
	return r.Name != "" || r.Phone != "" || r.Email != ""
}

// ParseResult is the outcome of parsing one file. Empty is set when the file
// has no header or no data rows, which callers report differently from a file
// whose rows were all rejected.
type ParseResult struct {
	Records     []Record
	Diagnostics []string
	Empty       bool
}

// Parse reads CSV content into records. Cells are split on every literal comma:
// quoted fields with embedded commas or newlines are not supported. Rows are
// numbered by their position among non-blank lines, the header being row 1.
func Parse(content string) ParseResult {
	// Spreadsheet exports often prefix UTF-8 files with a byte order mark.
	content = strings.TrimPrefix(content, "\ufeff")

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) < 2 {
		return ParseResult{Empty: true}
	}

	columns := make(map[int]Field)
	for i, h := range strings.Split(lines[0], ",") {
		if f, ok := ResolveHeader(h); ok {
			columns[i] = f
		}
	}

	var res ParseResult
	for i, line := range lines[1:] {
		cells := strings.Split(line, ",")

		var rec Record
		// Resolution runs in column order so a duplicated field keeps the
		// value of its last column.
		for col := 0; col < len(cells); col++ {
			f, ok := columns[col]
			if !ok {
				continue
			}
			rec.set(f, clean(cells[col]))
		}

		if !rec.Valid() {
			res.Diagnostics = append(res.Diagnostics, rowDiagnostic(i+2))
			continue
		}
		res.Records = append(res.Records, rec)
	}

	return res
}

func rowDiagnostic(row int) string {
	return fmt.Sprintf("Row %d: Missing required data (name, phone, or email)", row)
}
