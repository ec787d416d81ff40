// Package leadimport turns an uploaded CSV file into pending leads of a
// campaign and tells the outreach automation about the upload.
package leadimport

import "strings"

// Field is a canonical lead attribute a CSV header can map to.
type Field string

const (
	FieldName           Field = "name"
	FieldPhone          Field = "phone"
	FieldEmail          Field = "email"
	FieldCompanyName    Field = "company_name"
	FieldJobTitle       Field = "job_title"
	FieldSourceURL      Field = "source_url"
	FieldSourcePlatform Field = "source_platform"
)

// aliases is ordered; the first field whose alias list matches wins.
var aliases = []struct {
	field Field
	names []string
}{
	{FieldName, []string{"name", "full_name", "first_name"}},
	{FieldPhone, []string{"phone", "phone_number", "mobile"}},
	{FieldEmail, []string{"email", "email_address"}},
	{FieldCompanyName, []string{"company_name", "company", "organization"}},
	{FieldJobTitle, []string{"job_title", "title", "position"}},
	{FieldSourceURL, []string{"source_url", "url", "website"}},
	{FieldSourcePlatform, []string{"source_platform", "platform", "source"}},
}

// ResolveHeader maps a raw header token to its canonical field. Unknown headers
// report false and contribute nothing to the record.
func ResolveHeader(header string) (Field, bool) {
	h := strings.ToLower(clean(header))

	for _, a := range aliases {
		for _, name := range a.names {
			if h == name {
				return a.field, true
			}
		}
	}
	return "", false
}

// clean trims a cell and drops every double quote in it.
func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}
