package leadimport

import "fmt"

// Phase is the position of one import attempt in its lifecycle.
type Phase int

const (
	Idle Phase = iota
	Parsing
	NoValidRecords
	Persisting
	PersistFailed
	NotifyingExternal
	NotifyResult
)

var phaseNames = map[Phase]string{
	Idle:              "idle",
	Parsing:           "parsing",
	NoValidRecords:    "no_valid_records",
	Persisting:        "persisting",
	PersistFailed:     "persist_failed",
	NotifyingExternal: "notifying_external",
	NotifyResult:      "notify_result",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Terminal reports whether an attempt in this phase has its outcome.
func (p Phase) Terminal() bool {
	return p == NoValidRecords || p == PersistFailed || p == NotifyResult
}

// User facing texts of an outcome.
const (
	MsgNoValidLeads = "No valid leads found in CSV file."

	HintEmptyFile      = "The CSV file must contain a header row and at least one data row."
	HintRequiredColumn = "Each row needs at least one of these columns: name, phone, or email."

	NoteAutomationFailed = "Leads were saved to the database, but the automation webhook failed."
)

// Outcome is the result of one import attempt as shown to the user.
type Outcome struct {
	Phase       Phase    `json:"-"`
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Imported    int      `json:"imported"`
	Diagnostics []string `json:"diagnostics"`
}

// Attempt is the state of a single import. Transitions are pure: they return
// the next state and ignore calls made from the wrong phase.
type Attempt struct {
	Phase   Phase
	Parsed  ParseResult
	Outcome Outcome
}

// Start moves an idle attempt into parsing.
func (a Attempt) Start() Attempt {
	if a.Phase != Idle {
		return a
	}
	a.Phase = Parsing
	return a
}

// WithParsed records the parse result. Without accepted records the attempt
// ends in NoValidRecords and the lead store is never contacted.
func (a Attempt) WithParsed(res ParseResult) Attempt {
	if a.Phase != Parsing {
		return a
	}
	a.Parsed = res

	if len(res.Records) > 0 {
		a.Phase = Persisting
		return a
	}

	hint := HintRequiredColumn
	if res.Empty {
		hint = HintEmptyFile
	}

	a.Phase = NoValidRecords
	a.Outcome = Outcome{
		Phase:       NoValidRecords,
		Success:     false,
		Message:     MsgNoValidLeads,
		Diagnostics: append([]string{hint}, res.Diagnostics...),
	}
	return a
}

// WithPersisted records the batch write result. A failed write ends the attempt.
func (a Attempt) WithPersisted(err error) Attempt {
	if a.Phase != Persisting {
		return a
	}

	if err != nil {
		a.Phase = PersistFailed
		a.Outcome = Outcome{
			Phase:       PersistFailed,
			Success:     false,
			Message:     fmt.Sprintf("Failed to save leads: %s", err),
			Diagnostics: copyOf(a.Parsed.Diagnostics),
		}
		return a
	}

	a.Phase = NotifyingExternal
	return a
}

// WithNotified records the automation result. The leads are already saved, so
// a failure only adds a caveat to a successful outcome.
func (a Attempt) WithNotified(err error) Attempt {
	if a.Phase != NotifyingExternal {
		return a
	}

	n := len(a.Parsed.Records)
	diags := copyOf(a.Parsed.Diagnostics)
	if err != nil {
		diags = append(diags, NoteAutomationFailed, fmt.Sprintf("Webhook error: %s", err))
	}

	a.Phase = NotifyResult
	a.Outcome = Outcome{
		Phase:       NotifyResult,
		Success:     true,
		Message:     fmt.Sprintf("Successfully imported %d %s.", n, plural(n, "lead", "leads")),
		Imported:    n,
		Diagnostics: diags,
	}
	return a
}

func copyOf(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
