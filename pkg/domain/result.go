package domain

// ResultKind tells the caller how to update its history after a command.
type ResultKind string

const (
	ResultAppended ResultKind = "appended"
	ResultCleared  ResultKind = "cleared"
)

// CommandResult is the outcome of interpreting one line of terminal input.
type CommandResult struct {
	Kind    ResultKind `json:"kind"`
	Entries []Entry    `json:"entries"`
}

// Appended builds a result asking the caller to append entries.
func Appended(entries ...Entry) CommandResult {
	if entries == nil {
		entries = []Entry{}
	}
	return CommandResult{Kind: ResultAppended, Entries: entries}
}

// Cleared builds a result asking the caller to discard its history.
func Cleared() CommandResult {
	return CommandResult{Kind: ResultCleared, Entries: []Entry{}}
}

// IsCleared reports whether the caller should discard its history.
func (r CommandResult) IsCleared() bool {
	return r.Kind == ResultCleared
}

// Texts returns the text of the entries to append.
func (r CommandResult) Texts() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Text
	}
	return out
}

// Apply updates the transcript in place: clear it, or append the new entries.
func (r CommandResult) Apply(t *Transcript) {
	if r.IsCleared() {
		t.Clear()
		return
	}
	if len(r.Entries) == 0 {
		return
	}
	t.Append(r.Entries...)
}
