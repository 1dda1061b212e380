package domain

import "time"

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// Channel identifies which widget a transcript belongs to.
type Channel string

const (
	ChannelChat     Channel = "chat"
	ChannelTerminal Channel = "terminal"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelChat || c == ChannelTerminal
}

// Entry is one displayed line of conversation or terminal history.
type Entry struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at,omitempty"`
}

// Transcript is the append-only history of a channel. It is owned by the caller;
// the core only ever receives it as an argument.
type Transcript struct {
	Channel   Channel   `json:"channel"`
	Entries   []Entry   `json:"entries"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTranscript creates an empty transcript for the channel.
func NewTranscript(ch Channel) *Transcript {
	return &Transcript{
		Channel:   ch,
		Entries:   []Entry{},
		UpdatedAt: time.Now(),
	}
}

// Append adds entries, stamping any without a timestamp.
func (t *Transcript) Append(entries ...Entry) {
	now := time.Now()
	for _, e := range entries {
		if e.At.IsZero() {
			e.At = now
		}
		t.Entries = append(t.Entries, e)
	}
	t.UpdatedAt = now
}

// Clear drops all entries.
func (t *Transcript) Clear() {
	t.Entries = []Entry{}
	t.UpdatedAt = time.Now()
}

// Snapshot returns a deep copy of the transcript.
func (t *Transcript) Snapshot() *Transcript {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Entries = append([]Entry{}, t.Entries...)
	return &cp
}

// Texts returns the text of every entry, in order.
func (t *Transcript) Texts() []string {
	out := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = e.Text
	}
	return out
}
