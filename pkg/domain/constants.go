package domain

const (
	// DefaultPrompt is the identity label prefixed to echoed terminal lines.
	DefaultPrompt = "user@waseeq:~$"

	// NotFoundFormat renders an unrecognized terminal command.
	NotFoundFormat = "ERR: %s NOT_FOUND"
)
