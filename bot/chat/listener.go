package chat

import "AutoLead/entity"

// TranscriptListener is called after a transcript message is saved.
// This lets the WebSocket hub mirror the dialog live without creating
// circular imports between bot packages and core.
type TranscriptListener interface {
	MessageSaved(msg entity.Message)
}
