package chat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxInputLength bounds a single player input sent to the api.
const MaxInputLength = 500

// maxSpeakerLength is the longest prefix treated as a speaker label.
const maxSpeakerLength = 50

// InputRequest is one line of player input for a running session.
type InputRequest struct {
	SessionID uuid.UUID `json:"session_id,omitempty"`
	Input     string    `json:"input"`
}

// ChatResponse is the text returned by a text-generation provider.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
}

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Storyteller
	ChatRoleSystem = "system"    // Instructions
)

// ChatMessage is a single message in a provider conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

func (r *InputRequest) Validate() error {
	if strings.TrimSpace(r.Input) == "" {
		return fmt.Errorf("input cannot be empty")
	}
	if len(r.Input) > MaxInputLength {
		return fmt.Errorf("input exceeds maximum length of %d characters", MaxInputLength)
	}
	return nil
}

// FormatWithSpeaker prefixes a story line with the speaker's name unless
// it already starts with a "Name:" label.
func FormatWithSpeaker(message, speaker string) string {
	if i := strings.Index(message, ":"); i > 0 && i <= maxSpeakerLength {
		return message
	}
	return speaker + ": " + message
}
