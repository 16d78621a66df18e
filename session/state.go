package session

import "github.com/google/uuid"

// DefaultMaxTokens is the token budget used when the configuration sets none.
const DefaultMaxTokens = 4096

// State is the mutable session record.
type State struct {
	// ID identifies the session in logs; it is regenerated on every Init.
	ID string
	// Instruction is the active instruction, used as the default publish title.
	Instruction string
	// SystemPrompt is the assembled prompt, attached only while the model
	// history is empty.
	SystemPrompt string
	MaxTokens    int
	Language     string
	Record       bool
	// MaxRounds caps feedback rounds per instruction; zero means unlimited.
	MaxRounds int
}

// New returns a State with defaults applied and a fresh ID.
func New() *State {
	return &State{
		ID:        uuid.NewString(),
		MaxTokens: DefaultMaxTokens,
		Record:    true,
	}
}

// Activate records instruction as the active one.
func (s *State) Activate(instruction string) {
	s.Instruction = instruction
}
