// Package reply classifies model replies into runnable code or plain text.
package reply

import "strings"

const (
	// RunFence opens a block whose contents should be executed.
	RunFence = "```run"
	// Fence is the generic code fence marker; inside a runnable block it closes the block.
	Fence = "```"
)

// Reply is the classification of one model reply. Concrete types implement the
// unexported isReply marker enabling a closed set: Code and Text.
type Reply interface{ isReply() }

// Code is a reply that carries a runnable fragment.
type Code struct {
	Code string // Fenced interior, original line breaks, fence lines excluded
}

// isReply implements the Reply interface for Code.
func (Code) isReply() {}

// Text is a reply without a runnable fragment.
type Text struct{}

// isReply implements the Reply interface for Text.
func (Text) isReply() {}

// Classify scans text line by line for the first runnable fence and returns
// Code with its interior, or Text when no lines were collected. Content
// before, between or after fences is ignored and nesting is not validated.
func Classify(text string) Reply {
	var block []string
	inside := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, RunFence) {
			inside = true
			continue
		}
		if inside && strings.HasPrefix(trimmed, Fence) {
			break
		}
		if inside {
			block = append(block, line)
		}
	}
	if len(block) == 0 {
		return Text{}
	}
	return Code{Code: strings.Join(block, "\n")}
}

// IsCode reports whether r is a Code reply and returns its fragment.
func IsCode(r Reply) (string, bool) {
	c, ok := r.(Code)
	if !ok {
		return "", false
	}
	return c.Code, true
}
