// Package intake turns a free-text task request into a structured draft.
// It extracts a numeric assignee identifier and an optional deadline phrase
// from the message, the leftover text becomes the task description. All of
// it is pure: the reference time for relative deadlines is injected, nothing
// here touches storage.
package intake

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNoAssignee       = errors.New("no assignee id in text")
	ErrEmptyDescription = errors.New("empty task description")
)

// Draft is a parsed, not yet persisted task candidate.
type Draft struct {
	AssigneeID  int64
	Description string
	// Zero when the message carried no recognizable deadline phrase.
	Deadline time.Time
}

type Parser struct {
	// Minimum digits for a run to qualify as an assignee ID.
	MinIDDigits int
}

func NewParser(minIDDigits int) *Parser {
	if minIDDigits <= 0 {
		minIDDigits = DefaultMinIDDigits
	}
	return &Parser{MinIDDigits: minIDDigits}
}

// Parse extracts the assignee ID and the deadline from text. Matched tokens
// are cut out of the text and the edges trimmed, interior whitespace stays
// as typed. A missing assignee fails with ErrNoAssignee; a message that is
// nothing but the matched tokens fails with ErrEmptyDescription. A missing
// deadline is fine.
func (p *Parser) Parse(text string, now time.Time) (Draft, error) {
	assigneeID, idToken, ok := ExtractIdentifier(text, p.MinIDDigits)
	if !ok {
		return Draft{}, ErrNoAssignee
	}
	rest := strings.Replace(text, idToken, "", 1)

	deadline, phrase, ok := ResolveDeadline(rest, now)
	if ok {
		rest = strings.Replace(rest, phrase, "", 1)
	}

	description := strings.TrimSpace(rest)
	if description == "" {
		return Draft{}, ErrEmptyDescription
	}

	return Draft{
		AssigneeID:  assigneeID,
		Description: description,
		Deadline:    deadline,
	}, nil
}
