package quiz

import (
	"strings"
)

// Verdict is the result of checking a quiz answer
type Verdict int

const (
	Idle    Verdict = iota // No answer checked since the last edit
	Correct                // Trimmed answer equals the trimmed source
	Wrong                  // Trimmed answer differs from the trimmed source
)

// String implements fmt.Stringer
func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Wrong:
		return "wrong"
	default:
		return "idle"
	}
}

// Attempt tracks one user's answer to one quiz code block.
// An edit always returns the verdict to Idle; only Check leaves Idle.
type Attempt struct {
	target  string
	answer  string
	verdict Verdict
}

// NewAttempt creates an attempt against the block's canonical source
func NewAttempt(source string) *Attempt {
	return &Attempt{target: strings.TrimSpace(source)}
}

// Answer returns the current answer text
func (a *Attempt) Answer() string {
	return a.answer
}

// Verdict returns the current verdict
func (a *Attempt) Verdict() Verdict {
	return a.verdict
}

// Edit replaces the answer text and resets the verdict
func (a *Attempt) Edit(answer string) {
	a.answer = answer
	a.verdict = Idle
}

// Check compares the answer with the source and records the verdict.
// An empty answer is a non-submission and leaves the attempt Idle.
func (a *Attempt) Check() Verdict {
	a.verdict = Evaluate(a.answer, a.target)
	return a.verdict
}

// Evaluate returns the verdict for answer against source
func Evaluate(answer, source string) Verdict {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Idle
	}
	if answer == strings.TrimSpace(source) {
		return Correct
	}
	return Wrong
}
