package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChangeKind describes the shape of an edit.
type ChangeKind string

const (
	ChangeAddition     ChangeKind = "addition"
	ChangeDeletion     ChangeKind = "deletion"
	ChangeModification ChangeKind = "modification"
)

// signaturePrefixLen is how much of the content feeds the signature hash.
// Near-identical edits (same leading content) hash identically, which is
// what lets the result cache absorb rapid-fire keystrokes.
const signaturePrefixLen = 200

// CodeChange is an immutable snapshot of a single edit event. Construct it
// once per editor notification and pass it by value.
type CodeChange struct {
	// Content is the full current content of the changed region or file
	Content string
	// PreviousContent is the content before the edit (may be empty for additions)
	PreviousContent string
	// FilePath identifies the source file the change belongs to
	FilePath string
	// Language is the language identifier (e.g. "go", "python", "typescript")
	Language string
	// Kind is addition, deletion, or modification
	Kind ChangeKind
	// LinesChanged is the number of lines touched by the edit
	LinesChanged int
}

// Signature returns a stable hash of the change's leading content.
// Two changes with the same language and leading content share a signature.
func (c CodeChange) Signature() string {
	prefix := c.Content
	if len(prefix) > signaturePrefixLen {
		prefix = prefix[:signaturePrefixLen]
	}
	sum := sha256.Sum256([]byte(prefix))
	return hex.EncodeToString(sum[:16])
}

// Validate checks that the change is well-formed
func (c CodeChange) Validate() error {
	switch c.Kind {
	case ChangeAddition, ChangeDeletion, ChangeModification:
	default:
		return fmt.Errorf("unknown change kind %q", c.Kind)
	}
	if c.LinesChanged < 0 {
		return fmt.Errorf("lines changed cannot be negative (got %d)", c.LinesChanged)
	}
	return nil
}

// AnalysisRequest is an admitted change waiting to be dispatched.
// Created by the admission controller; consumed by the queue drain.
type AnalysisRequest struct {
	// ID uniquely identifies the request for logging and cost attribution
	ID string
	// Change is the code change that was admitted
	Change CodeChange
	// Priority is the classification assigned at admission time
	Priority Priority
	// Timestamp is when the request was admitted
	Timestamp time.Time
	// SessionID identifies the mentor session the request belongs to
	SessionID string
}

// NewAnalysisRequest creates a request for an admitted change
func NewAnalysisRequest(change CodeChange, priority Priority, sessionID string, now time.Time) *AnalysisRequest {
	return &AnalysisRequest{
		ID:        uuid.New().String(),
		Change:    change,
		Priority:  priority,
		Timestamp: now,
		SessionID: sessionID,
	}
}

// AnalysisResult is the opaque outcome of one external analysis call.
type AnalysisResult struct {
	// Summary is the mentor feedback text produced by the analysis
	Summary string
	// Model is the model that produced the feedback (empty for cached/synthetic results)
	Model string
	// InputTokens and OutputTokens are usage numbers reported by the provider
	InputTokens  int64
	OutputTokens int64
}

// Decision is the admission controller's answer for one change.
// Every field is always populated; a false Trigger is throttling, not failure.
type Decision struct {
	// Trigger is true when an analysis call should run now
	Trigger bool
	// Priority is the classification assigned to the change
	Priority Priority
	// Reason explains the decision in diagnostic text
	Reason string
	// UseCache is true when a previously computed result should be reused
	UseCache bool
}
