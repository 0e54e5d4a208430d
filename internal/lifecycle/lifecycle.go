// Package lifecycle is the document state machine: pure transition functions
// over (status, locked) pairs. Storage and HTTP live elsewhere; only the
// rules are here.
package lifecycle

import "fmt"

type Status string

const (
	StatusDraft       Status = "draft"
	StatusLocked      Status = "locked"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusLocked, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type State struct {
	Status Status
	Locked bool
}

// Consistent reports whether the pair satisfies the lock invariants:
// approved documents are always locked, drafts never are.
func (s State) Consistent() bool {
	switch s.Status {
	case StatusApproved:
		return s.Locked
	case StatusDraft:
		return !s.Locked
	}
	return true
}

// TransitionError carries the current status and the attempted action so the
// caller can decide whether to offer a force path.
type TransitionError struct {
	Current Status
	Action  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while document is %s", e.Action, e.Current)
}

// GapsError blocks submission while required fields are unresolved.
type GapsError struct {
	Count int
}

func (e *GapsError) Error() string {
	return fmt.Sprintf("document has %d unresolved gap(s)", e.Count)
}

// Upload is the initial state: documents are protected by default.
func Upload() State {
	return State{Status: StatusLocked, Locked: true}
}

// Lock protects a draft. Locking an already locked document is a no-op.
func Lock(s State) (State, error) {
	switch s.Status {
	case StatusDraft, StatusLocked:
		return State{Status: StatusLocked, Locked: true}, nil
	}
	return s, &TransitionError{Current: s.Status, Action: "lock"}
}

// Unlock returns a locked or draft document to an editable draft. With force
// it is permitted from any state and always resets to draft.
func Unlock(s State, force bool) (State, error) {
	if !force && s.Status != StatusLocked && s.Status != StatusDraft {
		return s, &TransitionError{Current: s.Status, Action: "unlock"}
	}
	return State{Status: StatusDraft, Locked: false}, nil
}

// Reset is the administrative override: any state back to an unlocked draft.
func Reset(State) State {
	return State{Status: StatusDraft, Locked: false}
}

// Submit moves a draft or locked document to submitted, locking it. It fails
// without a state change when unresolved gaps remain or the document is
// already in the review pipeline.
func Submit(s State, gapCount int) (State, error) {
	switch s.Status {
	case StatusSubmitted, StatusUnderReview, StatusApproved:
		return s, &TransitionError{Current: s.Status, Action: "submit"}
	case StatusDraft, StatusLocked:
	default:
		return s, &TransitionError{Current: s.Status, Action: "submit"}
	}
	if gapCount > 0 {
		return s, &GapsError{Count: gapCount}
	}
	return State{Status: StatusSubmitted, Locked: true}, nil
}

// StartReview claims a submitted document for review.
func StartReview(s State) (State, error) {
	if s.Status != StatusSubmitted {
		return s, &TransitionError{Current: s.Status, Action: "start review"}
	}
	return State{Status: StatusUnderReview, Locked: true}, nil
}

// Approve finishes review positively. The approved document stays locked.
func Approve(s State) (State, error) {
	if s.Status != StatusSubmitted && s.Status != StatusUnderReview {
		return s, &TransitionError{Current: s.Status, Action: "approve"}
	}
	return State{Status: StatusApproved, Locked: true}, nil
}

// Reject finishes review negatively and returns the document to an editable
// draft. The rejection itself is recorded on the submission, not the
// document.
func Reject(s State) (State, error) {
	if s.Status != StatusSubmitted && s.Status != StatusUnderReview {
		return s, &TransitionError{Current: s.Status, Action: "reject"}
	}
	return State{Status: StatusDraft, Locked: false}, nil
}
