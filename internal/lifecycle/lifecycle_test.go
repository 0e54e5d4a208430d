package lifecycle

import (
	"errors"
	"testing"
)

func TestUploadLockedByDefault(t *testing.T) {
	s := Upload()
	if s.Status != StatusLocked || !s.Locked {
		t.Errorf("Upload() = %+v", s)
	}
}

func TestLock(t *testing.T) {
	s, err := Lock(State{Status: StatusDraft})
	if err != nil || s.Status != StatusLocked || !s.Locked {
		t.Errorf("Lock(draft) = %+v, %v", s, err)
	}
	if _, err := Lock(State{Status: StatusSubmitted, Locked: true}); err == nil {
		t.Error("Lock(submitted) should fail")
	}
}

func TestUnlock(t *testing.T) {
	s, err := Unlock(Upload(), false)
	if err != nil || s.Status != StatusDraft || s.Locked {
		t.Errorf("Unlock(locked) = %+v, %v", s, err)
	}

	_, err = Unlock(State{Status: StatusApproved, Locked: true}, false)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("Unlock(approved) err = %v, want TransitionError", err)
	}
	if te.Current != StatusApproved {
		t.Errorf("TransitionError.Current = %s", te.Current)
	}

	s, err = Unlock(State{Status: StatusApproved, Locked: true}, true)
	if err != nil || s.Status != StatusDraft || s.Locked {
		t.Errorf("force Unlock(approved) = %+v, %v", s, err)
	}
}

func TestSubmit(t *testing.T) {
	s, err := Submit(State{Status: StatusLocked, Locked: true}, 0)
	if err != nil || s.Status != StatusSubmitted || !s.Locked {
		t.Errorf("Submit(locked) = %+v, %v", s, err)
	}

	// Draft submits with an implicit lock.
	s, err = Submit(State{Status: StatusDraft}, 0)
	if err != nil || s.Status != StatusSubmitted || !s.Locked {
		t.Errorf("Submit(draft) = %+v, %v", s, err)
	}
}

func TestSubmitBlockedByGaps(t *testing.T) {
	prior := State{Status: StatusDraft}
	s, err := Submit(prior, 3)
	var ge *GapsError
	if !errors.As(err, &ge) || ge.Count != 3 {
		t.Fatalf("err = %v, want GapsError{3}", err)
	}
	if s != prior {
		t.Errorf("state changed on failed submit: %+v", s)
	}
}

func TestSubmitWhileInPipeline(t *testing.T) {
	for _, st := range []Status{StatusSubmitted, StatusUnderReview, StatusApproved} {
		prior := State{Status: st, Locked: true}
		s, err := Submit(prior, 0)
		var te *TransitionError
		if !errors.As(err, &te) {
			t.Fatalf("Submit(%s) err = %v, want TransitionError", st, err)
		}
		if te.Current != st || te.Action != "submit" {
			t.Errorf("TransitionError = %+v", te)
		}
		if s != prior {
			t.Errorf("Submit(%s) changed state to %+v", st, s)
		}
	}
}

func TestReviewFlow(t *testing.T) {
	s, err := StartReview(State{Status: StatusSubmitted, Locked: true})
	if err != nil || s.Status != StatusUnderReview {
		t.Fatalf("StartReview = %+v, %v", s, err)
	}

	approved, err := Approve(s)
	if err != nil || approved.Status != StatusApproved || !approved.Locked {
		t.Errorf("Approve = %+v, %v", approved, err)
	}

	rejected, err := Reject(s)
	if err != nil || rejected.Status != StatusDraft || rejected.Locked {
		t.Errorf("Reject = %+v, %v", rejected, err)
	}

	if _, err := Approve(State{Status: StatusDraft}); err == nil {
		t.Error("Approve(draft) should fail")
	}
	if _, err := StartReview(State{Status: StatusDraft}); err == nil {
		t.Error("StartReview(draft) should fail")
	}
}

// Every reachable state satisfies the lock invariants.
func TestTransitionsKeepStateConsistent(t *testing.T) {
	states := []State{Upload()}
	push := func(s State, err error) {
		if err == nil {
			states = append(states, s)
		}
	}
	for i := 0; i < len(states) && i < 200; i++ {
		s := states[i]
		push(Lock(s))
		push(Unlock(s, false))
		push(Unlock(s, true))
		push(Submit(s, 0))
		push(StartReview(s))
		push(Approve(s))
		push(Reject(s))
		states = append(states, Reset(s))
	}
	for _, s := range states {
		if !s.Consistent() {
			t.Errorf("inconsistent reachable state %+v", s)
		}
		if !ValidStatus(s.Status) {
			t.Errorf("invalid status %q", s.Status)
		}
	}
}
