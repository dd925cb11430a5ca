package main

import (
	"errors"
	"testing"

	"github.com/BertoldVdb/DualshockResearch/dualshock"
)

func TestPollIntoKeepsLastState(t *testing.T) {
	good := dualshock.NewState(dualshock.Response{7: 0xc0}, dualshock.Response{}, dualshock.Response{})

	var st dualshock.State
	err := pollInto(&st, func() (dualshock.State, error) { return good, nil })
	if err != nil || st.LeftX() != 0xc0 {
		t.Fatalf("good poll not stored: err=%v lx=%d", err, st.LeftX())
	}

	errPoll := errors.New("timeout")
	err = pollInto(&st, func() (dualshock.State, error) { return dualshock.State{}, errPoll })
	if !errors.Is(err, errPoll) {
		t.Errorf("expected poll error, got %v", err)
	}
	if st.LeftX() != 0xc0 {
		t.Errorf("failed poll replaced the state, lx=%d", st.LeftX())
	}
}
