package bot

import (
	"reflect"
	"testing"

	th "github.com/mymmrac/telego/telegohandler"
)

// The handler methods must keep matching telegohandler's context-based
// signatures, otherwise registration in Run stops compiling.
var (
	_ th.MessageHandler       = (&Bot{}).answerCommand
	_ th.CallbackQueryHandler = (&Bot{}).answerCallback
	_ th.MessageHandler       = (&Bot{}).answerMessage
)

func TestSplitIDs(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{"single", []string{"single"}},
		{",,", nil},
		{"", nil},
	}
	for _, tc := range cases {
		if got := splitIDs(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("splitIDs(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSessionStore_UpdateAndSnapshot(t *testing.T) {
	store := newSessionStore()

	store.Update(1, func(s *session) {
		s.Token = "tok"
		s.Step = createOfferStep{Stage: 3}
	})

	snap := store.Snapshot(1)
	if snap.Token != "tok" {
		t.Fatalf("unexpected token: %q", snap.Token)
	}
	st, ok := snap.Step.(createOfferStep)
	if !ok || st.Stage != 3 {
		t.Fatalf("unexpected step: %#v", snap.Step)
	}

	// A snapshot is a copy; mutating it must not leak into the store.
	snap.Token = "other"
	if store.Snapshot(1).Token != "tok" {
		t.Fatal("snapshot mutation leaked into the store")
	}

	if unknown := store.Snapshot(42); unknown.Token != "" || unknown.Step != nil {
		t.Fatalf("unknown chat should start empty, got %#v", unknown)
	}
}

func TestSessionStore_CancelClearsStep(t *testing.T) {
	store := newSessionStore()

	store.Update(7, func(s *session) {
		s.Token = "tok"
		s.Step = loginStep{Username: "alice"}
	})
	store.Update(7, func(s *session) { s.Step = nil })

	snap := store.Snapshot(7)
	if snap.Step != nil {
		t.Fatalf("step should be cleared, got %#v", snap.Step)
	}
	if snap.Token != "tok" {
		t.Fatal("clearing the step must not drop the token")
	}
}
