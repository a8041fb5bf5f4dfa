package studio

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"suno-forge/internal/forge"
)

func TestDefaultConfig(t *testing.T) {
	s := NewStore()
	st := s.Get(1, 2)
	if st.Menu != MenuMain || st.Genre != "pop" || st.Energy != forge.EnergyMedium {
		t.Fatalf("default state = %+v", st)
	}

	want := forge.PromptConfig{Genre: "pop", Energy: forge.Float(0.6)}
	if diff := cmp.Diff(want, st.Config()); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigCarriesSelection(t *testing.T) {
	st := UIState{
		Genre:        "synthwave",
		Mood:         "Dreamy",
		Energy:       forge.EnergyVeryHigh,
		Instrumental: true,
		Theme:        "  neon rain ",
	}
	want := forge.PromptConfig{
		Genre:        "synthwave",
		Mood:         "Dreamy",
		Energy:       forge.Float(0.95),
		Instrumental: forge.Bool(true),
		Theme:        "neon rain",
	}
	if diff := cmp.Diff(want, st.Config()); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSetters(t *testing.T) {
	var st UIState

	if !st.SetGenre(" Jazz ") || st.Genre != "jazz" {
		t.Fatalf("SetGenre jazz: %q", st.Genre)
	}
	if st.SetGenre("polka") || st.Genre != "jazz" {
		t.Fatalf("SetGenre polka changed genre to %q", st.Genre)
	}

	if !st.SetMood(2) || st.Mood != moods[2] {
		t.Fatalf("SetMood(2): %q", st.Mood)
	}
	if st.SetMood(len(moods)) || st.Mood != moods[2] {
		t.Fatalf("SetMood out of range changed mood to %q", st.Mood)
	}
	if !st.SetMood(-1) || st.Mood != "" {
		t.Fatalf("SetMood(-1): %q", st.Mood)
	}

	if !st.SetEnergy(forge.EnergyHigh) || st.Energy != forge.EnergyHigh {
		t.Fatalf("SetEnergy high: %q", st.Energy)
	}
	if st.SetEnergy("loud") || st.Energy != forge.EnergyHigh {
		t.Fatalf("SetEnergy loud changed energy to %q", st.Energy)
	}
}

func TestStoreIsolatesChatsAndUsers(t *testing.T) {
	s := NewStore()
	s.Update(1, 10, func(st *UIState) { st.Genre = "trap" })

	if got := s.Get(1, 11).Genre; got != "pop" {
		t.Fatalf("other user genre = %q", got)
	}
	if got := s.Get(2, 10).Genre; got != "pop" {
		t.Fatalf("other chat genre = %q", got)
	}
	if got := s.Get(1, 10).Genre; got != "trap" {
		t.Fatalf("genre = %q", got)
	}
}

func TestResetKeepsMessageID(t *testing.T) {
	s := NewStore()
	s.Update(1, 1, func(st *UIState) {
		st.MessageID = 42
		st.Genre = "metal"
		st.AwaitingTheme = true
		st.Menu = MenuGenre
	})

	st := s.Reset(1, 1)
	if st.MessageID != 42 || st.Genre != "pop" || st.AwaitingTheme || st.Menu != MenuMain {
		t.Fatalf("reset state = %+v", st)
	}
}

func TestAwaitingTheme(t *testing.T) {
	s := NewStore()
	if s.AwaitingTheme(1, 1) {
		t.Fatal("unknown user awaiting theme")
	}
	s.Update(1, 1, func(st *UIState) { st.AwaitingTheme = true })
	if !s.AwaitingTheme(1, 1) {
		t.Fatal("AwaitingTheme = false")
	}
}

func TestUpdateRestoresEmptyMenu(t *testing.T) {
	s := NewStore()
	st := s.Update(1, 1, func(st *UIState) { st.Menu = "" })
	if st.Menu != MenuMain {
		t.Fatalf("menu = %q", st.Menu)
	}
}

func TestMoodsReturnsCopy(t *testing.T) {
	m := Moods()
	m[0] = "changed"
	if Moods()[0] == "changed" {
		t.Fatal("Moods exposes internal slice")
	}
}
