package theme

import "testing"

func TestCounterpartsPairUp(t *testing.T) {
	for _, th := range All {
		other, ok := Lookup(th.Counterpart)
		if !ok {
			t.Fatalf("%s: counterpart %q is not a theme", th.Name, th.Counterpart)
		}
		if other.Counterpart != th.Name {
			t.Fatalf("%s -> %s -> %s, want round trip", th.Name, other.Name, other.Counterpart)
		}
		if th.Name != other.Name && th.Dark == other.Dark {
			t.Fatalf("%s and %s have the same brightness", th.Name, other.Name)
		}
	}
}

func TestToggle(t *testing.T) {
	defer SetActive(FlexokiDark.Name)

	SetActive("flexoki-dark")
	if got := Toggle(); got != "flexoki-light" {
		t.Fatalf("Toggle() = %q, want flexoki-light", got)
	}
	if got := Toggle(); got != "flexoki-dark" {
		t.Fatalf("Toggle() = %q, want flexoki-dark", got)
	}

	SetActive("terminal")
	if got := Toggle(); got != "terminal" {
		t.Fatalf("terminal Toggle() = %q, want terminal", got)
	}
}

func TestLegacyNames(t *testing.T) {
	if got := ByName("light").Name; got != "flexoki-light" {
		t.Fatalf("ByName(light) = %q", got)
	}
	if got := ByName(" Dark ").Name; got != "flexoki-dark" {
		t.Fatalf("ByName(Dark) = %q", got)
	}
	if got := ByName("no-such-theme").Name; got != "flexoki-dark" {
		t.Fatalf("ByName(unknown) = %q, want default", got)
	}
}
