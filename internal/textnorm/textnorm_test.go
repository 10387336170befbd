package textnorm

import "testing"

func TestNormalizeKnownConfusions(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ATMEGA3282", "ATMEGA328P"},
		{"NESSSP", "NE555P"},
		{"LMSSSN", "LM556N"},
		{"ATMECA328P", "ATMEGA328P"},
		{"5TM32F103", "STM32F103"},
		{"LM3O8N", "LM308N"},
		{"74LSO4", "74LS04"},
		{"CY8C2S666", "CY8C25666"},
		{"PIC16F8I8", "PIC16F818"},
		{"atmega3282", "ATMEGA328P"}, // lowercase input is uppercased first
		{"NE555P", "NE555P"},         // already-correct markings untouched
		{"LM556N", "LM556N"},
	}

	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"ATMEGA3282",
		"NESSSP",
		"LMSSSN",
		"ATMECA3282",
		"1S2S3", // overlapping digit-context matches need the fixpoint loop
		"4O0O4",
		"5TM32F1O3",
		"DS13O7",
		"CY8C29666-24PVXI",
		"random text with no confusions",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizeOverlappingRuns(t *testing.T) {
	// Non-overlapping regexp replacement would leave the middle S behind.
	if got := Normalize("1S2S3"); got != "15253" {
		t.Errorf("Normalize(1S2S3) = %q, want 15253", got)
	}
}
