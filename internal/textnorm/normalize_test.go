package textnorm

import "testing"

func TestNormalizeFoldsCaseAndDiacritics(t *testing.T) {
	want := "brasov"
	for _, input := range []string{"Brașov", "brasov", "BRAŞOV", "  Brașov  ", "BRAȘOV", "Braşov"} {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeRomanianLetters(t *testing.T) {
	cases := map[string]string{
		"Țară":     "tara",
		"ţară":     "tara",
		"Pâine":    "paine",
		"Înghețată": "inghetata",
		"café":     "cafe",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"", " ", "Brașov", "a ́", "09/06/2024", "McDonald's", "ÎNCEPE Provocarea!", "İstanbul"}
	for _, input := range inputs {
		once := Normalize(input)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestEqualKeepsDatesLiteral(t *testing.T) {
	if !Equal("09/06/2024", " 09/06/2024 ") {
		t.Fatalf("expected whitespace-insensitive match")
	}
	if Equal("9/6/2024", "09/06/2024") {
		t.Fatalf("dates must not be compared semantically")
	}
}
