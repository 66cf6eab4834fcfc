package caption

import (
	"strings"
	"testing"
)

func TestFallbackUsesDescription(t *testing.T) {
	if got := Fallback("Суп", "Горячий суп"); got != "Горячий суп" {
		t.Fatalf("got %q", got)
	}
}

func TestFallbackFallsBackToTitle(t *testing.T) {
	if got := Fallback("Суп", "   "); got != "Суп" {
		t.Fatalf("got %q", got)
	}
}

func TestFallbackTruncatesLongText(t *testing.T) {
	long := strings.Repeat("о", 500)
	got := Fallback("T", long)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
	if n := len([]rune(got)); n > fallbackMaxRunes+1 {
		t.Fatalf("too long: %d runes", n)
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	a := Fallback("Soup", "Hot soup")
	b := Fallback("Soup", "Hot soup")
	if a != b || a == "" {
		t.Fatalf("got %q and %q", a, b)
	}
}
