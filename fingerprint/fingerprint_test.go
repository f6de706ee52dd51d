package fingerprint

import (
	"regexp"
	"testing"
)

func TestFingerprint_WhitespaceInsensitive(t *testing.T) {
	// WHAT: Layout-only differences map to the same fingerprint.
	// WHY: Catalogs reformat the same prompt; dedup must still collapse them.
	variants := []string{
		" a b ",
		"ab",
		"a\tb",
		"a\n\nb",
		"　a b　", // ideographic space
	}
	want := Fingerprint("ab")
	for _, v := range variants {
		if got := Fingerprint(v); got != want {
			t.Errorf("Fingerprint(%q) = %s, want %s", v, got, want)
		}
	}
}

func TestFingerprint_DistinctContent(t *testing.T) {
	// WHAT: Different stripped content yields different fingerprints.
	// WHY: A collision across distinct prompts would silently merge them.
	pairs := [][2]string{
		{"hello world", "hello worlds"},
		{"", "x"},
		{"写作助手", "翻译助手"},
	}
	for _, p := range pairs {
		if Fingerprint(p[0]) == Fingerprint(p[1]) {
			t.Errorf("Fingerprint(%q) == Fingerprint(%q), want distinct", p[0], p[1])
		}
	}
}

func TestFingerprint_Format(t *testing.T) {
	// WHAT: The fingerprint is 64 lowercase hex characters.
	// WHY: Blacklist files and prior-output hashes compare it as a string.
	got := Fingerprint("hello world")
	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(got) {
		t.Errorf("fingerprint %q is not 64 lowercase hex chars", got)
	}
}

func TestStrip(t *testing.T) {
	// WHAT: Strip removes every Unicode whitespace rune, nothing else.
	if got := Strip(" 你 好\tworld\n"); got != "你好world" {
		t.Errorf("Strip = %q", got)
	}
	if got := Strip(""); got != "" {
		t.Errorf("Strip empty = %q", got)
	}
}
