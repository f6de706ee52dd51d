package safeurl

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	// WHAT: http/https URLs with a host pass; other schemes and hostless
	// URLs fail with their sentinel.
	valid := []string{
		"http://www.example.com:8000/api/v1/prompts/",
		"https://prompt.example.org/api/prompts",
		"HTTP://UPPER.example.com/x",
	}
	for _, u := range valid {
		if err := Validate(u); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", u, err)
		}
	}

	if err := Validate("ftp://example.com/x"); !errors.Is(err, ErrUnsafeScheme) {
		t.Errorf("ftp: err = %v, want ErrUnsafeScheme", err)
	}
	if err := Validate("file:///etc/passwd"); !errors.Is(err, ErrUnsafeScheme) {
		t.Errorf("file: err = %v, want ErrUnsafeScheme", err)
	}
	if err := Validate("http://"); !errors.Is(err, ErrNoHost) {
		t.Errorf("hostless: err = %v, want ErrNoHost", err)
	}
	if err := Validate("not a url"); err == nil {
		t.Error("garbage should not validate")
	}
}
