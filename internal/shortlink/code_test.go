package shortlink

import (
	"errors"
	"strings"
	"testing"
)

func TestNextProducesUniqueCodes(t *testing.T) {
	gen, err := NewCodeGenerator()
	if err != nil {
		t.Fatalf("NewCodeGenerator: %v", err)
	}

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		code := gen.Next()
		if code == "" {
			t.Fatal("generated empty code")
		}
		if !CodeLooksValid(code) {
			t.Fatalf("generated code %q fails format rules", code)
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("generated duplicate code %q", code)
		}
		seen[code] = struct{}{}
	}
}

func TestEncodeBase62(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{9, "9"},
		{10, "a"},
		{35, "z"},
		{36, "A"},
		{61, "Z"},
		{62, "10"},
		{3844, "100"},
	}
	for _, tc := range cases {
		if got := encodeBase62(tc.in); got != tc.want {
			t.Errorf("encodeBase62(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateCustomCode(t *testing.T) {
	valid := []string{"promo", "promo-2026", "a_b-C9", "abcd"}
	for _, code := range valid {
		if err := ValidateCustomCode(code); err != nil {
			t.Errorf("ValidateCustomCode(%q) = %v, want nil", code, err)
		}
	}

	invalid := []string{
		"abc",
		strings.Repeat("x", 33),
		"has space",
		"slash/",
		"emojié",
		"shorturls",
		"healthz",
	}
	for _, code := range invalid {
		err := ValidateCustomCode(code)
		if !errors.Is(err, ErrInvalidCode) {
			t.Errorf("ValidateCustomCode(%q) = %v, want ErrInvalidCode", code, err)
		}
	}
}

func TestCodeLooksValid(t *testing.T) {
	if !CodeLooksValid("a") {
		t.Error("single character codes should look valid")
	}
	if CodeLooksValid("") {
		t.Error("empty string should not look valid")
	}
	if CodeLooksValid("bad code") {
		t.Error("spaces should not look valid")
	}
	if CodeLooksValid(strings.Repeat("y", 33)) {
		t.Error("over-long codes should not look valid")
	}
}
