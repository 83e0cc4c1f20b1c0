// SPDX-License-Identifier: MIT

package validate

import (
	"strings"
	"testing"
)

func TestHostname(t *testing.T) {
	valid := []string{
		"a.com",
		"images.unsplash.com",
		"img.a.transfermarkt.technology",
		"localhost",
		"xn--bcher-kva.example",
		"a-b.c-d.example",
		"123.example.com",
	}
	for _, h := range valid {
		v := New()
		v.Hostname("domains", h)
		if !v.IsValid() {
			t.Errorf("expected %q to be a valid hostname: %v", h, v.Err())
		}
	}

	invalid := []string{
		"",
		"not a host!",
		"https://a.com",
		"a.com:8080",
		"a.com/path",
		"user@a.com",
		".a.com",
		"a..com",
		"a.com.",
		"-a.com",
		"a-.com",
		"*.example.com",
		strings.Repeat("a", 64) + ".com",
		strings.Repeat("a.", 130) + "com",
	}
	for _, h := range invalid {
		v := New()
		v.Hostname("domains", h)
		if v.IsValid() {
			t.Errorf("expected %q to be rejected", h)
		}
	}
}

func TestValidatorAccumulates(t *testing.T) {
	v := New()
	v.Hostname("domains", "bad host")
	v.Port("port", 0)
	v.Range("days", 99, 1, 14)

	if v.IsValid() {
		t.Fatal("expected validator to be invalid")
	}
	if got := len(v.Errors()); got != 3 {
		t.Fatalf("expected 3 errors, got %d", got)
	}

	err := v.Err()
	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if !strings.Contains(verr.Error(), "; ") {
		t.Errorf("expected joined error message, got %q", verr.Error())
	}
}

func TestValidatorErrNilWhenValid(t *testing.T) {
	v := New()
	v.Hostname("domains", "a.com")
	if err := v.Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestOneOf(t *testing.T) {
	v := New()
	v.OneOf("backend", "memory", []string{"memory", "badger", "redis"})
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}

	v = New()
	v.OneOf("backend", "bolt", []string{"memory", "badger", "redis"})
	if v.IsValid() {
		t.Fatal("expected unknown backend to be rejected")
	}
}

func TestParseLogLevel(t *testing.T) {
	if _, err := ParseLogLevel("info"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()

	v := New()
	v.Directory("dataDir", dir, true)
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}

	v = New()
	v.Directory("dataDir", dir+"/../escape", false)
	if v.IsValid() {
		t.Fatal("expected traversal to be rejected")
	}
}
