package snake

import (
	"errors"
	"strconv"
	"testing"
)

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"y": true, "Yes": true, "1": true, "no": false, "N": false, "false": false} {
		got, err := ParseBool(in)
		if err != nil || got != want {
			t.Fatalf("ParseBool(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseBool("maybe"); err == nil {
		t.Fatal("expected error for maybe")
	}
}

func TestRequired(t *testing.T) {
	if err := Required("  "); err == nil {
		t.Fatal("blank answer accepted")
	}
	if err := Required("Dentist"); err != nil {
		t.Fatalf("Required: %v", err)
	}
	var numErr *strconv.NumError
	if _, err := ParseBool("?"); !errors.As(err, &numErr) {
		t.Fatalf("ParseBool error = %v", err)
	}
}
