package hasher

import (
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func TestSum(t *testing.T) {
	data := []byte("squeeze")

	full := Sum(data, 0)
	if len(full) != 16 {
		t.Fatalf("len(full) = %d, want 16", len(full))
	}
	if Sum(data, 32) != full {
		t.Error("hexLen beyond 16 should return the full hash")
	}
	if got := Sum(data, ShortLen); got != full[:ShortLen] {
		t.Errorf("Sum(ShortLen) = %q, want %q", got, full[:ShortLen])
	}
	if Sum([]byte("squeezf"), 0) == full {
		t.Error("different input produced the same hash")
	}
}

func TestSum_BigEndian(t *testing.T) {
	// xxhash64 of the empty input.
	if got, want := xxhash.Sum64(nil), uint64(0xef46db3751d8e999); got != want {
		t.Fatalf("xxhash.Sum64(nil) = %x", got)
	}
	if got := Sum(nil, 0); got != "ef46db3751d8e999" {
		t.Errorf("Sum(nil) = %q", got)
	}
}

func TestSumReader(t *testing.T) {
	data := strings.Repeat("pixels", 10000)
	got, err := SumReader(strings.NewReader(data), 12)
	if err != nil {
		t.Fatal(err)
	}
	if want := Sum([]byte(data), 12); got != want {
		t.Errorf("SumReader = %q, Sum = %q", got, want)
	}
}
