package hash

import "testing"

func TestFingerprint(t *testing.T) {
	// echo -n "abc" | sha256sum
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Fingerprint([]byte("abc")); got != want {
		t.Errorf("Fingerprint(abc) = %s; want %s", got, want)
	}
}

func TestShort(t *testing.T) {
	a := Short("restaurant lalala")
	b := Short("restaurant lalala")
	c := Short("coiffeur owendo")

	if len(a) != 16 {
		t.Fatalf("expected 16 hex chars, got %d", len(a))
	}
	if a != b {
		t.Error("expected identical input to produce identical hash")
	}
	if a == c {
		t.Error("expected different input to produce different hash")
	}
}

func TestSum128_Halves(t *testing.T) {
	h1, h2 := Sum128([]byte("gabon"))
	g1, g2 := Sum128([]byte("gabon"))
	if h1 != g1 || h2 != g2 {
		t.Error("expected murmur3 digest to be deterministic")
	}
	if h1 == h2 {
		t.Error("expected distinct halves")
	}
}
