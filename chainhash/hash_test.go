package chainhash

import "testing"

func TestSHA256dKnownVector(t *testing.T) {
	// SHA256d("") = sha256(sha256(""))
	got := SHA256d(nil)
	want := Hash256{
		0x5d, 0xf6, 0xe0, 0xe2, 0x76, 0x13, 0x59, 0xd3,
		0x0a, 0x82, 0x75, 0x05, 0x8e, 0x29, 0x9f, 0xcc,
		0x03, 0x81, 0x53, 0x45, 0x45, 0xf5, 0x5c, 0xf4,
		0x3e, 0x41, 0x98, 0x3f, 0x5d, 0x4c, 0x94, 0x56,
	}
	if got != want {
		t.Fatalf("SHA256d(nil) = %x, want %x", got, want)
	}
}

func TestPrefixOf(t *testing.T) {
	var h Hash256
	for i := range h {
		h[i] = byte(i)
	}
	p := PrefixOf(h)
	if len(p) != PrefixLen {
		t.Fatalf("prefix length = %d, want %d", len(p), PrefixLen)
	}
	for i := 0; i < PrefixLen; i++ {
		if p[i] != byte(i) {
			t.Fatalf("prefix[%d] = %x, want %x", i, p[i], i)
		}
	}
}

func TestScriptHashOfDeterministic(t *testing.T) {
	a := ScriptHashOf([]byte{0x76, 0xa9, 0x14})
	b := ScriptHashOf([]byte{0x76, 0xa9, 0x14})
	if a != b {
		t.Fatalf("ScriptHashOf not deterministic: %x != %x", a, b)
	}
	c := ScriptHashOf([]byte{0x00})
	if a == c {
		t.Fatalf("ScriptHashOf collided for distinct inputs")
	}
}

func TestIsZero(t *testing.T) {
	var zero Hash256
	if !zero.IsZero() {
		t.Fatal("zero hash should report IsZero")
	}
	nonzero := Hash256{1}
	if nonzero.IsZero() {
		t.Fatal("non-zero hash should not report IsZero")
	}
}
