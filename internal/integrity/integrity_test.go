package integrity

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDigestKnownValue(t *testing.T) {
	const abc = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Digest("ab", "c"); got != abc {
		t.Fatalf("Digest(ab, c)=%s, want %s", got, abc)
	}
	got := Digest("select 1", "salt")
	if got != Digest("select 1salt", "") {
		t.Fatalf("Digest() must hash text and salt with no separator")
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	queries := []string{"", "select 1", "select *\r\nfrom t\n", "select 'ä' from dual"}
	salts := []string{"s", "This salt is my secret!"}
	for _, q := range queries {
		for _, s := range salts {
			h := Digest(q, s)
			if got := Verify(q, &h, s); got != Valid {
				t.Fatalf("Verify(%q, %q)=%s, want valid", q, s, got)
			}
		}
	}
}

func TestVerifySingleByteFlip(t *testing.T) {
	q := "select * from t"
	s := "salt"
	h := Digest(q, s)

	if got := Verify("select * from u", &h, s); got != Mismatch {
		t.Fatalf("changed query: Verify()=%s, want mismatch", got)
	}
	if got := Verify(q, &h, "salu"); got != Mismatch {
		t.Fatalf("changed salt: Verify()=%s, want mismatch", got)
	}
	withNewline := h + "\n"
	if got := Verify(q, &withNewline, s); got != Mismatch {
		t.Fatalf("trailing newline: Verify()=%s, want mismatch", got)
	}
}

func TestVerifyMissing(t *testing.T) {
	if got := Verify("select 1", nil, "salt"); got != Missing {
		t.Fatalf("Verify()=%s, want missing", got)
	}
	if !errors.Is(Missing.Err(), ErrMissing) {
		t.Fatalf("Missing.Err()=%v", Missing.Err())
	}
	if Valid.Err() != nil {
		t.Fatalf("Valid.Err()=%v, want nil", Valid.Err())
	}
}

func TestVerifyDisabledBySalt(t *testing.T) {
	if got := Verify("drop table x", nil, ""); got != Valid {
		t.Fatalf("Verify() with empty salt=%s, want valid", got)
	}
	bogus := "not-a-hash"
	if got := Verify("select 1", &bogus, ""); got != Valid {
		t.Fatalf("Verify() with empty salt=%s, want valid", got)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.hash")

	got, err := ReadRecord(path)
	if err != nil {
		t.Fatalf("ReadRecord() err=%v", err)
	}
	if got != nil {
		t.Fatalf("ReadRecord() on missing file=%q, want nil", *got)
	}

	digest := Digest("select 1", "salt")
	if err := WriteRecord(path, digest); err != nil {
		t.Fatalf("WriteRecord() err=%v", err)
	}
	got, err = ReadRecord(path)
	if err != nil {
		t.Fatalf("ReadRecord() err=%v", err)
	}
	if got == nil || *got != digest {
		t.Fatalf("ReadRecord()=%v, want %s", got, digest)
	}
	if Verify("select 1", got, "salt") != Valid {
		t.Fatalf("record written by WriteRecord must verify")
	}
}
