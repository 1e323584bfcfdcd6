package checksum

import "testing"

func TestSHA256(t *testing.T) {
	got := SHA256([]byte("hello"))
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Fatalf("SHA256(%q) = %s, want %s", "hello", got, want)
	}
}

func TestVerifySuccess(t *testing.T) {
	data := []byte("archive contents")
	digest := SHA256(data)
	actual, err := Verify(data, nil, digest, digest)
	if err != nil {
		t.Fatal(err)
	}
	if actual != digest {
		t.Fatalf("got %s, want %s", actual, digest)
	}
}

func TestVerifyExpectedMismatch(t *testing.T) {
	data := []byte("archive contents")
	_, err := Verify(data, nil, "deadbeef", "")
	if err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestVerifyAdvertisedMismatch(t *testing.T) {
	data := []byte("archive contents")
	_, err := Verify(data, nil, "", "deadbeef")
	if err == nil {
		t.Fatal("expected mismatch error")
	}
}
