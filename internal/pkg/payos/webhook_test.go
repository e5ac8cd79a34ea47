package payos

import "testing"

func TestVerifySignature(t *testing.T) {
	key := "test-checksum-key"
	payload := []byte(`{"orderCode":123,"amount":550000}`)

	sig := GenerateSignature(payload, key)
	if sig == "" {
		t.Fatal("expected non-empty signature")
	}

	if !VerifySignature(payload, sig, key) {
		t.Fatal("expected signature to verify")
	}

	if VerifySignature(payload, sig, "wrong-key") {
		t.Fatal("expected verification to fail with wrong key")
	}

	if VerifySignature([]byte(`tampered`), sig, key) {
		t.Fatal("expected verification to fail for tampered payload")
	}

	if VerifySignature(payload, "not-hex", key) {
		t.Fatal("expected verification to fail for malformed signature")
	}

	if VerifySignature(payload, "", key) || VerifySignature(payload, sig, "") {
		t.Fatal("expected verification to fail for empty inputs")
	}
}

func TestTruncateDescription(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"exactly twenty-five chars", "exactly twenty-five chars"},
		{"this description is definitely too long for the gateway", "this description is defin"},
		{"mua tài khoản #42", "mua ti khon #42"}, // non-ASCII stripped
	}
	for _, c := range cases {
		got := TruncateDescription(c.in)
		if got != c.want {
			t.Errorf("TruncateDescription(%q) = %q, want %q", c.in, got, c.want)
		}
		if len(got) > MaxDescriptionLen {
			t.Errorf("TruncateDescription(%q) exceeds limit: %d", c.in, len(got))
		}
	}
}
