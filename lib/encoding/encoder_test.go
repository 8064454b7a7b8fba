package encoding

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeSigned(t *testing.T) {
	enc, err := NewEncoder([]byte("short key"))
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	fields := map[string]any{"r": "HuntForm", "i": 3}
	encoded, err := enc.Encode(fields, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(encoded, ".") {
		t.Errorf("signed encoding missing signature separator: %q", encoded)
	}

	got, err := enc.Decode(encoded, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got["r"] != "HuntForm" {
		t.Errorf("r = %v", got["r"])
	}
}

func TestEncodeDecodeEncrypted(t *testing.T) {
	enc, err := NewEncoder([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	encoded, err := enc.Encode(map[string]any{"s": "C.1234"}, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(encoded, "C.1234") {
		t.Error("encrypted payload leaks plaintext")
	}

	got, err := enc.Decode(encoded, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got["s"] != "C.1234" {
		t.Errorf("s = %v", got["s"])
	}

	// Two encryptions of the same payload must not collide (random nonce).
	again, _ := enc.Encode(map[string]any{"s": "C.1234"}, true)
	if again == encoded {
		t.Error("nonce reuse: identical ciphertexts for the same payload")
	}
}

func TestDecodeErrors(t *testing.T) {
	enc, _ := NewEncoder([]byte("key"))
	signed, _ := enc.Encode(map[string]any{"r": "X"}, false)

	parts := strings.SplitN(signed, ".", 2)
	forged := parts[0] + "." + strings.Repeat("A", len(parts[1]))

	tests := []struct {
		name      string
		encoded   string
		sensitive bool
		want      error
	}{
		{"no separator", "payloadonly", false, ErrInvalidFormat},
		{"bad base64", "!!!.!!!", false, ErrInvalidFormat},
		{"forged signature", forged, false, ErrSignatureInvalid},
		{"short ciphertext", "AAAA", true, ErrInvalidFormat},
		{"undecryptable", strings.Repeat("A", 64), true, ErrDecryptFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := enc.Decode(tt.encoded, tt.sensitive); !errors.Is(err, tt.want) {
				t.Errorf("Decode(%q) = %v, want %v", tt.encoded, err, tt.want)
			}
		})
	}
}

func TestDecodeCrossMode(t *testing.T) {
	enc, _ := NewEncoder([]byte("key"))
	signed, _ := enc.Encode(map[string]any{"r": "X"}, false)

	if _, err := enc.Decode(signed, true); err == nil {
		t.Error("signed payload decoded as encrypted")
	}
}
