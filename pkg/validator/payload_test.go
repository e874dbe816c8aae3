package validator

import (
	"strings"
	"testing"
)

func TestDecodePayload(t *testing.T) {
	decodedHex, err := DecodePayload("0xdeadbeef", PayloadEncodingHex)
	if err != nil {
		t.Fatalf("decode hex failed: %v", err)
	}
	if len(decodedHex) != 4 {
		t.Fatalf("hex decode len=%d, want 4", len(decodedHex))
	}

	if _, err := DecodePayload("3q2+7w==", PayloadEncodingBase64); err != nil {
		t.Fatalf("decode base64 failed: %v", err)
	}

	raw, err := DecodePayload(`{"from":"0x01"}`, PayloadEncodingJSON)
	if err != nil || string(raw) != `{"from":"0x01"}` {
		t.Fatalf("json passthrough failed: %v %q", err, raw)
	}

	if _, err := DecodePayload("zzz", PayloadEncodingHex); err == nil {
		t.Fatal("expected error for invalid hex")
	}
	if _, err := DecodePayload("", PayloadEncodingJSON); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, err := DecodePayload(strings.Repeat("a", MaxPayloadBytes+1), PayloadEncodingJSON); err == nil {
		t.Fatal("expected error for oversized payload")
	}
}

func TestNormalizeEncoding(t *testing.T) {
	for _, raw := range []string{"", "json", "hex", "HEX", "base64"} {
		if _, err := NormalizeEncoding(raw); err != nil {
			t.Fatalf("normalize %q failed: %v", raw, err)
		}
	}
	if _, err := NormalizeEncoding("unknown"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x00000000000000000000000000000000000000aa")
	if err != nil {
		t.Fatalf("parse address failed: %v", err)
	}
	if addr[19] != 0xaa {
		t.Fatalf("unexpected address %s", addr.Hex())
	}
	if _, err := ParseAddress("0x1234"); err == nil {
		t.Fatal("expected error for short address")
	}
}
