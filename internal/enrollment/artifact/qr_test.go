package artifact

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestNativeQR_Encode(t *testing.T) {
	enc := NewNativeQR(200)

	data, err := enc.Encode(context.Background(), "otpauth://totp/alice@example?secret=JBSWY3DPEHPK3PXP")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("output is not a PNG, starts with %x", data[:4])
	}
}

func TestNativeQR_RejectsBadURI(t *testing.T) {
	enc := NewNativeQR(200)

	if _, err := enc.Encode(context.Background(), "://not a uri"); !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}
