package token

import (
	"errors"
	"strings"
	"testing"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     "15m",
		RefreshTTL:    "168h",
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec
}

func TestMintVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	for _, kind := range []Kind{KindAccess, KindRefresh} {
		minted, err := codec.Mint(42, 7, kind)
		if err != nil {
			t.Fatalf("Mint(%s): %v", kind, err)
		}

		userID, version, err := codec.Verify(minted, kind)
		if err != nil {
			t.Fatalf("Verify(%s): %v", kind, err)
		}
		if userID != 42 || version != 7 {
			t.Fatalf("Verify(%s) = (%d, %d), want (42, 7)", kind, userID, version)
		}
	}
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	codec := newTestCodec(t)

	minted, err := codec.Mint(1, 0, KindAccess)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if _, _, err := codec.Verify(minted, KindRefresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for cross-kind verify, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	codec := newTestCodec(t)

	minted, err := codec.Mint(1, 0, KindRefresh)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	// Flip a byte inside the signature segment.
	idx := strings.LastIndex(minted, ".") + 1
	sig := []byte(minted[idx:])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := minted[:idx] + string(sig)

	if _, _, err := codec.Verify(tampered, KindRefresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	codec, err := NewCodec(Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     "-1m",
		RefreshTTL:    "168h",
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	minted, err := codec.Mint(1, 0, KindAccess)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if _, _, err := codec.Verify(minted, KindAccess); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := newTestCodec(t)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, _, err := codec.Verify(input, KindAccess); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", input, err)
		}
	}
}

func TestMintPairSharesSubjectAndVersion(t *testing.T) {
	codec := newTestCodec(t)

	pair, err := codec.MintPair(9, 3)
	if err != nil {
		t.Fatalf("MintPair: %v", err)
	}

	accessID, accessVersion, err := codec.Verify(pair.AccessToken, KindAccess)
	if err != nil {
		t.Fatalf("Verify access: %v", err)
	}
	refreshID, refreshVersion, err := codec.Verify(pair.RefreshToken, KindRefresh)
	if err != nil {
		t.Fatalf("Verify refresh: %v", err)
	}

	if accessID != refreshID || accessVersion != refreshVersion {
		t.Fatalf("pair mismatch: access (%d, %d) vs refresh (%d, %d)",
			accessID, accessVersion, refreshID, refreshVersion)
	}
}

func TestNewCodecValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing access secret", Config{RefreshSecret: "r", AccessTTL: "15m", RefreshTTL: "168h"}},
		{"missing refresh secret", Config{AccessSecret: "a", AccessTTL: "15m", RefreshTTL: "168h"}},
		{"identical secrets", Config{AccessSecret: "same", RefreshSecret: "same", AccessTTL: "15m", RefreshTTL: "168h"}},
		{"bad access ttl", Config{AccessSecret: "a", RefreshSecret: "r", AccessTTL: "soon", RefreshTTL: "168h"}},
		{"bad refresh ttl", Config{AccessSecret: "a", RefreshSecret: "r", AccessTTL: "15m", RefreshTTL: "later"}},
	}

	for _, tc := range cases {
		if _, err := NewCodec(tc.cfg); !errors.Is(err, ErrMisconfigured) {
			t.Fatalf("%s: expected ErrMisconfigured, got %v", tc.name, err)
		}
	}
}
