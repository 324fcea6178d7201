package password

import (
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Algorithm:            AlgorithmPBKDF2SHA512,
		Iterations:           2000,
		KeyLength:            32,
		SaltLength:           16,
		Legacy:               LegacyParams{Digest: "sha512", Iterations: 100},
		LegacyLibraryEnabled: true,
	}
}

func mustHasher(t *testing.T, cfg Config) *Hasher {
	t.Helper()
	h, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := mustHasher(t, testConfig())

	encoded, err := h.Hash("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "pbkdf2-sha512$2000$32$") {
		t.Fatalf("unexpected canonical prefix: %s", encoded)
	}
	if got := strings.Count(encoded, "$"); got != 4 {
		t.Fatalf("expected 5 segments, got %d separators", got)
	}

	out := h.Verify("P@ssw0rd-Ascii", encoded)
	if !out.Matched {
		t.Fatal("expected password verification to succeed")
	}
	if out.ShouldMigrate {
		t.Fatal("expected current-params credential to not need migration")
	}
	if out.Form != FormCanonical {
		t.Fatalf("expected canonical form, got %s", out.Form)
	}
}

func TestHashIsSalted(t *testing.T) {
	h := mustHasher(t, testConfig())

	a, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct encodings for repeated Hash calls")
	}
}

func TestHashRejectsEmptyAndOversized(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPasswordBytes = 8
	h := mustHasher(t, cfg)

	if _, err := h.Hash(""); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
	if _, err := h.Hash("123456789"); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	h := mustHasher(t, testConfig())

	encoded, err := h.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if h.Verify("wrong-password", encoded).Matched {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestVerifyUsesStoredParameters(t *testing.T) {
	old := testConfig()
	old.Algorithm = AlgorithmPBKDF2SHA256
	old.Iterations = 1000
	oldHasher := mustHasher(t, old)

	encoded, err := oldHasher.Hash("test-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	newHasher := mustHasher(t, testConfig())
	out := newHasher.Verify("test-password", encoded)
	if !out.Matched {
		t.Fatal("expected credential from older parameters to verify")
	}
	if !out.ShouldMigrate {
		t.Fatal("expected weaker parameters to request migration")
	}
	if !newHasher.NeedsUpgrade(encoded) {
		t.Fatal("expected NeedsUpgrade to return true for weaker hash parameters")
	}
}

func TestNeedsUpgradeParameterChanges(t *testing.T) {
	current := testConfig()
	h := mustHasher(t, current)

	stronger := current
	stronger.Iterations = current.Iterations * 2
	shorterKey := current
	shorterKey.KeyLength = 16
	longerSalt := current
	longerSalt.SaltLength = 32

	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "same", cfg: current, want: false},
		{name: "more iterations", cfg: stronger, want: false},
		{name: "different key length", cfg: shorterKey, want: true},
		{name: "longer salt", cfg: longerSalt, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := mustHasher(t, tc.cfg).Hash("pw")
			if err != nil {
				t.Fatalf("Hash error: %v", err)
			}
			if got := h.NeedsUpgrade(encoded); got != tc.want {
				t.Fatalf("NeedsUpgrade = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVerifyUnrecognizedNeverPanics(t *testing.T) {
	h := mustHasher(t, testConfig())

	inputs := []string{
		"",
		"not-a-valid-format",
		"pbkdf2-sha512$0$32$00112233445566778899aabbccddeeff$00",
		"pbkdf2-sha512$-1$32$00$00",
		"pbkdf2-sha512$99999999999$32$00$00",
		"pbkdf2-sha512$1000$0$00$",
		"pbkdf2-sha512$1000$4$zz$00112233",
		"pbkdf2-sha512$1000$8$0011$00112233",
		"pbkdf2-md5$1000$4$0011$00112233",
		"pbkdf2-sha512$1000$4$0011$00112233$extra",
		"abc.def",
		"abc.",
		".abc",
		"a.b.c",
		"0a1.0b",
		"$2b$10$short",
	}

	for _, in := range inputs {
		out := h.Verify("anything", in)
		if out.Matched || out.ShouldMigrate {
			t.Fatalf("Verify(%q) = %+v, want no match and no migration", in, out)
		}
		if out.Form != FormUnrecognized {
			t.Fatalf("Verify(%q) form = %s, want unrecognized", in, out.Form)
		}
	}
}

func TestNewHasherRejectsInvalidConfig(t *testing.T) {
	mutations := map[string]func(*Config){
		"unknown algorithm": func(c *Config) { c.Algorithm = "argon2id" },
		"low iterations":    func(c *Config) { c.Iterations = 10 },
		"short salt":        func(c *Config) { c.SaltLength = 8 },
		"short key":         func(c *Config) { c.KeyLength = 8 },
		"huge key":          func(c *Config) { c.KeyLength = MaxKeyLength + 1 },
		"legacy digest":     func(c *Config) { c.Legacy.Digest = "md5" },
		"legacy iterations": func(c *Config) { c.Legacy.Iterations = 0 },
	}

	for name, mutate := range mutations {
		cfg := testConfig()
		mutate(&cfg)
		if _, err := NewHasher(cfg); err == nil {
			t.Fatalf("%s: expected config validation error", name)
		}
	}
}

func TestVerifyOversizedPasswordNeverMatches(t *testing.T) {
	cfg := testConfig()
	h := mustHasher(t, cfg)
	long := strings.Repeat("x", DefaultMaxPasswordBytes+1)

	encoded := encodeCanonical(cfg.Algorithm, cfg.Iterations, []byte("0123456789abcdef"),
		make([]byte, cfg.KeyLength))
	if h.Verify(long, encoded).Matched {
		t.Fatal("expected oversized plaintext to never match")
	}
}

func TestDummyIgnoresPlaintextLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPasswordBytes = 1
	h := mustHasher(t, cfg)

	a, err := h.Dummy()
	if err != nil {
		t.Fatalf("Dummy error: %v", err)
	}
	b, err := h.Dummy()
	if err != nil {
		t.Fatalf("Dummy error: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct dummy credentials")
	}
	if cred := Classify(a); cred.Form != FormCanonical {
		t.Fatalf("expected canonical dummy, got %s", cred.Form)
	}
	if h.NeedsUpgrade(a) {
		t.Fatal("dummy must use current parameters")
	}
	if h.Verify("x", a).Matched {
		t.Fatal("dummy must not match a guessable password")
	}
}
