package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_Format(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("Hash should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash should have 6 parts, got: %d", len(parts))
	}
	if parts[3] != "m=65536,t=3,p=4" {
		t.Errorf("Expected m=65536,t=3,p=4, got: %s", parts[3])
	}
	if strings.Contains(hash, "secret1") {
		t.Error("Hash must not contain the plaintext")
	}
}

func TestHashPassword_Uniqueness(t *testing.T) {
	t.Parallel()

	password := "the_same_pw"

	hash1, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	// Fresh salt per call
	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}

	match1, _ := VerifyPassword(password, hash1)
	match2, _ := VerifyPassword(password, hash2)
	if !match1 || !match2 {
		t.Error("Both hashes should verify correctly")
	}
}

func TestVerifyPassword_Argon2(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	match, err := VerifyPassword("secret1", hash)
	if err != nil || !match {
		t.Errorf("Correct password should match, got match=%v err=%v", match, err)
	}

	match, err = VerifyPassword("secret2", hash)
	if err != nil {
		t.Fatalf("VerifyPassword should not return error for wrong password: %v", err)
	}
	if match {
		t.Error("Wrong password should not match")
	}
}

func TestVerifyPassword_Bcrypt(t *testing.T) {
	t.Parallel()

	raw, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}

	match, err := VerifyPassword("secret1", string(raw))
	if err != nil || !match {
		t.Errorf("bcrypt hash should verify, got match=%v err=%v", match, err)
	}

	match, err = VerifyPassword("wrong-pw", string(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match {
		t.Error("Wrong password should not match bcrypt hash")
	}
}

func TestPasswordHasher_Algorithms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		hasher *PasswordHasher
		prefix string
	}{
		{"argon2id", NewArgon2Hasher(), "$argon2id$"},
		{"bcrypt", NewBcryptHasher(bcrypt.MinCost), "$2a$"},
		{"bcrypt invalid cost falls back", NewBcryptHasher(99), "$2a$10$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash, err := tt.hasher.Hash("secret1")
			if err != nil {
				t.Fatalf("Hash failed: %v", err)
			}
			if !strings.HasPrefix(hash, tt.prefix) {
				t.Errorf("hash %q should start with %q", hash, tt.prefix)
			}

			ok, err := tt.hasher.Verify("secret1", hash)
			if err != nil || !ok {
				t.Errorf("Verify should succeed, got ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong format", "not-a-hash", ErrInvalidHash},
		{"wrong algorithm", "$scrypt$v=19$m=65536,t=3,p=4$salt$hash", ErrInvalidHash},
		{"missing parts", "$argon2id$v=19$m=65536", ErrInvalidHash},
		{"wrong part count", "$argon2id$v=19", ErrInvalidHash},
		{"truncated bcrypt", "$2a$10$short", ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := VerifyPassword("password", tt.hash)
			if err != tt.wantErr {
				t.Errorf("VerifyPassword with %q error = %v, want %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestVerifyPassword_WrongVersion(t *testing.T) {
	t.Parallel()

	invalidVersionHash := "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJl"

	match, err := VerifyPassword("password", invalidVersionHash)
	if err != ErrIncompatibleVersion {
		t.Errorf("Expected ErrIncompatibleVersion, got: %v", err)
	}
	if match {
		t.Error("Should not match with incompatible version")
	}
}
