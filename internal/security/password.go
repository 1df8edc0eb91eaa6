package security

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plain text password with bcrypt. The salt is freshly
// generated per call, so hashing the same password twice yields different digests.
func HashPassword(plain string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return nil, err
	}

	return hash, nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash []byte, plain string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain))
}

// dummyHash is compared against when no record matches an email, so the
// lookup-miss path costs the same as a wrong password and does not leak
// which emails exist.
var dummyHash []byte

func init() {
	h, err := bcrypt.GenerateFromPassword([]byte("decoy"), bcrypt.DefaultCost)

	if err != nil {
		panic(err)
	}

	dummyHash = h
}

func CheckDummyPassword(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
