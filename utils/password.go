// Package password provides one-way password hashing and verification.
package password

import "golang.org/x/crypto/bcrypt"

// Hash hashes a plaintext password with bcrypt. The returned hash embeds
// its own salt and cost, so verification needs no side channel.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the stored hash.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
