package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a customer or mechanic password with the
// configured cost.  A cost outside bcrypt's valid range falls back to
// bcrypt.DefaultCost so a misconfigured BCRYPT_COST can never produce
// weak hashes.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// It never distinguishes "wrong password" from "malformed hash"; login
// handlers treat both as invalid credentials.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
