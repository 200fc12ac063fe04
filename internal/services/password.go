package services

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a submitted password against the stored hash.
// Besides bcrypt it understands the MySQL PASSWORD() format the first
// deployment stored, so those accounts keep working until they are re-hashed.
type PasswordVerifier struct {
	AllowLegacy bool
}

// Verify reports whether password matches hash. legacy is true when the
// match was made against a MySQL native hash.
func (v PasswordVerifier) Verify(hash, password string) (legacy bool, err error) {
	switch {
	case isBcryptHash(hash):
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			return false, ErrInvalidCredentials
		}
		return false, nil
	case v.AllowLegacy && isMySQLNativeHash(hash):
		want := MySQLNativeHash(password)
		if subtle.ConstantTimeCompare([]byte(strings.ToUpper(hash)), []byte(want)) != 1 {
			return false, ErrInvalidCredentials
		}
		return true, nil
	default:
		return false, ErrInvalidCredentials
	}
}

// HashPassword returns the bcrypt hash to store in usuarios.senha
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// MySQLNativeHash computes MySQL's PASSWORD(): "*" + HEX(SHA1(SHA1(pw))).
func MySQLNativeHash(password string) string {
	first := sha1.Sum([]byte(password))
	second := sha1.Sum(first[:])
	return "*" + strings.ToUpper(hex.EncodeToString(second[:]))
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func isMySQLNativeHash(hash string) bool {
	if len(hash) != 41 || hash[0] != '*' {
		return false
	}
	_, err := hex.DecodeString(hash[1:])
	return err == nil
}
