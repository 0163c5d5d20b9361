package service

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// prehashPassword reduce la contraseña a un digest de tamaño fijo antes de
// bcrypt, que trunca entradas mayores a 72 bytes.
func prehashPassword(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// HashPassword genera un hash bcrypt con salt aleatorio sobre el pre-digest.
func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword(prehashPassword(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// VerifyPassword compara una contraseña en claro contra un hash almacenado.
// Aplica el mismo pre-digest que HashPassword.
func VerifyPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), prehashPassword(password)) == nil
}
