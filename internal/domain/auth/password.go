package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing these invalidates stored hashes, so
// they are fixed rather than configurable.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// hashPassword generates a salted Argon2id digest of the password,
// returning the hash and salt base64-encoded for storage.
func hashPassword(password string) (hash, salt string, err error) {
	rawSalt := make([]byte, saltLen)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", errors.Wrap(err, "generate salt")
	}

	key := argon2.IDKey([]byte(password), rawSalt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return base64.StdEncoding.EncodeToString(key),
		base64.StdEncoding.EncodeToString(rawSalt),
		nil
}

// verifyPassword re-derives the digest with the stored salt and
// compares in constant time.
func verifyPassword(password, salt, hash string) (bool, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false, errors.Wrap(err, "decode salt")
	}
	rawHash, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false, errors.Wrap(err, "decode hash")
	}

	key := argon2.IDKey([]byte(password), rawSalt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return subtle.ConstantTimeCompare(key, rawHash) == 1, nil
}
