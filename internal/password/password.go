package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	hashTime    uint32 = 3
	hashMemory  uint32 = 64 * 1024
	hashThreads uint8  = 2
	hashKeyLen  uint32 = 32
	hashSaltLen        = 16
)

var errInvalidHash = errors.New("invalid password hash")

// Hasher produces and checks argon2id password hashes. The salt and cost
// parameters are embedded in the encoded hash string, so no out-of-band
// salt storage is needed.
type Hasher struct{}

// NewHasher returns a Hasher with the package cost parameters.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Hash returns an argon2id hash string including parameters and salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(plaintext), salt, hashTime, hashMemory, hashThreads, hashKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemory,
		hashTime,
		hashThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify checks a plaintext password against an encoded argon2id hash.
// A malformed stored hash verifies as false rather than erroring, so a
// corrupted record can never be mistaken for a credential match.
func (h *Hasher) Verify(plaintext, encoded string) bool {
	salt, expected, mem, timeCost, threads, err := decodeHash(encoded)
	if err != nil {
		return false
	}
	actual := argon2.IDKey([]byte(plaintext), salt, timeCost, mem, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

func decodeHash(encoded string) (salt, sum []byte, mem, timeCost uint32, threads uint8, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, errInvalidHash
	}

	version, err := parseVersion(parts[2])
	if err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, errInvalidHash
	}

	mem, timeCost, threads, err = parseParams(parts[3])
	if err != nil {
		return nil, nil, 0, 0, 0, errInvalidHash
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, errInvalidHash
	}

	sum, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(sum) == 0 {
		return nil, nil, 0, 0, 0, errInvalidHash
	}

	return salt, sum, mem, timeCost, threads, nil
}

func parseVersion(value string) (int, error) {
	if !strings.HasPrefix(value, "v=") {
		return 0, errInvalidHash
	}
	return strconv.Atoi(strings.TrimPrefix(value, "v="))
}

func parseParams(value string) (uint32, uint32, uint8, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return 0, 0, 0, errInvalidHash
	}

	mem, err := parseUint32Param(parts[0], "m=")
	if err != nil {
		return 0, 0, 0, errInvalidHash
	}
	timeCost, err := parseUint32Param(parts[1], "t=")
	if err != nil {
		return 0, 0, 0, errInvalidHash
	}
	threadsVal, err := parseUint32Param(parts[2], "p=")
	if err != nil || threadsVal == 0 || threadsVal > 255 {
		return 0, 0, 0, errInvalidHash
	}
	return mem, timeCost, uint8(threadsVal), nil
}

func parseUint32Param(value, prefix string) (uint32, error) {
	if !strings.HasPrefix(value, prefix) {
		return 0, errInvalidHash
	}
	parsed, err := strconv.ParseUint(strings.TrimPrefix(value, prefix), 10, 32)
	if err != nil {
		return 0, errInvalidHash
	}
	return uint32(parsed), nil
}
