package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6

	// CodeCharset is the room code alphabet. Ambiguous glyphs (0/O, 1/I)
	// are left out so codes survive being read aloud.
	CodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// ErrInvalidRoomCode reports a code that cannot have been generated here.
var ErrInvalidRoomCode = errors.New("invalid room code")

// GenerateRoomCode creates a random code players use to join a game room.
func GenerateRoomCode() (string, error) {
	charsetLength := big.NewInt(int64(len(CodeCharset)))
	var b strings.Builder
	b.Grow(CodeLength)

	for i := 0; i < CodeLength; i++ {
		idx, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			return "", err
		}
		b.WriteByte(CodeCharset[idx.Int64()])
	}
	return b.String(), nil
}

// NormalizeRoomCode uppercases user input and validates it against the code
// alphabet.
func NormalizeRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !IsValidRoomCode(code) {
		return "", ErrInvalidRoomCode
	}
	return code, nil
}

// IsValidRoomCode checks length and alphabet membership.
func IsValidRoomCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, char := range code {
		if !strings.ContainsRune(CodeCharset, char) {
			return false
		}
	}
	return true
}
