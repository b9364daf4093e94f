package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	code, err := GenerateRoomCode()
	require.NoError(t, err)
	assert.Len(t, code, CodeLength)
	assert.True(t, IsValidRoomCode(code))

	for _, char := range code {
		assert.True(t, strings.ContainsRune(CodeCharset, char),
			"character %q not in charset", char)
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	code, err := NormalizeRoomCode(" abcdef ")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF", code)

	_, err = NormalizeRoomCode("AB01IO")
	assert.ErrorIs(t, err, ErrInvalidRoomCode)

	_, err = NormalizeRoomCode("TOOSHORT")
	assert.ErrorIs(t, err, ErrInvalidRoomCode)
}

func TestIsValidRoomCode(t *testing.T) {
	assert.True(t, IsValidRoomCode("ABCDEF"))
	assert.False(t, IsValidRoomCode("ABCDE"))
	assert.False(t, IsValidRoomCode("ABCDE0"))
	assert.False(t, IsValidRoomCode("abcdef"))
}
