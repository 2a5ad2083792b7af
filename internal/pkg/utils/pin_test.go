package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePIN(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		pin, err := GeneratePIN()
		require.NoError(t, err)
		require.Len(t, pin, PINLength)
		assert.True(t, IsValidPIN(pin), "生成的 PIN 不合法: %q", pin)
		seen[pin] = true
	}
	// 200 次生成不应该全部撞在同一个值上
	assert.Greater(t, len(seen), 1)
}

func TestIsValidPIN(t *testing.T) {
	valid := []string{"0000", "1234", "9999", "0042"}
	for _, pin := range valid {
		assert.True(t, IsValidPIN(pin), "应当合法: %q", pin)
	}

	invalid := []string{"", "123", "12345", "12a4", "abcd", " 123", "12.4", "１２３４"}
	for _, pin := range invalid {
		assert.False(t, IsValidPIN(pin), "应当不合法: %q", pin)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("4821")
	require.NoError(t, err)
	assert.NotEqual(t, "4821", hash)

	assert.True(t, CheckPasswordHash("4821", hash))
	assert.False(t, CheckPasswordHash("4822", hash))
	assert.False(t, CheckPasswordHash("", hash))
}
