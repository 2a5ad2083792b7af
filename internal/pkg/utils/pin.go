package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// PINLength 分享链接 PIN 码的位数
const PINLength = 4

// GeneratePIN 生成一个均匀分布的4位数字 PIN(允许前导零)
// 必须使用密码学安全的随机源，math/rand 不可用于此处
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random PIN: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// IsValidPIN 检查 PIN 是否恰好为4位 ASCII 数字
func IsValidPIN(pin string) bool {
	if len(pin) != PINLength {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
