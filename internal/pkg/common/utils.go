package common

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// HashBytes 計算 SHA-256 哈希，回傳十六進位字串
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashString 計算字串的 SHA-256 哈希
func HashString(s string) string {
	return HashBytes([]byte(s))
}
