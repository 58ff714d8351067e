package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString returns a short stable digest used for cache key derivation.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}
