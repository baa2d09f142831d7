package ai

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// SignHMAC returns the hex sha256 HMAC of payload
func SignHMAC(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC checks a trigger signature. The header value may carry a
// "sha256=" prefix and upper-case hex.
func VerifyHMAC(secret string, payload []byte, signature string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	signature = strings.TrimPrefix(signature, signaturePrefix)
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(SignHMAC(secret, payload)), []byte(signature))
}
