package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyHMAC(t *testing.T) {
	payload := []byte(`{"team":"platform"}`)
	sig := SignHMAC("s3cret", payload)

	assert.Len(t, sig, 64)
	assert.True(t, VerifyHMAC("s3cret", payload, sig))
	assert.True(t, VerifyHMAC("s3cret", payload, "sha256="+sig))
	assert.True(t, VerifyHMAC("s3cret", payload, strings.ToUpper(sig)))
	assert.False(t, VerifyHMAC("s3cret", payload, SignHMAC("other", payload)))
	assert.False(t, VerifyHMAC("s3cret", []byte(`{"team":"other"}`), sig))
	assert.False(t, VerifyHMAC("", payload, SignHMAC("", payload)))
	assert.False(t, VerifyHMAC("s3cret", payload, ""))
	assert.False(t, VerifyHMAC("s3cret", payload, "sha256="))
}
