package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Hub-Signature-256"

// SignatureMiddleware validates the X-Hub-Signature-256 header as an
// HMAC-SHA256 of the raw body. An empty secret disables the check.
func SignatureMiddleware(appSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if appSecret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
			c.Abort()
			return
		}
		// Restore the body for the handler.
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		signature := c.GetHeader(signatureHeader)
		if !verifySignature(body, signature, appSecret) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func verifySignature(payload []byte, signature, secret string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(signature, prefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := prefix + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}
