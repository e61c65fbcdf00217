package common

import (
	"bytes"
	"io"

	"github.com/gin-gonic/gin"
)

const KeyRequestBody = "key_request_body"

// GetRequestBody reads the raw body once and caches it on the context so the
// validator and the credential resolver can both see it.
func GetRequestBody(c *gin.Context) ([]byte, error) {
	requestBody, _ := c.Get(KeyRequestBody)
	if requestBody != nil {
		return requestBody.([]byte), nil
	}
	requestBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	_ = c.Request.Body.Close()
	c.Set(KeyRequestBody, requestBody)
	c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody.([]byte)))
	return requestBody.([]byte), nil
}
