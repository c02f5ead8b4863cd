// utils/http.go - Shared outbound HTTP client
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the client for calls to external collaborators (the
// repository-hosting API). Always carries a timeout so a slow upstream
// cannot pin a request handler.
var HTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}
