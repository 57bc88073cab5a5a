// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// PlayerClient is the shared client for calling player endpoints. The timeout
// bounds one question/answer exchange; a slower player is classified as
// NO_SERVER_RESPONSE.
var PlayerClient = &http.Client{
	Timeout: 5 * time.Second,
}
