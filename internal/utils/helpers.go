// Package utils provides utility functions used throughout the application.
package utils

import (
	"net"
	"net/http"
	"unicode/utf8"
)

// TruncateString shortens s to at most maxLen runes, appending "..." when cut.
// Used to keep user-supplied text bounded in log lines.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

// GetRequestIP returns the host part of the connection address. Proxy headers
// are only honoured when chi's RealIP middleware has rewritten RemoteAddr.
func GetRequestIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
