package clientip

import (
	"net"
	"net/http"
	"strings"
)

// DefaultHeaders are consulted in order before falling back to RemoteAddr.
var DefaultHeaders = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// FromRequest returns the client IP of r using DefaultHeaders.
func FromRequest(r *http.Request) string {
	return FromRequestHeaders(r, DefaultHeaders...)
}

// FromRequestHeaders returns the first valid IP found in headers, then
// the host part of RemoteAddr. Comma separated headers yield their first
// valid entry. An empty string means no usable address was found.
func FromRequestHeaders(r *http.Request, headers ...string) string {
	if r == nil {
		return ""
	}
	for _, h := range headers {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		for ip := range strings.SplitSeq(v, ",") {
			if parsed := parseIP(ip); parsed != "" {
				return parsed
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP returns the normalized form of s or "" when s is not an IP.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
