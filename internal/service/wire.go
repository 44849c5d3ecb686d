// Package service implements the TLS-wrapped token handshake and command
// dispatch channel used to launch a peer-requested service process.
package service

import (
	"bytes"
	"strings"
)

const (
	schemeVerifyToken = "verify-token://"
	schemeVerifyDone  = "verify-done://"
	schemeRequest     = "service-request://"
)

func encodeVerifyToken(token string) []byte {
	return []byte(schemeVerifyToken + token + "\x00")
}

func encodeVerifyDone() []byte {
	return []byte(schemeVerifyDone + "\x00")
}

// EncodeRequest joins args with '&'.
func EncodeRequest(args []string) []byte {
	return []byte(schemeRequest + strings.Join(args, "&") + "\x00")
}

func trimNUL(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

type message struct {
	scheme string
	body   string
}

func parseMessage(raw []byte) (message, bool) {
	s := trimNUL(raw)

	switch {
	case strings.HasPrefix(s, schemeVerifyToken):
		return message{scheme: schemeVerifyToken, body: strings.TrimPrefix(s, schemeVerifyToken)}, true
	case strings.HasPrefix(s, schemeVerifyDone):
		return message{scheme: schemeVerifyDone}, true
	case strings.HasPrefix(s, schemeRequest):
		return message{scheme: schemeRequest, body: strings.TrimPrefix(s, schemeRequest)}, true
	default:
		return message{}, false
	}
}

func splitArgs(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(body, "&")
}
