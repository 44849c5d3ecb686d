// Package errs registers the error-code taxonomy shared by every fabric
// component, following the same CodeError + message-function pattern the
// certificates package uses.
package errs

import "github.com/nabbar/svc-fabric/errors"

const (
	ErrConfiguration errors.CodeError = iota + errors.MinPkgFabric
	ErrTransientIO
	ErrPeerClosed
	ErrAuthFailure
	ErrMalformed
	ErrSpawnFailure
	ErrTLSHandshake
	ErrSampler
)

func init() {
	errors.RegisterIdFctMessage(ErrConfiguration, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrConfiguration:
		return "invalid or missing configuration"
	case ErrTransientIO:
		return "transient I/O error, retry expected"
	case ErrPeerClosed:
		return "peer closed the connection"
	case ErrAuthFailure:
		return "authentication handshake failed"
	case ErrMalformed:
		return "malformed message on the wire"
	case ErrSpawnFailure:
		return "failed to spawn requested service"
	case ErrTLSHandshake:
		return "TLS handshake failed"
	case ErrSampler:
		return "monitoring sampler failed to collect a reading"
	}

	return ""
}
