package llm

import "errors"

var (
	// ErrUnavailable marks transport failures: connection refused,
	// timeouts, 5xx responses. Retryable.
	ErrUnavailable = errors.New("llm: server unavailable")

	// ErrMalformed marks responses the client could not use: undecodable
	// bodies, empty choices, empty text.
	ErrMalformed = errors.New("llm: malformed response")

	// errEndpointRejected triggers the chat fallback when the server does
	// not serve /v1/completions.
	errEndpointRejected = errors.New("llm: endpoint rejected")
)

func endpointRejected(err error) bool {
	return errors.Is(err, errEndpointRejected)
}
