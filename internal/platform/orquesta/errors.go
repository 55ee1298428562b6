package orquesta

import (
	"errors"
	"fmt"
)

var ErrNoChoices = errors.New("orquesta: deployment returned no choices")

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "orquesta http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("orquesta http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("orquesta http error: status=%d body=%s", e.StatusCode, e.Body)
}
