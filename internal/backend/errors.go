package backend

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidResponse = errors.New("backend response does not match contract")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Endpoint string
	Code     int
	Detail   string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s failed with status %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("%s failed with status %d: %s", e.Endpoint, e.Code, e.Detail)
}

type contractError struct {
	endpoint string
	problems []string
}

func (e *contractError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.endpoint, ErrInvalidResponse, strings.Join(e.problems, "; "))
}

func (e *contractError) Unwrap() error {
	return ErrInvalidResponse
}
