// Package multierror collects independent failures into a single error.
package multierror

import "strings"

// Error aggregates multiple errors into one.
type Error []error

func (m Error) Error() string {
	msgs := make([]string, 0, len(m))
	for _, err := range m {
		if err == nil {
			continue
		}
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Unwrap lets errors.Is and errors.As look at every collected error.
func (m Error) Unwrap() []error {
	return m
}

// Append adds err unless it is nil.
func Append(m *Error, err error) {
	if err == nil {
		return
	}
	*m = append(*m, err)
}

// ErrorOrNil returns nil when nothing was collected.
func (m Error) ErrorOrNil() error {
	if len(m) == 0 {
		return nil
	}
	return m
}
