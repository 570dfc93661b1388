package channel

import "fmt"

type remoteError struct {
	code int
	msg  string
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.code, e.msg)
}
