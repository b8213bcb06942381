package reporting

import "errors"

// ErrUnknownReport is returned by Build for names outside Names
var ErrUnknownReport = errors.New("unknown report")
