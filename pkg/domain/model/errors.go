package model

import "github.com/m-mizutani/goerr/v2"

// ErrTagTransient marks failures that are worth retrying: network transport
// errors, 5xx responses and similar. Errors without this tag are treated as
// permanent and propagate immediately.
var ErrTagTransient = goerr.NewTag("transient")
