package monitor

import "github.com/nabbar/svc-fabric/internal/errs"

var errMalformedReply = errs.ErrMalformed.Error(nil)
