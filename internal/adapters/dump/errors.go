package dump

import "errors"

// ErrDumpDir reports an unusable dump directory. Fatal at startup.
var ErrDumpDir = errors.New("dump directory unusable")
