package dataset

import "errors"

// Sentinel kinds for gold-label loading errors. All of them are fatal at
// startup: the process must not serve a competition with a broken gold set.
var (
	ErrGoldParse      = errors.New("gold file parse failed")
	ErrGoldSchema     = errors.New("gold file schema invalid")
	ErrGoldVisibility = errors.New("gold visibility flag out of domain")
	ErrGoldDuplicate  = errors.New("duplicate id in gold file")
)
