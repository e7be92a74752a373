package submission

import "errors"

// Sentinel kinds for submission validation errors. All of them are
// user-facing: the upload is rejected and nothing is written to the ledger.
var (
	ErrParse                = errors.New("submission parse failed")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrMissingColumns       = errors.New("missing required columns")
	ErrUnexpectedColumns    = errors.New("unexpected extra columns")
	ErrRowCountMismatch     = errors.New("row count does not match dataset")
	ErrIDSetMismatch        = errors.New("indices do not match dataset")
)
