package constants

import "errors"

// Command line errors.
var (
	ErrInvalidParam        = errors.New("invalid parameter, expected key=value")
	ErrItemInputRequired   = errors.New("item input is required (use --file or --data)")
	ErrQueryRequired       = errors.New("query is required (pass it as an argument or use --file)")
	ErrUnknownOutputFormat = errors.New("unknown output format")
	ErrCredentialsRequired = errors.New("no credentials configured (set SHOPIFY_PASS or SHOPIFY_TOKEN)")
)
