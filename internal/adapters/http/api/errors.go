package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrBadPeriod  = errors.New("invalid period; month 1-12, four-digit year, optional week 1-52")
)
