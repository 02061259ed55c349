package auth

import "errors"

var (
	InvalidRequestErr         = errors.New("invalid request")
	UserNotFoundErr           = errors.New("user not found")
	UserBlockedErr            = errors.New("user blocked")
	UserPasswordsDontMatchErr = errors.New("user passwords not matched")
)
