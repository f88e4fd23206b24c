package goCareer

import "errors"

var (
	// ErrNotReady is returned by a Client that was not produced by Build or was closed.
	ErrNotReady = errors.New("client not ready")
	// ErrMissingCredentials is returned when the email or password is empty.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrInvalidCredentials is returned when the backend rejects a credential exchange.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingFields is returned when a registration lacks a name, email or password.
	ErrMissingFields = errors.New("name, email and password are required")
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrBuilderUsed is returned when Build is called twice on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrRedisRequired is returned when the redis session backend has neither a client nor an address.
	ErrRedisRequired = errors.New("redis session backend requires a client or address")
)
