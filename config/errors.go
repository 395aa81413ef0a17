package config

import "errors"

var (
	// ErrRead indicates the config file could not be read.
	ErrRead = errors.New("config: cannot read file")

	// ErrParse indicates the config file is not valid JSONC or does not
	// match the schema.
	ErrParse = errors.New("config: invalid file")

	// ErrInvalidSourceKind indicates an unknown source kind.
	ErrInvalidSourceKind = errors.New("config: unknown source kind")

	// ErrMissingURL indicates an h5grove source without a server URL.
	ErrMissingURL = errors.New("config: h5grove source requires a url")

	// ErrMissingFile indicates an h5grove source without a file name.
	ErrMissingFile = errors.New("config: h5grove source requires a file")

	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("config: missing environment variables")

	// ErrInvalidValue indicates a numeric setting out of range.
	ErrInvalidValue = errors.New("config: invalid value")
)
