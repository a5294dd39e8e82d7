package compose

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a group definition could not be used.
type ErrorKind int

// Load failure kinds.
const (
	KindNotFound ErrorKind = iota
	KindPath
	KindSyntax
	KindInvalid
	KindLoader
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "compose file not found"
	case KindPath:
		return "path error"
	case KindSyntax:
		return "invalid compose YAML"
	case KindInvalid:
		return "compose validation failed"
	default:
		return "failed to load compose project"
	}
}

// LoadError is returned for every failure to find, read, parse or validate a
// group definition.
type LoadError struct {
	Kind   ErrorKind
	Path   string
	Detail string
	Cause  error
}

func (e *LoadError) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	switch {
	case e.Detail != "":
		msg += ": " + e.Detail
	case e.Cause != nil:
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

func isKind(err error, kind ErrorKind) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == kind
}

// IsFileNotFoundError reports whether no definition file was found.
func IsFileNotFoundError(err error) bool { return isKind(err, KindNotFound) }

// IsPathError reports whether a path could not be accessed.
func IsPathError(err error) bool { return isKind(err, KindPath) }

// IsInvalidYAMLError reports whether the definition failed to parse.
func IsInvalidYAMLError(err error) bool { return isKind(err, KindSyntax) }

// IsValidationError reports whether the definition parsed but is invalid.
func IsValidationError(err error) bool { return isKind(err, KindInvalid) }

// IsLoaderError reports whether compose-go failed to build the project.
func IsLoaderError(err error) bool { return isKind(err, KindLoader) }
