package loader

import "fmt"

// DecodeError reports image bytes that could not be turned into RGBA pixels.
type DecodeError struct {
	// Source names the asset, usually its path. Empty for in-memory data.
	Source string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "decode image"
	if e.Source != "" {
		msg += " " + e.Source
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ParseError reports a mesh description that is malformed or missing required keys.
type ParseError struct {
	Source string
	Format MeshFormat
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s mesh", e.Format)
	if e.Source != "" {
		msg += " " + e.Source
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
