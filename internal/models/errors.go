package models

import "fmt"

// DecodeError means the video container could not be opened or has an
// unusable frame rate. The video is skipped; the batch continues.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EmptyVideoError means sampling produced zero frames, so the visual
// rates would be undefined. The video is skipped; the batch continues.
type EmptyVideoError struct {
	Path string
}

func (e *EmptyVideoError) Error() string {
	return fmt.Sprintf("no frames sampled from %s", e.Path)
}

// SchemaMismatchError means the serving-time feature vector is missing
// a column the trained model expects. Fatal for that prediction only.
type SchemaMismatchError struct {
	Column string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature vector missing model column %q", e.Column)
}

// ModelLoadError means the trained model artifact is missing or
// corrupt. Fatal at startup: the service must not accept traffic.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model artifact %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }
