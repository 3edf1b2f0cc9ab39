// errors.go - Failure kinds reported while discovering and decoding input images.
package imageset

import (
	"errors"
	"fmt"
)

var (
	ErrFolderNotFound      = errors.New("folder not found")
	ErrNoImagesFound       = errors.New("no images found")
	ErrUnparseableFilename = errors.New("filename prefix is not an integer")
	ErrImageDecode         = errors.New("image decode failed")
)

// FileError ties a failure to the input file that caused it. It unwraps to
// both the kind sentinel and the underlying cause.
type FileError struct {
	Name string
	Kind error
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Name, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Name, e.Kind, e.Err)
}

func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
