// errors.go - Error kinds surfaced to callers of Generate.
package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/xob0t/GoWipe/pkg/imageset"
)

var (
	// ErrEncodeWrite wraps every failure to create, write or finalize output.
	ErrEncodeWrite = errors.New("encode write failed")
	// ErrInvalidConfig reports a Config that failed validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// Kind names returned by [Kind].
const (
	KindFolderNotFound      = "FolderNotFound"
	KindNoImagesFound       = "NoImagesFound"
	KindUnparseableFilename = "UnparseableFilename"
	KindImageDecodeFailure  = "ImageDecodeFailure"
	KindEncodeWriteFailure  = "EncodeWriteFailure"
	KindInvalidConfig       = "InvalidConfig"
	KindCanceled            = "Canceled"
	KindInternal            = "Internal"
)

// Kind classifies err for presentation. It returns "" for nil.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, imageset.ErrFolderNotFound):
		return KindFolderNotFound
	case errors.Is(err, imageset.ErrNoImagesFound):
		return KindNoImagesFound
	case errors.Is(err, imageset.ErrUnparseableFilename):
		return KindUnparseableFilename
	case errors.Is(err, imageset.ErrImageDecode):
		return KindImageDecodeFailure
	case errors.Is(err, ErrEncodeWrite):
		return KindEncodeWriteFailure
	case errors.Is(err, ErrInvalidConfig):
		return KindInvalidConfig
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

func encodeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrEncodeWrite, op, err)
}
