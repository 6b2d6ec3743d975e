// Package errors defines the error taxonomy used across the fat16ro module.
//
// Every fallible operation returns one of the sentinel values declared here,
// or a value wrapping one of them, so callers can dispatch on the failure
// kind with the standard library's errors.Is instead of parsing messages.
package errors

// FatError is one fixed kind of failure in the driver's taxonomy.
type FatError string

// ErrInvalidArgument: null/empty inputs, unknown seek whence, or an operation
// performed on a closed handle.
const ErrInvalidArgument = FatError("invalid argument")

// ErrNotFound: the image path, or a file name looked up in the root
// directory, does not exist.
const ErrNotFound = FatError("not found")

// ErrOutOfMemory: an allocation failed.
const ErrOutOfMemory = FatError("out of memory")

// ErrIoRange: the block device returned fewer sectors than requested.
const ErrIoRange = FatError("short read from block device")

// ErrInvalidVolume: the VBR failed validation.
const ErrInvalidVolume = FatError("invalid FAT16 volume")

// ErrCorruptFat: the FAT copies disagree with each other, or FAT[1] does not
// carry the end-of-chain marker.
const ErrCorruptFat = FatError("corrupt file allocation table")

// ErrCorruptChain: a cluster chain reached a reserved, free, or end-of-chain
// value before the directory entry's declared size was satisfied, or the
// chain revisits a cluster it has already visited.
const ErrCorruptChain = FatError("corrupt cluster chain")

// ErrIsDirectory: file_open was called against an entry carrying the
// directory attribute.
const ErrIsDirectory = FatError("is a directory")

// ErrOutOfRange: a seek would leave the file's [0, size] window.
const ErrOutOfRange = FatError("seek out of range")

func (e FatError) Error() string {
	return string(e)
}

// WithMessage attaches additional context to the error kind while keeping it
// discoverable via errors.Is(err, e).
func (e FatError) WithMessage(message string) error {
	return &detailedError{kind: e, message: message}
}

// Wrap attaches an underlying error while keeping the kind discoverable via
// errors.Is(err, e) and the original error discoverable via errors.Unwrap.
func (e FatError) Wrap(err error) error {
	return &detailedError{kind: e, message: err.Error(), wrapped: err}
}
