package common

import "unsafe"

// SliceToBytes returns a byte view of data for GPU uploads.
// The view shares memory with data; do not modify either while the view is in use.
//
// Parameters:
//   - data: source slice of any fixed-size element type
//
// Returns:
//   - []byte: byte view of data, or nil if data is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(unsafe.Sizeof(zero))*len(data))
}

// StructToBytes returns a byte view of the value v points to.
//
// Parameters:
//   - v: pointer to the value, typically a uniform block struct
//
// Returns:
//   - []byte: byte view of *v, sized to the value in memory
func StructToBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(unsafe.Sizeof(*v)))
}
