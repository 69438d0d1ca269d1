package basis

import "unsafe"

// sliceDataPointer returns the address of a float64 slice's backing
// array, used only as an identity key for the copy tracker (spec §3,
// "keyed by (pointer, dim)").
func sliceDataPointer(data []float64) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(data)))
}
