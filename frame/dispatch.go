package frame

// Dispatch returns the workgroup counts covering a width x height domain
// with local x local workgroups.
func Dispatch(width, height, local uint32) [3]uint32 {
	if local == 0 {
		return [3]uint32{}
	}
	return [3]uint32{
		(width + local - 1) / local,
		(height + local - 1) / local,
		1,
	}
}
