package gpu

// SelectMemoryType returns the lowest memory type index allowed by typeBits
// whose flags include every bit of required.
func SelectMemoryType(props MemoryProperties, typeBits uint32, required MemoryProperty) (uint32, error) {
	for i, t := range props.Types {
		if i >= 32 {
			break
		}
		if typeBits&(1<<uint(i)) == 0 {
			continue
		}
		if t.Flags&required == required {
			return uint32(i), nil
		}
	}
	return 0, ErrNoSuitableMemoryType
}
