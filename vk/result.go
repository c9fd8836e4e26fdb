package vk

import "fmt"

type Result int32

const (
	SUCCESS               Result = 0
	NOT_READY             Result = 1
	TIMEOUT               Result = 2
	INCOMPLETE            Result = 5
	OUT_OF_HOST_MEMORY    Result = -1
	OUT_OF_DEVICE_MEMORY  Result = -2
	INITIALIZATION_FAILED Result = -3
	DEVICE_LOST           Result = -4
	MEMORY_MAP_FAILED     Result = -5
	LAYER_NOT_PRESENT     Result = -6
	EXTENSION_NOT_PRESENT Result = -7
	FEATURE_NOT_PRESENT   Result = -8
	INCOMPATIBLE_DRIVER   Result = -9
	TOO_MANY_OBJECTS      Result = -10
	FORMAT_NOT_SUPPORTED  Result = -11
	FRAGMENTED_POOL       Result = -12
	UNKNOWN               Result = -13
	OUT_OF_POOL_MEMORY    Result = -1000069000
	SURFACE_LOST          Result = -1000000000
	NATIVE_WINDOW_IN_USE  Result = -1000000001
	SUBOPTIMAL            Result = 1000001003
	OUT_OF_DATE           Result = -1000001004
	VALIDATION_FAILED     Result = -1000011001
	INVALID_SHADER        Result = -1000012000
)

func (r Result) Error() string {
	switch r {
	case SUCCESS:
		return "SUCCESS"
	case NOT_READY:
		return "NOT READY"
	case TIMEOUT:
		return "TIMEOUT"
	case INCOMPLETE:
		return "INCOMPLETE"
	case OUT_OF_HOST_MEMORY:
		return "OUT OF HOST MEMORY"
	case OUT_OF_DEVICE_MEMORY:
		return "OUT OF DEVICE MEMORY"
	case INITIALIZATION_FAILED:
		return "INITIALIZATION FAILED"
	case DEVICE_LOST:
		return "DEVICE LOST"
	case MEMORY_MAP_FAILED:
		return "MEMORY MAP FAILED"
	case LAYER_NOT_PRESENT:
		return "LAYER NOT PRESENT"
	case EXTENSION_NOT_PRESENT:
		return "EXTENSION NOT PRESENT"
	case FEATURE_NOT_PRESENT:
		return "FEATURE NOT PRESENT"
	case INCOMPATIBLE_DRIVER:
		return "INCOMPATIBLE DRIVER"
	case TOO_MANY_OBJECTS:
		return "TOO MANY OBJECTS"
	case FORMAT_NOT_SUPPORTED:
		return "FORMAT NOT SUPPORTED"
	case FRAGMENTED_POOL:
		return "FRAGMENTED POOL"
	case UNKNOWN:
		return "UNKNOWN"
	case OUT_OF_POOL_MEMORY:
		return "OUT OF POOL MEMORY"
	case SURFACE_LOST:
		return "SURFACE LOST"
	case NATIVE_WINDOW_IN_USE:
		return "NATIVE WINDOW IN USE"
	case SUBOPTIMAL:
		return "SUBOPTIMAL"
	case OUT_OF_DATE:
		return "OUT OF DATE"
	case VALIDATION_FAILED:
		return "VALIDATION FAILED"
	case INVALID_SHADER:
		return "INVALID SHADER"
	default:
		return fmt.Sprintf("VkResult(%d)", r)
	}
}
