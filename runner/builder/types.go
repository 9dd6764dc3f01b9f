package builder

// SizeOfType returns the size in bytes of a data type
func SizeOfType(dt DataType) int64 {
	if dt == Float32 {
		return 4
	}
	return 8
}

// TypeName returns the C type name for a given DataType
func TypeName(dt DataType) string {
	if dt == Float32 {
		return "float"
	}
	return "double"
}

// TypeSuffix returns the numeric suffix for floating point literals
func TypeSuffix(dt DataType) string {
	if dt == Float32 {
		return "f"
	}
	return ""
}
