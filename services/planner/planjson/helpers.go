package planjson

// pointer helpers for building documents in code

func NewInt32Pointer(v int32) *int32 {
	return &v
}

func NewInt64Pointer(v int64) *int64 {
	return &v
}

func NewStringPointer(v string) *string {
	return &v
}

func NewBoolPointer(v bool) *bool {
	return &v
}
