package utils

// P 返回值的指针，方便填充可选字段
func P[T any](v T) *T {
	return &v
}

// V 取指针的值，空指针返回零值
func V[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
