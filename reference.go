// Package cannon reference implementations for verification
package cannon

// Reference contains simple, obviously correct implementations used as the
// oracle for the distributed product.
type Reference struct{}

// Multiply computes c = a·b for n×n row-major matrices with the plain
// triple loop. c is overwritten.
func (Reference) Multiply(n int, a, b, c []float64) {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += a[i*n+k] * b[k*n+j]
			}
			c[i*n+j] = sum
		}
	}
}

// Transpose returns the transpose of an n×n row-major matrix.
func (Reference) Transpose(n int, a []float64) []float64 {
	t := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			t[j*n+i] = a[i*n+j]
		}
	}
	return t
}

// Identity returns the n×n identity matrix.
func (Reference) Identity(n int) []float64 {
	m := make([]float64, n*n)
	for i := 0; i < n; i++ {
		m[i*n+i] = 1
	}
	return m
}
