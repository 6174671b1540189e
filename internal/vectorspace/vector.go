package vectorspace

import "math"

// SparseVector holds the non-zero entries of a vector. Indices are strictly ascending.
type SparseVector struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// IsZero reports whether v has no non-zero entry.
func (v SparseVector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dot computes the inner product of two sparse vectors by merging their index lists.
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Dense expands v to a slice of length dim.
func (v SparseVector) Dense(dim int) []float64 {
	out := make([]float64, dim)
	for k, idx := range v.Indices {
		if idx >= 0 && idx < dim {
			out[idx] = v.Values[k]
		}
	}
	return out
}

// Matrix is an ordered list of sparse rows sharing the same column space.
type Matrix struct {
	Cols int            `json:"cols"`
	Rows []SparseVector `json:"data"`
}

func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// Validate checks that every row is well formed for the matrix's column count.
func (m *Matrix) Validate() error {
	if m.Cols < 0 {
		return &ShapeError{Msg: "negative column count"}
	}
	for r, row := range m.Rows {
		if len(row.Indices) != len(row.Values) {
			return &ShapeError{Row: r, Msg: "indices and values differ in length"}
		}
		prev := -1
		for _, idx := range row.Indices {
			if idx <= prev || idx >= m.Cols {
				return &ShapeError{Row: r, Msg: "column index out of order or out of range"}
			}
			prev = idx
		}
		for _, x := range row.Values {
			if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
				return &ShapeError{Row: r, Msg: "non-finite or negative weight"}
			}
		}
	}
	return nil
}
