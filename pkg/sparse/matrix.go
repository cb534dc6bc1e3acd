// Package sparse provides compressed sparse row and column matrices over the
// element types the graph engine can store.
package sparse

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type Format int

const (
	CSR Format = iota
	CSC
)

func (f Format) String() string {
	switch f {
	case CSR:
		return "csr"
	case CSC:
		return "csc"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csr":
		return CSR, nil
	case "csc":
		return CSC, nil
	}
	return 0, fmt.Errorf("unknown sparse format %q", s)
}

// Matrix is a compressed sparse matrix.
//
// For CSR, the entries of row i are at positions Indptr()[i]:Indptr()[i+1]
// of Indices() (column numbers) and Data(). For CSC the roles of rows and
// columns are swapped.
type Matrix[T Element] struct {
	format  Format
	rows    int
	cols    int
	indptr  []int32
	indices []int32
	data    []T
}

// New validates and wraps the given arrays without copying them.
func New[T Element](format Format, rows, cols int, indptr, indices []int32, data []T) (*Matrix[T], error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", rows, cols)
	}
	major, minor := rows, cols
	if format == CSC {
		major, minor = cols, rows
	} else if format != CSR {
		return nil, fmt.Errorf("unknown sparse format %v", format)
	}

	if len(indptr) != major+1 {
		return nil, fmt.Errorf("indptr has %d entries, expected %d", len(indptr), major+1)
	}
	if len(indices) != len(data) {
		return nil, fmt.Errorf("%d indices but %d values", len(indices), len(data))
	}
	if indptr[0] != 0 || int(indptr[major]) != len(indices) {
		return nil, fmt.Errorf("indptr must start at 0 and end at %d", len(indices))
	}
	for i := 1; i < len(indptr); i++ {
		if indptr[i] < indptr[i-1] {
			return nil, fmt.Errorf("indptr decreases at %d", i)
		}
	}
	for i, index := range indices {
		if index < 0 || int(index) >= minor {
			return nil, fmt.Errorf("index %d at position %d out of range [0, %d)", index, i, minor)
		}
	}

	return &Matrix[T]{
		format:  format,
		rows:    rows,
		cols:    cols,
		indptr:  indptr,
		indices: indices,
		data:    data,
	}, nil
}

// FromDense compresses the non-zero entries of m. It fails if an entry cannot
// be represented as T.
func FromDense[T Element](format Format, m mat.Matrix) (*Matrix[T], error) {
	rows, cols := m.Dims()
	major, minor := rows, cols
	if format == CSC {
		major, minor = cols, rows
	}

	out := &Matrix[T]{
		format: format,
		rows:   rows,
		cols:   cols,
		indptr: make([]int32, major+1),
	}
	for i := 0; i < major; i++ {
		for j := 0; j < minor; j++ {
			r, c := i, j
			if format == CSC {
				r, c = j, i
			}
			v := m.At(r, c)
			if v == 0 {
				continue
			}
			x, err := FromFloat64[T](v)
			if err != nil {
				return nil, fmt.Errorf("entry (%d, %d): %w", r, c, err)
			}
			out.indices = append(out.indices, int32(j))
			out.data = append(out.data, x)
		}
		out.indptr[i+1] = int32(len(out.indices))
	}
	return out, nil
}

func (m *Matrix[T]) Format() Format   { return m.format }
func (m *Matrix[T]) Dims() (int, int) { return m.rows, m.cols }
func (m *Matrix[T]) NNZ() int         { return len(m.indices) }
func (m *Matrix[T]) Indptr() []int32  { return m.indptr }
func (m *Matrix[T]) Indices() []int32 { return m.indices }
func (m *Matrix[T]) Data() []T        { return m.data }

func (m *Matrix[T]) IsSquare() bool {
	return m.rows == m.cols
}
