package sparse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
	"gonum.org/v1/gonum/mat"
)

func TestFromDense(t *testing.T) {
	dense := mat.NewDense(3, 3, []float64{
		0, 2, 0,
		3, 0, 4,
		5, 0, 0,
	})

	csr, err := FromDense[float32](CSR, dense)
	require.NoError(t, err)
	require.Equal(t, []int32{0, 1, 3, 4}, csr.Indptr())
	require.Equal(t, []int32{1, 0, 2, 0}, csr.Indices())
	require.Equal(t, []float32{2, 3, 4, 5}, csr.Data())

	csc, err := FromDense[float64](CSC, dense)
	require.NoError(t, err)
	require.Equal(t, []int32{0, 2, 3, 4}, csc.Indptr())
	require.Equal(t, []int32{1, 2, 0, 1}, csc.Indices())
	require.Equal(t, []float64{3, 5, 2, 4}, csc.Data())
	require.Equal(t, 4, csc.NNZ())
	require.True(t, csc.IsSquare())
}

func TestFromDenseRectangular(t *testing.T) {
	m, err := FromDense[int32](CSC, mat.NewDense(2, 3, []float64{
		1, 0, 0,
		0, 0, 7,
	}))
	require.NoError(t, err)

	rows, cols := m.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 3, cols)
	require.False(t, m.IsSquare())
	require.Equal(t, []int32{0, 1, 1, 2}, m.Indptr())
	require.Equal(t, []int32{0, 1}, m.Indices())
	require.Equal(t, []int32{1, 7}, m.Data())

	csr, err := FromDense[int32](CSR, mat.NewDense(2, 3, []float64{
		1, 0, 0,
		0, 0, 7,
	}))
	require.NoError(t, err)
	require.Equal(t, []int32{0, 1, 2}, csr.Indptr())
	require.Equal(t, []int32{0, 2}, csr.Indices())
}

func TestFromDenseRejectsUnrepresentable(t *testing.T) {
	_, err := FromDense[uint8](CSR, mat.NewDense(1, 2, []float64{0.3, 0}))
	require.ErrorContains(t, err, "not a whole number")

	_, err = FromDense[int8](CSC, mat.NewDense(2, 1, []float64{0, 300}))
	require.ErrorContains(t, err, "entry (1, 0)")

	m, err := FromDense[float32](CSR, mat.NewDense(1, 2, []float64{0.3, 0}))
	require.NoError(t, err)
	require.Equal(t, []float32{0.3}, m.Data())
}

func TestFromFloat64IntegerKinds(t *testing.T) {
	v, err := FromFloat64[uint8](255)
	require.NoError(t, err)
	require.Equal(t, uint8(255), v)

	i, err := FromFloat64[int32](-1 << 31)
	require.NoError(t, err)
	require.Equal(t, int32(-1<<31), i)

	u, err := FromFloat64[uint32](1<<32 - 1)
	require.NoError(t, err)
	require.Equal(t, uint32(1<<32-1), u)

	for name, fn := range map[string]func() error{
		"uint8 300":   func() error { _, err := FromFloat64[uint8](300); return err },
		"uint8 -1":    func() error { _, err := FromFloat64[uint8](-1); return err },
		"uint8 -1.5":  func() error { _, err := FromFloat64[uint8](-1.5); return err },
		"int8 128":    func() error { _, err := FromFloat64[int8](128); return err },
		"int32 2^31":  func() error { _, err := FromFloat64[int32](1 << 31); return err },
		"uint32 2^32": func() error { _, err := FromFloat64[uint32](1 << 32); return err },
		"int32 NaN":   func() error { _, err := FromFloat64[int32](math.NaN()); return err },
		"int32 +Inf":  func() error { _, err := FromFloat64[int32](math.Inf(1)); return err },
		"uint32 0.5":  func() error { _, err := FromFloat64[uint32](0.5); return err },
	} {
		require.Error(t, fn(), name)
	}
}

func TestNewValidates(t *testing.T) {
	for _, tc := range []struct {
		name    string
		format  Format
		rows    int
		cols    int
		indptr  []int32
		indices []int32
		data    []float32
	}{
		{name: "negative dims", format: CSR, rows: -1, cols: 1, indptr: []int32{0}},
		{name: "unknown format", format: Format(7), rows: 1, cols: 1, indptr: []int32{0, 0}},
		{name: "indptr length", format: CSR, rows: 2, cols: 2, indptr: []int32{0, 0}},
		{name: "indptr length csc", format: CSC, rows: 1, cols: 2, indptr: []int32{0, 0}},
		{name: "values length", format: CSR, rows: 1, cols: 1, indptr: []int32{0, 1}, indices: []int32{0}},
		{name: "indptr end", format: CSR, rows: 1, cols: 1, indptr: []int32{0, 2}, indices: []int32{0}, data: []float32{1}},
		{name: "decreasing", format: CSR, rows: 2, cols: 2, indptr: []int32{0, 2, 1}, indices: []int32{0}, data: []float32{1}},
		{name: "index range", format: CSR, rows: 1, cols: 2, indptr: []int32{0, 1}, indices: []int32{2}, data: []float32{1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.format, tc.rows, tc.cols, tc.indptr, tc.indices, tc.data)
			require.Error(t, err)
		})
	}

	m, err := New[float32](CSR, 2, 3, []int32{0, 1, 2}, []int32{2, 0}, []float32{1, 1})
	require.NoError(t, err)
	require.Equal(t, 2, m.NNZ())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSC")
	require.NoError(t, err)
	require.Equal(t, CSC, f)

	_, err = ParseFormat("coo")
	require.Error(t, err)
}

func TestFloat16Conversion(t *testing.T) {
	h, err := FromFloat64[float16.Float16](0.1)
	require.NoError(t, err)
	require.InDelta(t, 0.1, ToFloat64(h), 1e-3)
	h, err = FromFloat64[float16.Float16](65504)
	require.NoError(t, err)
	require.Equal(t, float64(65504), ToFloat64(h))
	require.Equal(t, "float16", ElementName[float16.Float16]())
	require.Equal(t, "uint8", ElementName[uint8]())
}
