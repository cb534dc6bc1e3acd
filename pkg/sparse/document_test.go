package sparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDenseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(`
format: csc
dense:
  - [0, 1, 0]
  - [1, 0, 1]
  - [1, 0, 0]
`))
	require.NoError(t, err)
	require.Equal(t, "float32", doc.Kind)

	m, err := DocumentMatrix[float32](doc)
	require.NoError(t, err)
	require.Equal(t, CSC, m.Format())
	require.Equal(t, []int32{0, 2, 3, 4}, m.Indptr())
	require.Equal(t, []int32{1, 2, 0, 1}, m.Indices())
	require.Equal(t, []float32{1, 1, 1, 1}, m.Data())
}

func TestParseCompressedDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(`
format: csr
kind: float64
rows: 2
cols: 2
indptr: [0, 1, 2]
indices: [1, 0]
values: [2.5, 0.5]
`))
	require.NoError(t, err)

	m, err := DocumentMatrix[float64](doc)
	require.NoError(t, err)
	require.Equal(t, []float64{2.5, 0.5}, m.Data())
}

func TestParseDocumentErrors(t *testing.T) {
	for name, input := range map[string]string{
		"unknown field":  "format: csr\nweights: [1]\n",
		"unknown format": "format: coo\n",
		"unknown kind":   "format: csr\nkind: complex64\n",
		"not yaml":       "format: [",
	} {
		_, err := ParseDocument([]byte(input))
		require.Error(t, err, name)
	}
}

func TestDocumentMatrixErrors(t *testing.T) {
	doc, err := ParseDocument([]byte("format: csr\nkind: int32\ndense: [[1]]\n"))
	require.NoError(t, err)
	_, err = DocumentMatrix[float32](doc)
	require.ErrorContains(t, err, "int32")

	doc, err = ParseDocument([]byte("format: csr\ndense: [[1, 2], [3]]\n"))
	require.NoError(t, err)
	_, err = DocumentMatrix[float32](doc)
	require.ErrorContains(t, err, "row 1")

	doc, err = ParseDocument([]byte("format: csr\nkind: uint8\nrows: 2\ncols: 2\nindptr: [0, 1, 2]\nindices: [1, 0]\nvalues: [300, -1.5]\n"))
	require.NoError(t, err)
	_, err = DocumentMatrix[uint8](doc)
	require.ErrorContains(t, err, "value 0")

	doc, err = ParseDocument([]byte("format: csc\nkind: int8\ndense: [[0, 2.5]]\n"))
	require.NoError(t, err)
	_, err = DocumentMatrix[int8](doc)
	require.ErrorContains(t, err, "not a whole number")

	doc, err = ParseDocument([]byte("format: csr\ndense: []\n"))
	require.NoError(t, err)
	_, err = DocumentMatrix[float32](doc)
	require.Error(t, err)
}

func TestDocumentRoundTrip(t *testing.T) {
	m, err := New[uint8](CSC, 2, 2, []int32{0, 1, 2}, []int32{1, 0}, []uint8{3, 200})
	require.NoError(t, err)

	b, err := NewDocument(m).Marshal()
	require.NoError(t, err)

	doc, err := ParseDocument(b)
	require.NoError(t, err)
	require.Equal(t, "uint8", doc.Kind)

	back, err := DocumentMatrix[uint8](doc)
	require.NoError(t, err)
	require.Equal(t, m.Indptr(), back.Indptr())
	require.Equal(t, m.Indices(), back.Indices())
	require.Equal(t, m.Data(), back.Data())
}
