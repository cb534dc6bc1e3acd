package sparse

import (
	"bytes"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Document is the YAML form of a matrix. Either Dense is set, or the
// compressed arrays Indptr, Indices and Values together with Rows and Cols.
//
//	format: csc
//	kind: float32
//	dense:
//	  - [0, 1, 0]
//	  - [1, 0, 1]
//	  - [1, 0, 0]
type Document struct {
	Format string      `yaml:"format"`
	Kind   string      `yaml:"kind"`
	Rows   int         `yaml:"rows,omitempty"`
	Cols   int         `yaml:"cols,omitempty"`
	Dense  [][]float64 `yaml:"dense,omitempty"`

	Indptr  []int32   `yaml:"indptr,omitempty"`
	Indices []int32   `yaml:"indices,omitempty"`
	Values  []float64 `yaml:"values,omitempty"`
}

var documentKinds = map[string]bool{
	"float16": true,
	"float32": true,
	"float64": true,
	"int8":    true,
	"uint8":   true,
	"int32":   true,
	"uint32":  true,
}

// ParseDocument decodes a matrix document, rejecting unknown fields.
func ParseDocument(b []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	doc := &Document{}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding matrix document: %w", err)
	}
	if _, err := ParseFormat(doc.Format); err != nil {
		return nil, err
	}
	if doc.Kind == "" {
		doc.Kind = "float32"
	}
	if !documentKinds[doc.Kind] {
		return nil, fmt.Errorf("unsupported element kind %q", doc.Kind)
	}
	return doc, nil
}

// DocumentMatrix builds the matrix described by doc. T must match doc.Kind.
func DocumentMatrix[T Element](doc *Document) (*Matrix[T], error) {
	if name := ElementName[T](); name != doc.Kind {
		return nil, fmt.Errorf("document holds %s values, not %s", doc.Kind, name)
	}
	format, err := ParseFormat(doc.Format)
	if err != nil {
		return nil, err
	}

	if doc.Dense != nil {
		rows := len(doc.Dense)
		if rows == 0 || len(doc.Dense[0]) == 0 {
			return nil, fmt.Errorf("dense matrix is empty")
		}
		cols := len(doc.Dense[0])
		values := make([]float64, 0, rows*cols)
		for i, row := range doc.Dense {
			if len(row) != cols {
				return nil, fmt.Errorf("dense row %d has %d columns, expected %d", i, len(row), cols)
			}
			values = append(values, row...)
		}
		return FromDense[T](format, mat.NewDense(rows, cols, values))
	}

	data := make([]T, len(doc.Values))
	for i, v := range doc.Values {
		if data[i], err = FromFloat64[T](v); err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
	}
	return New(format, doc.Rows, doc.Cols, doc.Indptr, doc.Indices, data)
}

// NewDocument describes m in compressed form.
func NewDocument[T Element](m *Matrix[T]) *Document {
	values := make([]float64, len(m.data))
	for i, v := range m.data {
		values[i] = ToFloat64(v)
	}
	return &Document{
		Format:  m.format.String(),
		Kind:    ElementName[T](),
		Rows:    m.rows,
		Cols:    m.cols,
		Indptr:  m.indptr,
		Indices: m.indices,
		Values:  values,
	}
}

func (d *Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}
