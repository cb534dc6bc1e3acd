package graphiti

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
	"github.com/daniel-j-h/graphiti/pkg/sparse"
)

// Element is the set of Go types that can be copied into and out of slots.
type Element = sparse.Element

// Kind is the value type of a slot.
type Kind int

const (
	Float16 Kind = iota + 1
	Float32
	Float64
	Int8
	Uint8
	Int32
	Uint32
)

var kindNames = map[Kind]string{
	Float16: "float16",
	Float32: "float32",
	Float64: "float64",
	Int8:    "int8",
	Uint8:   "uint8",
	Int32:   "int32",
	Uint32:  "uint32",
}

// kindTypes is the whole mapping onto the engine's data type tags; only real
// types appear here.
var kindTypes = map[Kind]nvgraph.CudaDataType{
	Float16: nvgraph.CUDA_R_16F,
	Float32: nvgraph.CUDA_R_32F,
	Float64: nvgraph.CUDA_R_64F,
	Int8:    nvgraph.CUDA_R_8I,
	Uint8:   nvgraph.CUDA_R_8U,
	Int32:   nvgraph.CUDA_R_32I,
	Uint32:  nvgraph.CUDA_R_32U,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Valid() bool {
	_, ok := kindTypes[k]
	return ok
}

// CudaDataType returns the engine tag for k.
func (k Kind) CudaDataType() (nvgraph.CudaDataType, error) {
	t, ok := kindTypes[k]
	if !ok {
		return 0, usageErrorf("mapping value kind", "unsupported value kind %v", k)
	}
	return t, nil
}

// KindFromCudaDataType is the inverse of Kind.CudaDataType. Complex types have
// no host kind.
func KindFromCudaDataType(t nvgraph.CudaDataType) (Kind, error) {
	for k, kt := range kindTypes {
		if kt == t {
			return k, nil
		}
	}
	return 0, usageErrorf("mapping value kind", "no host kind for %v", t)
}

// KindOf returns the Kind of T.
func KindOf[T Element]() Kind {
	var zero T
	switch any(zero).(type) {
	case float16.Float16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	case int8:
		return Int8
	case uint8:
		return Uint8
	case int32:
		return Int32
	case uint32:
		return Uint32
	}
	panic(fmt.Sprintf("unhandled element type %T", zero))
}

// ParseKind accepts the names returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown value kind %q", s)
}
