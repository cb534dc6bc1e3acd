package nvgraph

import "fmt"

// Handle identifies one engine context. The zero value is never a live handle.
type Handle uintptr

// GraphDescr identifies one graph descriptor created under a Handle.
type GraphDescr uintptr

type LibraryProperty int32

const (
	MajorVersion LibraryProperty = 0
	MinorVersion LibraryProperty = 1
	PatchLevel   LibraryProperty = 2
)

// CudaDataType mirrors cudaDataType_t from library_types.h.
type CudaDataType int32

const (
	CUDA_R_16F CudaDataType = 2
	CUDA_C_16F CudaDataType = 6
	CUDA_R_32F CudaDataType = 0
	CUDA_C_32F CudaDataType = 4
	CUDA_R_64F CudaDataType = 1
	CUDA_C_64F CudaDataType = 5
	CUDA_R_8I  CudaDataType = 3
	CUDA_C_8I  CudaDataType = 7
	CUDA_R_8U  CudaDataType = 8
	CUDA_C_8U  CudaDataType = 9
	CUDA_R_32I CudaDataType = 10
	CUDA_C_32I CudaDataType = 11
	CUDA_R_32U CudaDataType = 12
	CUDA_C_32U CudaDataType = 13
)

var cudaDataTypeNames = map[CudaDataType]string{
	CUDA_R_16F: "CUDA_R_16F",
	CUDA_C_16F: "CUDA_C_16F",
	CUDA_R_32F: "CUDA_R_32F",
	CUDA_C_32F: "CUDA_C_32F",
	CUDA_R_64F: "CUDA_R_64F",
	CUDA_C_64F: "CUDA_C_64F",
	CUDA_R_8I:  "CUDA_R_8I",
	CUDA_C_8I:  "CUDA_C_8I",
	CUDA_R_8U:  "CUDA_R_8U",
	CUDA_C_8U:  "CUDA_C_8U",
	CUDA_R_32I: "CUDA_R_32I",
	CUDA_C_32I: "CUDA_C_32I",
	CUDA_R_32U: "CUDA_R_32U",
	CUDA_C_32U: "CUDA_C_32U",
}

func (t CudaDataType) String() string {
	if s, ok := cudaDataTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("CudaDataType(%d)", int32(t))
}

// Size returns the element size in bytes of a real-valued type, or 0 for
// complex and unknown types.
func (t CudaDataType) Size() int {
	switch t {
	case CUDA_R_8I, CUDA_R_8U:
		return 1
	case CUDA_R_16F:
		return 2
	case CUDA_R_32F, CUDA_R_32I, CUDA_R_32U:
		return 4
	case CUDA_R_64F:
		return 8
	}
	return 0
}

type TopologyType int32

const (
	CSR32 TopologyType = 0
	CSC32 TopologyType = 1
	COO32 TopologyType = 2
)

func (t TopologyType) String() string {
	switch t {
	case CSR32:
		return "CSR"
	case CSC32:
		return "CSC"
	case COO32:
		return "COO"
	}
	return fmt.Sprintf("TopologyType(%d)", int32(t))
}

// Topology is one of the topology wire shapes accepted by SetGraphStructure.
type Topology interface {
	TopologyType() TopologyType
}

// CSRTopology32I is the compressed sparse row wire shape: edges of vertex v
// are DestinationIndices[SourceOffsets[v]:SourceOffsets[v+1]].
type CSRTopology32I struct {
	NVertices          int32
	NEdges             int32
	SourceOffsets      []int32
	DestinationIndices []int32
}

func (*CSRTopology32I) TopologyType() TopologyType { return CSR32 }

// CSCTopology32I is the compressed sparse column wire shape: edges into
// vertex v come from SourceIndices[DestinationOffsets[v]:DestinationOffsets[v+1]].
type CSCTopology32I struct {
	NVertices          int32
	NEdges             int32
	DestinationOffsets []int32
	SourceIndices      []int32
}

func (*CSCTopology32I) TopologyType() TopologyType { return CSC32 }
