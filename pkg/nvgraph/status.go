package nvgraph

import "fmt"

// Status is the integer result of every engine call.
type Status int32

const (
	StatusSuccess               Status = 0
	StatusNotInitialized        Status = 1
	StatusAllocFailed           Status = 2
	StatusInvalidValue          Status = 3
	StatusArchMismatch          Status = 4
	StatusMappingError          Status = 5
	StatusExecutionFailed       Status = 6
	StatusInternalError         Status = 7
	StatusTypeNotSupported      Status = 8
	StatusNotConverged          Status = 9
	StatusGraphTypeNotSupported Status = 10
)

var statusNames = map[Status]string{
	StatusSuccess:               "NVGRAPH_STATUS_SUCCESS",
	StatusNotInitialized:        "NVGRAPH_STATUS_NOT_INITIALIZED",
	StatusAllocFailed:           "NVGRAPH_STATUS_ALLOC_FAILED",
	StatusInvalidValue:          "NVGRAPH_STATUS_INVALID_VALUE",
	StatusArchMismatch:          "NVGRAPH_STATUS_ARCH_MISMATCH",
	StatusMappingError:          "NVGRAPH_STATUS_MAPPING_ERROR",
	StatusExecutionFailed:       "NVGRAPH_STATUS_EXECUTION_FAILED",
	StatusInternalError:         "NVGRAPH_STATUS_INTERNAL_ERROR",
	StatusTypeNotSupported:      "NVGRAPH_STATUS_TYPE_NOT_SUPPORTED",
	StatusNotConverged:          "NVGRAPH_STATUS_NOT_CONVERGED",
	StatusGraphTypeNotSupported: "NVGRAPH_STATUS_GRAPH_TYPE_NOT_SUPPORTED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("NVGRAPH_STATUS(%d)", int32(s))
}

// Known reports whether s is part of the published status enumeration.
func (s Status) Known() bool {
	_, ok := statusNames[s]
	return ok
}
