package nvgraph

import "testing"

func TestCudaDataTypeSize(t *testing.T) {
	for _, tc := range []struct {
		t    CudaDataType
		size int
		name string
	}{
		{CUDA_R_16F, 2, "CUDA_R_16F"},
		{CUDA_R_32F, 4, "CUDA_R_32F"},
		{CUDA_R_64F, 8, "CUDA_R_64F"},
		{CUDA_R_8I, 1, "CUDA_R_8I"},
		{CUDA_R_8U, 1, "CUDA_R_8U"},
		{CUDA_R_32I, 4, "CUDA_R_32I"},
		{CUDA_R_32U, 4, "CUDA_R_32U"},
		{CUDA_C_32F, 0, "CUDA_C_32F"},
	} {
		if got := tc.t.Size(); got != tc.size {
			t.Errorf("%v.Size() = %d, want %d", tc.t, got, tc.size)
		}
		if got := tc.t.String(); got != tc.name {
			t.Errorf("String() = %q, want %q", got, tc.name)
		}
	}
}

func TestStatus(t *testing.T) {
	if got := StatusTypeNotSupported.String(); got != "NVGRAPH_STATUS_TYPE_NOT_SUPPORTED" {
		t.Errorf("String() = %q", got)
	}
	if !StatusGraphTypeNotSupported.Known() {
		t.Errorf("%v should be known", StatusGraphTypeNotSupported)
	}
	if Status(42).Known() {
		t.Errorf("Status(42) should not be known")
	}
}
