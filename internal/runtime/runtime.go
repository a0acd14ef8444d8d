// File: internal/runtime/runtime.go

// Package runtime is the thin client for the inference runtime sidecar: the
// HTTP/JSON service wrapping the ONNX sessions and the sub-word tokenizer.
// The sidecar owns model weights, tokenization, and execution providers; this
// package only moves token ids, probability vectors, attention tensors, and
// generated text across the wire.
package runtime

import "errors"

// Provider names the execution provider the sidecar is asked to run on.
// The service forwards it verbatim; device management is the sidecar's job.
type Provider string

const (
	ProviderCPU Provider = "cpu"
	ProviderGPU Provider = "gpu"
)

// ErrUnavailable wraps transport-level failures and runtime-side 5xx
// responses that survived the retry budget. Handlers map it to 502.
var ErrUnavailable = errors.New("runtime: inference runtime unavailable")

// Valid reports whether p is a known execution provider.
func (p Provider) Valid() bool {
	return p == ProviderCPU || p == ProviderGPU
}
