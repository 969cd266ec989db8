// Package tensor implements the tensor core: shapes, raw buffers, the typed
// generic Tensor and the Backend interface that compute backends implement.
//
// The design separates three layers:
//   - Shape/RawTensor: untyped storage with runtime dtype tags
//   - Backend: device-specific math on RawTensors
//   - Tensor[T, B]: the typed user-facing wrapper, dispatching to B
package tensor
