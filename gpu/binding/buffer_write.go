package binding

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/gpu/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferWrite describes a single queue write into a bound buffer at a byte offset.
type BufferWrite struct {
	Buffer *wgpu.Buffer
	Offset uint64
	Data   []byte
}

// WriteBuffers issues the writes in order. Writes with no data are skipped. The first
// failing write aborts the rest.
//
// Parameters:
//   - queue: the queue to write through
//   - writes: the writes to issue
//
// Returns:
//   - error: the first queue error, wrapped with the index of the failing write
func WriteBuffers(queue backend.Queue, writes ...BufferWrite) error {
	for i, w := range writes {
		if len(w.Data) == 0 {
			continue
		}
		if err := queue.WriteBuffer(w.Buffer, w.Offset, w.Data); err != nil {
			return fmt.Errorf("binding: buffer write %d at offset %d failed: %w", i, w.Offset, err)
		}
	}
	return nil
}

// SliceWrite builds a write of data's raw bytes, e.g. an instance array for a storage buffer.
// The write shares memory with data until it is issued.
//
// Parameters:
//   - buf: the destination buffer
//   - offset: the byte offset into buf
//   - data: the elements to write
//
// Returns:
//   - BufferWrite: the write
func SliceWrite[T any](buf *wgpu.Buffer, offset uint64, data []T) BufferWrite {
	return BufferWrite{Buffer: buf, Offset: offset, Data: common.SliceToBytes(data)}
}

// ValueWrite builds a write of the raw bytes of *v, e.g. a uniform block.
//
// Parameters:
//   - buf: the destination buffer
//   - offset: the byte offset into buf
//   - v: the value to write
//
// Returns:
//   - BufferWrite: the write
func ValueWrite[T any](buf *wgpu.Buffer, offset uint64, v *T) BufferWrite {
	return BufferWrite{Buffer: buf, Offset: offset, Data: common.StructToBytes(v)}
}
