package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset. The write lands in the provider's
// current-frame buffer.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// WriteBuffers applies staged writes in order.
//
// Parameters:
//   - writes: the writes to apply
func WriteBuffers(writes []BufferWrite) {
	for _, w := range writes {
		w.Provider.Write(w.Binding, w.Offset, w.Data)
	}
}
