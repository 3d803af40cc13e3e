package bind_group_provider

// BufferWrite describes a single GPU buffer write targeting a binding on a BindGroupProvider.
// Writes always replace Data's full length starting at Offset; the engine only issues whole-uniform writes.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
