package bind_group_provider

import "github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithLayout reuses an existing bind group layout instead of creating one from the descriptor.
// The provider does not release a shared layout.
//
// Parameters:
//   - l: the shared layout
//
// Returns:
//   - BindGroupProviderOption: a function that sets the layout for this provider
func WithLayout(l gpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.layout = l
	}
}

// WithStatic creates a single slot instead of one per frame in flight. Use it for buffers that
// are written once at construction and never change.
//
// Returns:
//   - BindGroupProviderOption: a function that makes this provider static
func WithStatic() BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.static = true
	}
}

// WithBufferSize overrides the buffer size of a uniform binding (default: the layout MinSize).
//
// Parameters:
//   - binding: the binding index
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer size for the binding
func WithBufferSize(binding int, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bufferSizes[binding] = size
	}
}

// WithTextureView binds the same texture view at a binding in every slot.
//
// Parameters:
//   - binding: the binding index
//   - view: the texture view
//
// Returns:
//   - BindGroupProviderOption: a function that sets the texture view for the binding
func WithTextureView(binding int, view gpu.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textureViews[binding] = view
	}
}

// WithFrameTextureViews binds a different texture view per slot, e.g. a frame-ring texture.
//
// Parameters:
//   - binding: the binding index
//   - views: returns the view for a slot
//
// Returns:
//   - BindGroupProviderOption: a function that sets the per-slot texture views for the binding
func WithFrameTextureViews(binding int, views func(slot int) gpu.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.frameTextureViews[binding] = views
	}
}

// WithFrameBuffers binds externally owned uniform buffers, one per slot, instead of allocating
// them. The provider does not release these buffers.
//
// Parameters:
//   - binding: the binding index
//   - buffers: returns the buffer for a slot
//
// Returns:
//   - BindGroupProviderOption: a function that sets the per-slot buffers for the binding
func WithFrameBuffers(binding int, buffers func(slot int) gpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.frameBuffers[binding] = buffers
	}
}
