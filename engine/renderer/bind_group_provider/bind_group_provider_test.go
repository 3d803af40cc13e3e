package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-frames/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProviderIsEmpty(t *testing.T) {
	p := NewBindGroupProvider("cube")

	assert.Equal(t, "cube", p.Label())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.Sampler(2))
	assert.Nil(t, p.Texture(1))
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.VertexBuffer())
	assert.Equal(t, model.DrawSlice{}, p.DrawSlice())
}

func TestSettersReplaceResources(t *testing.T) {
	p := NewBindGroupProvider("model")

	tex := &wgpu.Texture{}
	view := &wgpu.TextureView{}
	p.SetTexture(1, tex, view)
	assert.Same(t, tex, p.Texture(1))
	assert.Same(t, view, p.TextureView(1))

	s := &wgpu.Sampler{}
	p.SetSampler(2, s)
	assert.Same(t, s, p.Sampler(2))

	bg := &wgpu.BindGroup{}
	p.SetBindGroup(bg)
	assert.Same(t, bg, p.BindGroup())

	buf := &wgpu.Buffer{}
	p.SetBuffer(0, buf)
	assert.Same(t, buf, p.Buffer(0))

	vb, ib := &wgpu.Buffer{}, &wgpu.Buffer{}
	slice := model.DrawSlice{Count: 36, Indexed: true}
	p.SetMesh(vb, ib, slice)
	assert.Same(t, vb, p.VertexBuffer())
	assert.Same(t, ib, p.IndexBuffer())
	assert.Equal(t, slice, p.DrawSlice())

	p.SetMesh(vb, nil, model.DrawSlice{Count: 3})
	assert.Nil(t, p.IndexBuffer())
	assert.False(t, p.DrawSlice().Indexed)
}
