package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexLayouts(t *testing.T) {
	color := ColorVertex{}.Layout()
	assert.Equal(t, uint64(20), color.Stride)
	require.Len(t, color.Attributes, 2)
	assert.Equal(t, uint64(0), color.Attributes[0].Offset)
	assert.Equal(t, uint64(8), color.Attributes[1].Offset)
	assert.Equal(t, 20, ColorVertex{}.Size())

	textured := TexturedVertex{}.Layout()
	assert.Equal(t, uint64(24), textured.Stride)
	require.Len(t, textured.Attributes, 2)
	assert.Equal(t, "a_TexCoord", textured.Attributes[1].Name)
	assert.Equal(t, uint64(16), textured.Attributes[1].Offset)
	assert.Equal(t, 24, TexturedVertex{}.Size())
}

func TestNewVertexLayoutRejectsUnknownFormat(t *testing.T) {
	_, err := NewVertexLayout(VertexAttribute{Name: "a_Bad", Format: wgpu.VertexFormat(0)})
	assert.Error(t, err)
}

func TestBufferLayout(t *testing.T) {
	bl := TexturedVertex{}.Layout().BufferLayout()
	assert.Equal(t, uint64(24), bl.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, bl.StepMode)
	require.Len(t, bl.Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, bl.Attributes[0].Format)
	assert.Equal(t, uint32(1), bl.Attributes[1].ShaderLocation)
	assert.Equal(t, uint64(16), bl.Attributes[1].Offset)
}

func TestVertexMarshal(t *testing.T) {
	v := ColorVertex{Pos: [2]float32{-0.5, 0.5}, Color: [3]float32{1, 0, 0.25}}
	buf := v.Marshal()
	require.Len(t, buf, 20)
	assert.Equal(t, float32(-0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))

	tv := TexturedVertex{Pos: [4]float32{1, 2, 3, 1}, TexCoord: [2]float32{0.75, 0.5}}
	tbuf := tv.Marshal()
	require.Len(t, tbuf, 24)
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(tbuf[8:])))
	assert.Equal(t, float32(0.75), math.Float32frombits(binary.LittleEndian.Uint32(tbuf[16:])))
}

func TestTexturedVerticesFromFloats(t *testing.T) {
	verts, err := TexturedVerticesFromFloats([]float32{
		-1, -1, 0, 1, 0, 1,
		1, -1, 0, 1, 1, 1,
	})
	require.NoError(t, err)
	require.Len(t, verts, 2)
	assert.Equal(t, [4]float32{1, -1, 0, 1}, verts[1].Pos)
	assert.Equal(t, [2]float32{1, 1}, verts[1].TexCoord)

	_, err = TexturedVerticesFromFloats([]float32{1, 2, 3, 4, 5})
	assert.Error(t, err)

	empty, err := TexturedVerticesFromFloats(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMarshalIndicesPadding(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint16
		want    int
	}{
		{"even", []uint16{0, 1, 2, 3}, 8},
		{"odd", []uint16{0, 1, 2}, 8},
		{"single", []uint16{7}, 4},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := MarshalIndices(tt.indices)
			assert.Len(t, buf, tt.want)
			for i, idx := range tt.indices {
				assert.Equal(t, idx, binary.LittleEndian.Uint16(buf[i*2:]))
			}
		})
	}
}

func TestMarshalVertices(t *testing.T) {
	verts := []ColorVertex{
		{Pos: [2]float32{0, 0.5}},
		{Pos: [2]float32{-0.5, -0.5}},
		{Pos: [2]float32{0.5, -0.5}},
	}
	buf := MarshalVertices(verts)
	assert.Len(t, buf, 60)
	assert.Equal(t, verts[1].Marshal(), buf[20:40])
	assert.Nil(t, MarshalVertices[ColorVertex](nil))
}

func TestNewModel(t *testing.T) {
	verts := []ColorVertex{{}, {}, {}}

	m, err := NewModel(verts, WithName("triangle"))
	require.NoError(t, err)
	assert.Equal(t, "triangle", m.Name())
	assert.Equal(t, 3, m.VertexCount())
	assert.Len(t, m.VertexData(), 60)
	assert.Nil(t, m.Indices())
	assert.Nil(t, m.IndexData())
	assert.Equal(t, DrawSlice{Count: 3}, m.DrawSlice())

	indexed, err := NewModel(verts, WithIndices([]uint16{0, 1, 2}))
	require.NoError(t, err)
	assert.Equal(t, "model", indexed.Name())
	assert.Equal(t, DrawSlice{Count: 3, Indexed: true}, indexed.DrawSlice())
	assert.Len(t, indexed.IndexData(), 8)
	assert.Equal(t, uint64(20), indexed.Layout().Stride)
}

func TestNewModelIndicesAreCopied(t *testing.T) {
	indices := []uint16{0, 1, 2}
	m, err := NewModel([]ColorVertex{{}, {}, {}}, WithIndices(indices))
	require.NoError(t, err)

	indices[0] = 2
	assert.Equal(t, []uint16{0, 1, 2}, m.Indices())

	out := m.Indices()
	out[1] = 0
	assert.Equal(t, []uint16{0, 1, 2}, m.Indices())
}

func TestVertexDataIsCopied(t *testing.T) {
	m, err := NewModel([]ColorVertex{{Pos: [2]float32{0.5, 0.5}}, {}, {}})
	require.NoError(t, err)

	before := m.VertexData()
	out := m.VertexData()
	for i := range out {
		out[i] = 0xFF
	}
	assert.Equal(t, before, m.VertexData())
}

func TestNewModelErrors(t *testing.T) {
	_, err := NewModel([]TexturedVertex{})
	assert.Error(t, err)

	_, err = NewModel([]ColorVertex{{}, {}, {}}, WithIndices([]uint16{0, 1, 3}))
	assert.ErrorContains(t, err, "out of range")
}
