// Package renderer draws the sculpted mesh with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sculpt/internal/engine/lighting"
	"github.com/Faultbox/midgard-sculpt/internal/engine/shader"
	"github.com/Faultbox/midgard-sculpt/internal/logger"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// floatsPerVertex is position (3) + normal (3).
const floatsPerVertex = 6

const vertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uViewProj;

out vec3 vNormal;

void main() {
	vNormal = mat3(uModel) * aNormal;
	gl_Position = uViewProj * uModel * vec4(aPos, 1.0);
}
`

const fragmentShader = `
#version 410 core

in vec3 vNormal;
out vec4 FragColor;

uniform vec3 uLightDir;
uniform vec3 uColor;
uniform float uAmbient;

void main() {
	vec3 n = normalize(vNormal);
	if (!gl_FrontFacing) {
		n = -n;
	}
	float diffuse = max(dot(n, -normalize(uLightDir)), 0.0);
	FragColor = vec4(uColor * (uAmbient + (1.0 - uAmbient) * diffuse), 1.0);
}
`

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer uploads one mesh to the GPU and draws it lit.
type Renderer struct {
	config  Config
	program *shader.Program
	log     *zap.Logger

	vao, vbo, ebo uint32
	indexCount    int32
	revision      uint64
	uploaded      bool
	scratch       []float32

	Wireframe bool
	LightDir  math.Vec3
	Color     math.Vec3
}

// New creates a renderer. It must be called after the OpenGL context exists.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{
		config:   cfg,
		log:      logger.Named("renderer"),
		LightDir: lighting.Incoming(135, 50),
		Color:    math.Vec3{X: 0.78, Y: 0.74, Z: 0.7},
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.Compile(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)

	return r, nil
}

// Close frees GPU resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Invalidate forces the next Upload to copy buffers even if the revision is unchanged.
func (r *Renderer) Invalidate() {
	r.uploaded = false
}

// Upload copies the mesh to the GPU when revision differs from the last upload.
// It reports whether buffers were written.
func (r *Renderer) Upload(m *mesh.Mesh, revision uint64) bool {
	if r.uploaded && revision == r.revision {
		return false
	}
	r.scratch = interleave(r.scratch[:0], m.Positions, m.Normals)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	if len(r.scratch) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(r.scratch)*4, gl.Ptr(r.scratch), gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	if len(m.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.DYNAMIC_DRAW)
	}
	gl.BindVertexArray(0)

	r.indexCount = int32(len(m.Indices))
	r.revision = revision
	r.uploaded = true
	return true
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders the uploaded mesh.
func (r *Renderer) Draw(model, viewProj math.Mat4) {
	if r.indexCount == 0 {
		return
	}
	r.program.Use()
	r.program.SetMat4("uModel", model)
	r.program.SetMat4("uViewProj", viewProj)
	r.program.SetVec3("uLightDir", r.LightDir)
	r.program.SetVec3("uColor", r.Color)
	r.program.SetFloat("uAmbient", 0.25)

	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	gl.BindVertexArray(r.vao)
	gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, unsafe.Pointer(nil))
	gl.BindVertexArray(0)
}

// End finishes the current frame.
func (r *Renderer) End() {}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// interleave packs positions and normals as consecutive xyz triples. Missing
// normals are written as zero.
func interleave(dst []float32, positions, normals []math.Vec3) []float32 {
	for i, p := range positions {
		var n math.Vec3
		if i < len(normals) {
			n = normals[i]
		}
		dst = append(dst, p.X, p.Y, p.Z, n.X, n.Y, n.Z)
	}
	return dst
}
