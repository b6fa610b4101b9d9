package mesh

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-sculpt/pkg/formats"
)

// FromOBJ builds a readable mesh from parsed OBJ data. File normals are kept
// when every vertex has one; otherwise normals are computed.
func FromOBJ(o *formats.OBJ) (*Mesh, error) {
	m := &Mesh{
		Name:      o.Name,
		Positions: o.Positions,
		UVs:       o.UVs,
		Indices:   o.Indices,
		Readable:  true,
	}
	if len(o.Normals) == len(o.Positions) {
		m.Normals = o.Normals
	} else {
		m.RecalculateNormals()
	}
	m.RecalculateBounds()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("obj mesh: %w", err)
	}
	return m, nil
}

// ToOBJ converts the mesh for writing.
func (m *Mesh) ToOBJ() *formats.OBJ {
	return &formats.OBJ{
		Name:      m.Name,
		Positions: m.Positions,
		UVs:       m.UVs,
		Normals:   m.Normals,
		Indices:   m.Indices,
	}
}

// Load reads an OBJ file. The mesh is named after the file when the file
// has no object name.
func Load(path string) (*Mesh, error) {
	o, err := formats.LoadOBJ(path)
	if err != nil {
		return nil, err
	}
	if o.Name == "" {
		o.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return FromOBJ(o)
}

// Save writes the mesh to path as OBJ.
func (m *Mesh) Save(path string) error {
	return formats.SaveOBJ(path, m.ToOBJ())
}

// Primitive builds a named primitive: icosphere, uvsphere or grid. detail is
// the subdivision level, ring count or grid resolution respectively, and
// scale multiplies the positions.
func Primitive(name string, detail int, scale float32) (*Mesh, error) {
	var m *Mesh
	switch strings.ToLower(name) {
	case "icosphere", "":
		m = Icosphere(detail)
	case "uvsphere":
		rings := max(detail*4, 4)
		m = UVSphere(rings, rings*2)
	case "grid":
		m = Grid(max(detail*4, 1), 2)
	default:
		return nil, fmt.Errorf("unknown primitive %q", name)
	}
	m.ScaleBy(scale)
	return m, nil
}

// ScaleBy multiplies all positions by a uniform factor. Non-positive factors
// and 1 leave the mesh unchanged.
func (m *Mesh) ScaleBy(s float32) {
	if s <= 0 || s == 1 {
		return
	}
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Scale(s)
	}
	m.RecalculateBounds()
}

