package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// OBJ format errors.
var (
	ErrOBJSyntax    = errors.New("malformed OBJ line")
	ErrOBJFaceIndex = errors.New("OBJ face index out of range")
)

// OBJ is a triangulated Wavefront OBJ mesh. Every distinct position, texture
// coordinate and normal combination referenced by a face becomes its own
// vertex, so UV and normal seams show up as duplicated positions.
type OBJ struct {
	Name      string
	Positions []math.Vec3
	UVs       []math.Vec2 // empty unless every face corner had a texture coordinate
	Normals   []math.Vec3 // empty unless every face corner had a normal
	Indices   []uint32
	Warnings  []string
}

// objCorner is one v/vt/vn reference, 0-based, -1 when absent.
type objCorner struct {
	v, vt, vn int
}

type objParser struct {
	line int

	positions []math.Vec3
	uvs       []math.Vec2
	normals   []math.Vec3

	out      *OBJ
	vertices map[objCorner]uint32
	corners  []objCorner
}

// LoadOBJ reads and parses an OBJ file from disk.
func LoadOBJ(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// ParseOBJ parses OBJ data. Polygons are fan-triangulated. Supported
// statements are v, vt, vn, f and o; others are recorded as warnings.
func ParseOBJ(data []byte) (*OBJ, error) {
	p := &objParser{
		out:      &OBJ{},
		vertices: make(map[objCorner]uint32),
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}

	p.finish()
	return p.out, nil
}

func (p *objParser) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := p.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
	case "vt":
		v, err := p.parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, math.Vec2{X: v[0], Y: v[1]})
	case "vn":
		v, err := p.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
	case "f":
		return p.parseFace(fields[1:])
	case "o":
		if len(fields) > 1 && p.out.Name == "" {
			p.out.Name = strings.Join(fields[1:], " ")
		}
	default:
		p.warn("statement not supported: " + fields[0])
	}
	return nil
}

func (p *objParser) parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, p.errorf(ErrOBJSyntax, "expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, p.errorf(ErrOBJSyntax, "bad number %q", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFace parses f v1[/vt1][/vn1] v2... and fan-triangulates it.
func (p *objParser) parseFace(fields []string) error {
	if len(fields) < 3 {
		return p.errorf(ErrOBJSyntax, "face with %d vertices", len(fields))
	}
	idx := make([]uint32, len(fields))
	for i, f := range fields {
		c, err := p.parseCorner(f)
		if err != nil {
			return err
		}
		idx[i] = p.vertex(c)
	}
	for i := 1; i+1 < len(idx); i++ {
		p.out.Indices = append(p.out.Indices, idx[0], idx[i], idx[i+1])
	}
	return nil
}

func (p *objParser) parseCorner(token string) (objCorner, error) {
	parts := strings.Split(token, "/")
	if len(parts) > 3 || parts[0] == "" {
		return objCorner{}, p.errorf(ErrOBJSyntax, "bad face vertex %q", token)
	}
	c := objCorner{v: -1, vt: -1, vn: -1}
	var err error
	if c.v, err = p.resolve(parts[0], len(p.positions)); err != nil {
		return objCorner{}, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = p.resolve(parts[1], len(p.uvs)); err != nil {
			return objCorner{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = p.resolve(parts[2], len(p.normals)); err != nil {
			return objCorner{}, err
		}
	}
	return c, nil
}

// resolve converts a 1-based or negative relative OBJ index to 0-based.
func (p *objParser) resolve(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.errorf(ErrOBJSyntax, "bad index %q", s)
	}
	switch {
	case n > 0 && n <= count:
		return n - 1, nil
	case n < 0 && -n <= count:
		return count + n, nil
	default:
		return 0, p.errorf(ErrOBJFaceIndex, "index %d with %d elements", n, count)
	}
}

func (p *objParser) vertex(c objCorner) uint32 {
	if idx, ok := p.vertices[c]; ok {
		return idx
	}
	idx := uint32(len(p.corners))
	p.vertices[c] = idx
	p.corners = append(p.corners, c)
	return idx
}

// finish resolves the unique corners into vertex attributes.
func (p *objParser) finish() {
	allUV, allNormal := len(p.corners) > 0, len(p.corners) > 0
	for _, c := range p.corners {
		allUV = allUV && c.vt >= 0
		allNormal = allNormal && c.vn >= 0
	}

	out := p.out
	out.Positions = make([]math.Vec3, len(p.corners))
	if allUV {
		out.UVs = make([]math.Vec2, len(p.corners))
	}
	if allNormal {
		out.Normals = make([]math.Vec3, len(p.corners))
	}
	for i, c := range p.corners {
		out.Positions[i] = p.positions[c.v]
		if allUV {
			out.UVs[i] = p.uvs[c.vt]
		}
		if allNormal {
			out.Normals[i] = p.normals[c.vn]
		}
	}
	if unused := len(p.positions) - len(p.usedPositions()); unused > 0 {
		p.warn(fmt.Sprintf("%d positions not referenced by any face", unused))
	}
}

func (p *objParser) usedPositions() map[int]struct{} {
	used := make(map[int]struct{}, len(p.positions))
	for _, c := range p.corners {
		used[c.v] = struct{}{}
	}
	return used
}

func (p *objParser) errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", p.line, sentinel, fmt.Sprintf(format, args...))
}

func (p *objParser) warn(msg string) {
	p.out.Warnings = append(p.out.Warnings, fmt.Sprintf("line %d: %s", p.line, msg))
}

// SaveOBJ writes o to path.
func SaveOBJ(path string, o *OBJ) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	if err := WriteOBJ(f, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteOBJ writes o as OBJ text with 1-based indices. Attribute indices match
// position indices.
func WriteOBJ(w io.Writer, o *OBJ) error {
	bw := bufio.NewWriter(w)
	hasUV := len(o.UVs) == len(o.Positions) && len(o.UVs) > 0
	hasNormal := len(o.Normals) == len(o.Positions) && len(o.Normals) > 0

	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", len(o.Positions), len(o.Indices)/3)
	if o.Name != "" {
		fmt.Fprintf(bw, "o %s\n", o.Name)
	}
	for _, p := range o.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
	}
	if hasUV {
		for _, uv := range o.UVs {
			fmt.Fprintf(bw, "vt %s %s\n", formatFloat(uv.X), formatFloat(uv.Y))
		}
	}
	if hasNormal {
		for _, n := range o.Normals {
			fmt.Fprintf(bw, "vn %s %s %s\n", formatFloat(n.X), formatFloat(n.Y), formatFloat(n.Z))
		}
	}
	for t := 0; t+2 < len(o.Indices); t += 3 {
		bw.WriteString("f")
		for _, idx := range o.Indices[t : t+3] {
			n := idx + 1
			switch {
			case hasUV && hasNormal:
				fmt.Fprintf(bw, " %d/%d/%d", n, n, n)
			case hasUV:
				fmt.Fprintf(bw, " %d/%d", n, n)
			case hasNormal:
				fmt.Fprintf(bw, " %d//%d", n, n)
			default:
				fmt.Fprintf(bw, " %d", n)
			}
		}
		bw.WriteString("\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing OBJ: %w", err)
	}
	return nil
}

// formatFloat prints the shortest text that parses back to the same float32.
func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
