// Package formats provides readers and writers for mesh file formats.
package formats

// Note: Wavefront OBJ (positions, texture coordinates, normals, polygon
// faces) is implemented in obj.go. Materials and groups are not read.
