package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string // Scalar type, or the element type of a list
	IsList   bool
	ListType string // For list properties, the type of the count
}

// PLYElement is a header element block such as "vertex" or "face"
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string
	Elements []PLYElement
}

// PLYData contains the mesh data loaded from a PLY file
type PLYData struct {
	Vertices []core.Vec3 // Vertex positions
	Faces    []int       // Triangle indices (3 per triangle)
	Normals  []core.Vec3 // Per-vertex normals, empty if not present
	Colors   []core.Vec3 // Per-vertex colors in [0,1], empty if not present
}

// plyReader yields one numeric value at a time in file order
type plyReader interface {
	scalar(dataType string) (float64, error)
}

// LoadPLY loads an ASCII or binary PLY file
func LoadPLY(filename string) (*PLYData, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	logger.Debugf("loaded %s: %d vertices, %d triangles in %v",
		filename, len(data.Vertices), len(data.Faces)/3, time.Since(startTime))
	return data, nil
}

// ReadPLY parses PLY data from r
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values plyReader
	switch header.Format {
	case "ascii":
		values = &asciiReader{reader: reader}
	case "binary_little_endian":
		values = &binaryReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryReader{reader: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %q", header.Format)
	}

	data := &PLYData{}
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			err = readVertices(values, element, data)
		case "face":
			err = readFaces(values, element, data)
		default:
			err = skipElement(values, element)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s element: %w", element.Name, err)
		}
	}

	for _, index := range data.Faces {
		if index < 0 || index >= len(data.Vertices) {
			return nil, fmt.Errorf("face index %d out of range (%d vertices)", index, len(data.Vertices))
		}
	}
	return data, nil
}

// parsePLYHeader reads up to and including the end_header line
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("missing ply magic number")
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("unterminated header: %w", err)
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, fmt.Errorf("missing format line")
			}
			return header, nil
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line: %q", strings.TrimSpace(line))
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("property before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			element := &header.Elements[len(header.Elements)-1]
			element.Properties = append(element.Properties, prop)
		default:
			return nil, fmt.Errorf("unknown header keyword: %s", parts[0])
		}
	}
}

// parsePLYProperty parses the words after "property"
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) >= 4 && parts[0] == "list" {
		if typeSize(parts[1]) == 0 || typeSize(parts[2]) == 0 {
			return PLYProperty{}, fmt.Errorf("invalid list property types: %s %s", parts[1], parts[2])
		}
		return PLYProperty{Name: parts[3], Type: parts[2], IsList: true, ListType: parts[1]}, nil
	}
	if len(parts) >= 2 && typeSize(parts[0]) > 0 {
		return PLYProperty{Name: parts[1], Type: parts[0]}, nil
	}
	return PLYProperty{}, fmt.Errorf("invalid property definition: %v", parts)
}

// typeSize returns the byte size of a PLY scalar type, or 0 if unknown
func typeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

func readVertices(values plyReader, element PLYElement, data *PLYData) error {
	index := make(map[string]int, len(element.Properties))
	for i, prop := range element.Properties {
		index[prop.Name] = i
	}
	has := func(names ...string) bool {
		for _, name := range names {
			if _, ok := index[name]; !ok {
				return false
			}
		}
		return true
	}
	if !has("x", "y", "z") {
		return fmt.Errorf("vertex element lacks x, y and z")
	}
	hasNormals := has("nx", "ny", "nz")
	hasColors := has("red", "green", "blue")

	row := make([]float64, len(element.Properties))
	for v := 0; v < element.Count; v++ {
		for i, prop := range element.Properties {
			if prop.IsList {
				if err := skipList(values, prop); err != nil {
					return err
				}
				continue
			}
			value, err := values.scalar(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", v, err)
			}
			row[i] = value
		}

		vec := func(a, b, c string) core.Vec3 {
			return core.NewVec3(row[index[a]], row[index[b]], row[index[c]])
		}
		data.Vertices = append(data.Vertices, vec("x", "y", "z"))
		if hasNormals {
			data.Normals = append(data.Normals, vec("nx", "ny", "nz"))
		}
		if hasColors {
			color := vec("red", "green", "blue")
			if element.Properties[index["red"]].Type == "uchar" || element.Properties[index["red"]].Type == "uint8" {
				color = color.Divide(255)
			}
			data.Colors = append(data.Colors, color)
		}
	}
	return nil
}

func readFaces(values plyReader, element PLYElement, data *PLYData) error {
	polygons := 0
	for f := 0; f < element.Count; f++ {
		for _, prop := range element.Properties {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipProperty(values, prop); err != nil {
					return err
				}
				continue
			}

			count, err := values.scalar(prop.ListType)
			if err != nil {
				return fmt.Errorf("face %d: %w", f, err)
			}
			indices := make([]int, int(count))
			for i := range indices {
				value, err := values.scalar(prop.Type)
				if err != nil {
					return fmt.Errorf("face %d: %w", f, err)
				}
				indices[i] = int(value)
			}
			if len(indices) < 3 {
				continue
			}
			if len(indices) > 3 {
				polygons++
			}
			// Fan triangulation
			for i := 1; i+1 < len(indices); i++ {
				data.Faces = append(data.Faces, indices[0], indices[i], indices[i+1])
			}
		}
	}
	if polygons > 0 {
		logger.Warningf("triangulated %d faces with more than 3 vertices", polygons)
	}
	return nil
}

func skipElement(values plyReader, element PLYElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if err := skipProperty(values, prop); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipProperty(values plyReader, prop PLYProperty) error {
	if prop.IsList {
		return skipList(values, prop)
	}
	_, err := values.scalar(prop.Type)
	return err
}

func skipList(values plyReader, prop PLYProperty) error {
	count, err := values.scalar(prop.ListType)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := values.scalar(prop.Type); err != nil {
			return err
		}
	}
	return nil
}

// asciiReader reads whitespace separated values
type asciiReader struct {
	reader *bufio.Reader
}

func (a *asciiReader) scalar(string) (float64, error) {
	var word []byte
	for {
		b, err := a.reader.ReadByte()
		if err != nil {
			if err == io.EOF && len(word) > 0 {
				break
			}
			return 0, fmt.Errorf("unexpected end of data: %w", err)
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			if len(word) > 0 {
				break
			}
			continue
		}
		word = append(word, b)
	}
	return strconv.ParseFloat(string(word), 64)
}

// binaryReader reads fixed size values in the file's byte order
type binaryReader struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (b *binaryReader) scalar(dataType string) (float64, error) {
	size := typeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unknown PLY type %q", dataType)
	}
	buf := b.buf[:size]
	if _, err := io.ReadFull(b.reader, buf); err != nil {
		return 0, fmt.Errorf("unexpected end of data: %w", err)
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default:
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}

// Mesh builds a triangle mesh object. Vertex colors, when present, become
// per-vertex diffuse materials derived from mat.
func (d *PLYData) Mesh(name string, mat *material.Material, options *geometry.MeshOptions) (*geometry.Object, error) {
	opts := geometry.MeshOptions{}
	if options != nil {
		opts = *options
	}
	if len(opts.Normals) == 0 && len(d.Normals) == len(d.Vertices) {
		opts.Normals = d.Normals
	}
	if len(opts.Materials) == 0 && len(d.Colors) == len(d.Vertices) && len(d.Colors) > 0 {
		opts.Materials = make([]*material.Material, len(d.Colors))
		for i, color := range d.Colors {
			m := *mat
			m.Diffuse = color
			opts.Materials[i] = &m
		}
	}
	return geometry.NewTriangleMesh(name, d.Vertices, d.Faces, mat, &opts)
}
