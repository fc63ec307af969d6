// Package shader loads shader programs from disk and compiles them into modules, substituting
// an embedded placeholder program whenever a shader cannot be read or fails validation.
package shader

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/fallback.wgsl
var fallbackWGSL string

// FallbackWGSL returns the placeholder program compiled in place of failed shaders.
func FallbackWGSL() string {
	return fallbackWGSL
}

// Dialect identifies the format a shader is authored in.
type Dialect int

const (
	// DialectWGSL is WGSL source text.
	DialectWGSL Dialect = iota

	// DialectSPIRV is a pre-compiled SPIR-V binary.
	DialectSPIRV
)

func (d Dialect) String() string {
	switch d {
	case DialectWGSL:
		return "wgsl"
	case DialectSPIRV:
		return "spirv"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// Metadata is the identity of a shader: a name derived from its path, the path, and its dialect.
type Metadata struct {
	Name    string
	Path    string
	Dialect Dialect
}

// Source holds a shader's metadata and, unless it is in the fallback state, its bytes.
// A Source has a single owner and is not safe for concurrent use.
type Source struct {
	metadata Metadata
	// payload is nil in the fallback state.
	payload []byte
}

// Load reads a shader from path. Read and decode failures are not returned: the Source is
// placed in the fallback state instead, which callers observe through IsFallback.
//
// Parameters:
//   - path: the file to read
//   - dialect: how to read it; WGSL must be valid UTF-8 text, SPIR-V is read as raw bytes
//
// Returns:
//   - *Source: the loaded or fallback source
func Load(path string, dialect Dialect) *Source {
	s := &Source{
		metadata: Metadata{
			Name:    common.Coalesce(common.NameFromPath(path), path),
			Path:    path,
			Dialect: dialect,
		},
	}

	payload, err := readPayload(path, dialect)
	if err != nil {
		common.Logger().Warn("shader: load failed, using fallback", "name", s.metadata.Name, "path", path, "error", err)
		return s
	}
	s.payload = payload
	common.Logger().Debug("shader: loaded", "name", s.metadata.Name, "path", path, "dialect", dialect, "bytes", len(payload))
	return s
}

// LoadWGSL reads a WGSL shader from path. See Load.
func LoadWGSL(path string) *Source {
	return Load(path, DialectWGSL)
}

// LoadSPIRV reads a SPIR-V shader from path. See Load.
func LoadSPIRV(path string) *Source {
	return Load(path, DialectSPIRV)
}

func readPayload(path string, dialect Dialect) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if dialect == DialectWGSL && !utf8.Valid(data) {
		return nil, fmt.Errorf("shader: %s is not valid UTF-8", path)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// Reload re-reads the shader from the path and dialect given at load time, replacing the
// whole state. A file that has disappeared leaves the Source in the fallback state.
func (s *Source) Reload() {
	*s = *Load(s.metadata.Path, s.metadata.Dialect)
}

// IsFallback reports whether the Source holds no payload.
//
// Returns:
//   - bool: true if loading failed or MakeFallback was called
func (s *Source) IsFallback() bool {
	return s.payload == nil
}

// MakeFallback drops the payload, typically after the shader failed to compile.
func (s *Source) MakeFallback() {
	s.payload = nil
}

// Metadata returns the shader's identity.
func (s *Source) Metadata() Metadata {
	return s.metadata
}

// Name returns the shader's name.
func (s *Source) Name() string {
	return s.metadata.Name
}

// Dialect returns the shader's dialect.
func (s *Source) Dialect() Dialect {
	return s.metadata.Dialect
}

// Text returns the WGSL source text.
// Callers must check IsFallback and Dialect first: calling Text on a fallback or SPIR-V
// source is a programming error and panics.
//
// Returns:
//   - string: the WGSL source
func (s *Source) Text() string {
	if s.metadata.Dialect != DialectWGSL {
		panic(fmt.Sprintf("shader: can't get source text for binary %s shader %q", s.metadata.Dialect, s.metadata.Name))
	}
	if s.IsFallback() {
		panic(fmt.Sprintf("shader: can't get source text for fallback shader %q", s.metadata.Name))
	}
	return string(s.payload)
}

// Words returns the SPIR-V binary as little-endian 32-bit words.
// Calling Words on a fallback or WGSL source, or on a payload whose length is not a
// multiple of four, panics.
//
// Returns:
//   - []uint32: the SPIR-V words
func (s *Source) Words() []uint32 {
	if s.metadata.Dialect != DialectSPIRV {
		panic(fmt.Sprintf("shader: can't get source words for %s shader %q", s.metadata.Dialect, s.metadata.Name))
	}
	if s.IsFallback() {
		panic(fmt.Sprintf("shader: can't get source words for fallback shader %q", s.metadata.Name))
	}
	if len(s.payload)%4 != 0 {
		panic(fmt.Sprintf("shader: SPIR-V shader %q is %d bytes, not a whole number of words", s.metadata.Name, len(s.payload)))
	}
	words := make([]uint32, len(s.payload)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(s.payload[i*4:])
	}
	return words
}

// descriptor returns the module descriptor for the current state.
func (s *Source) descriptor() *wgpu.ShaderModuleDescriptor {
	if s.IsFallback() {
		return s.FallbackDescriptor()
	}
	switch s.metadata.Dialect {
	case DialectWGSL:
		return &wgpu.ShaderModuleDescriptor{
			Label: s.metadata.Name,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: s.Text(),
			},
		}
	default:
		panic(fmt.Sprintf("shader: compiling %s shader %q is not implemented", s.metadata.Dialect, s.metadata.Name))
	}
}

// FallbackDescriptor returns the descriptor of the placeholder program, labelled with this
// shader's name.
//
// Returns:
//   - *wgpu.ShaderModuleDescriptor: the placeholder module descriptor
func (s *Source) FallbackDescriptor() *wgpu.ShaderModuleDescriptor {
	return &wgpu.ShaderModuleDescriptor{
		Label: s.metadata.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fallbackWGSL,
		},
	}
}
