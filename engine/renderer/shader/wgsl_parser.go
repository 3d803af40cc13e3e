package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps WGSL type names to their corresponding wgpu vertex format.
var wgslVertexFormatMap = map[string]wgpu.VertexFormat{
	"f32":       wgpu.VertexFormatFloat32,
	"vec2f":     wgpu.VertexFormatFloat32x2,
	"vec2<f32>": wgpu.VertexFormatFloat32x2,
	"vec3f":     wgpu.VertexFormatFloat32x3,
	"vec3<f32>": wgpu.VertexFormatFloat32x3,
	"vec4f":     wgpu.VertexFormatFloat32x4,
	"vec4<f32>": wgpu.VertexFormatFloat32x4,
	"i32":       wgpu.VertexFormatSint32,
	"u32":       wgpu.VertexFormatUint32,
}

// wgslTypeAliases expands the predeclared vector shorthands so stage types compare by spelling.
var wgslTypeAliases = map[string]string{
	"vec2f": "vec2<f32>",
	"vec3f": "vec3<f32>",
	"vec4f": "vec4<f32>",
	"vec2i": "vec2<i32>",
	"vec3i": "vec3<i32>",
	"vec4i": "vec4<i32>",
	"vec2u": "vec2<u32>",
	"vec3u": "vec3<u32>",
	"vec4u": "vec4<u32>",
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a field or parameter: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)`)

	// attributeRegex strips leading attributes from a return clause
	attributeRegex = regexp.MustCompile(`@\w+(?:\([^)]*\))?\s*`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
)

// parseEntryPoint extracts the entry point function name for the given shader type.
// Returns an empty string if no matching stage attribute is found.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - shaderType: the stage to search for
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, shaderType ShaderType) string {
	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}
	if match := re.FindStringSubmatch(source); match != nil {
		return match[1]
	}
	return ""
}

// parseFunction locates "fn name(" and splits the signature into parameters and return clause.
// Parentheses are balanced manually because parameter attributes such as @location(0) nest inside the list.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - name: the function name
//
// Returns:
//   - parsedFunction: the parsed signature
//   - bool: false if the function was not found or its parameter list is unterminated
func parseFunction(source, name string) (parsedFunction, bool) {
	loc := regexp.MustCompile(`\bfn\s+` + regexp.QuoteMeta(name) + `\s*\(`).FindStringIndex(source)
	if loc == nil {
		return parsedFunction{}, false
	}
	start := loc[1]
	depth := 1
	end := -1
	for i := start; i < len(source) && end < 0; i++ {
		switch source[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
			}
		}
	}
	if end < 0 {
		return parsedFunction{}, false
	}

	fn := parsedFunction{name: name, returnLoc: -1}
	fn.params = parseFields(source[start:end])

	rest := source[end+1:]
	if brace := strings.IndexByte(rest, '{'); brace >= 0 {
		rest = rest[:brace]
	}
	if arrow := strings.Index(rest, "->"); arrow >= 0 {
		clause := strings.TrimSpace(rest[arrow+2:])
		if m := locationRegex.FindStringSubmatch(clause); m != nil {
			fn.returnLoc, _ = strconv.Atoi(m[1])
		}
		fn.returnType = strings.TrimSpace(attributeRegex.ReplaceAllString(clause, ""))
	}
	return fn, true
}

// parseVertexInputs reflects the vertex stage inputs of the entry point, expanding struct-typed
// parameters into their @location fields. Builtin inputs are skipped. Results are sorted by location.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - entryPoint: the vertex entry point name
//
// Returns:
//   - []VertexInput: the reflected inputs
func parseVertexInputs(source, entryPoint string) []VertexInput {
	fn, ok := parseFunction(source, entryPoint)
	if !ok {
		return nil
	}
	structs := structsByName(parseStructBlocks(source))

	var inputs []VertexInput
	add := func(f parsedField) {
		if f.isBuiltin || f.location < 0 {
			return
		}
		inputs = append(inputs, VertexInput{
			Name:     f.name,
			Location: uint32(f.location),
			TypeName: f.typeName,
			Format:   wgslVertexFormatMap[f.typeName],
		})
	}
	for _, p := range fn.params {
		if ps, isStruct := structs[p.typeName]; isStruct && p.location < 0 && !p.isBuiltin {
			for _, f := range ps.fields {
				add(f)
			}
			continue
		}
		add(p)
	}
	sort.SliceStable(inputs, func(i, j int) bool {
		return inputs[i].Location < inputs[j].Location
	})
	return inputs
}

// parseFragmentOutputs reflects the color outputs of the fragment entry point: either the @location
// fields of its returned struct, or a single unnamed output for a bare @location return.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - entryPoint: the fragment entry point name
//
// Returns:
//   - []FragmentOutput: the reflected outputs, sorted by location
func parseFragmentOutputs(source, entryPoint string) []FragmentOutput {
	fn, ok := parseFunction(source, entryPoint)
	if !ok || fn.returnType == "" {
		return nil
	}
	if fn.returnLoc >= 0 {
		return []FragmentOutput{{Location: uint32(fn.returnLoc), TypeName: fn.returnType}}
	}
	ps, ok := structsByName(parseStructBlocks(source))[fn.returnType]
	if !ok {
		return nil
	}
	var outputs []FragmentOutput
	for _, f := range ps.fields {
		if f.isBuiltin || f.location < 0 {
			continue
		}
		outputs = append(outputs, FragmentOutput{Name: f.name, Location: uint32(f.location), TypeName: f.typeName})
	}
	sort.SliceStable(outputs, func(i, j int) bool {
		return outputs[i].Location < outputs[j].Location
	})
	return outputs
}

// parseVertexOutputs reflects the @location outputs of the vertex entry point's returned struct.
// The builtin position is not an inter-stage value and is skipped.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - entryPoint: the vertex entry point name
//
// Returns:
//   - []StageVariable: the reflected outputs, sorted by location
func parseVertexOutputs(source, entryPoint string) []StageVariable {
	fn, ok := parseFunction(source, entryPoint)
	if !ok || fn.returnType == "" {
		return nil
	}
	if fn.returnLoc >= 0 {
		return []StageVariable{{Location: uint32(fn.returnLoc), TypeName: canonicalTypeName(fn.returnType)}}
	}
	ps, ok := structsByName(parseStructBlocks(source))[fn.returnType]
	if !ok {
		return nil
	}
	return stageVariables(ps.fields)
}

// parseFragmentInputs reflects the @location inputs of the fragment entry point, expanding
// struct-typed parameters into their fields.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - entryPoint: the fragment entry point name
//
// Returns:
//   - []StageVariable: the reflected inputs, sorted by location
func parseFragmentInputs(source, entryPoint string) []StageVariable {
	fn, ok := parseFunction(source, entryPoint)
	if !ok {
		return nil
	}
	structs := structsByName(parseStructBlocks(source))
	var fields []parsedField
	for _, p := range fn.params {
		if ps, isStruct := structs[p.typeName]; isStruct && p.location < 0 && !p.isBuiltin {
			fields = append(fields, ps.fields...)
			continue
		}
		fields = append(fields, p)
	}
	return stageVariables(fields)
}

func stageVariables(fields []parsedField) []StageVariable {
	var vars []StageVariable
	for _, f := range fields {
		if f.isBuiltin || f.location < 0 {
			continue
		}
		vars = append(vars, StageVariable{Name: f.name, Location: uint32(f.location), TypeName: canonicalTypeName(f.typeName)})
	}
	sort.SliceStable(vars, func(i, j int) bool {
		return vars[i].Location < vars[j].Location
	})
	return vars
}

func canonicalTypeName(typeName string) string {
	t := strings.Join(strings.Fields(typeName), "")
	if alias, ok := wgslTypeAliases[t]; ok {
		return alias
	}
	return t
}

// parseStructBlocks finds all struct { ... } blocks in the source and parses their fields.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source, in declaration order
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseFields(match[2]),
		})
	}
	return structs
}

func structsByName(structs []parsedStruct) map[string]parsedStruct {
	out := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		out[ps.name] = ps
	}
	return out
}

// parseFields parses a comma separated list of struct fields or function parameters,
// extracting @location and @builtin attributes along with the name and type.
//
// Parameters:
//   - body: a struct body or parameter list
//
// Returns:
//   - []parsedField: the fields in declaration order
func parseFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field := parsedField{location: -1}
		if builtinRegex.MatchString(part) {
			field.isBuiltin = true
		}
		if m := locationRegex.FindStringSubmatch(part); m != nil {
			if loc, err := strconv.Atoi(m[1]); err == nil {
				field.location = loc
			}
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}
	return fields
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets or parentheses,
// so types like array<T, 4> and attributes like @interpolate(flat, either) stay whole.
//
// Parameters:
//   - s: the string to split
//
// Returns:
//   - []string: substrings between top-level commas
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes line (//) and nested block (/* */) comments from WGSL source.
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source with all comments removed
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			pair := source[i : i+2]
			switch {
			case pair == "/*":
				depth++
				i++
				continue
			case pair == "*/" && depth > 0:
				depth--
				i++
				continue
			case pair == "//" && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
