package catalog

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"nwsc/types"
)

// fileSchema is the YAML layout of a catalog file
type fileSchema struct {
	Constants []constantSchema `yaml:"constants"`
	Externals []routineSchema  `yaml:"externals"`
}

type constantSchema struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

type routineSchema struct {
	Name    string        `yaml:"name"`
	Returns string        `yaml:"returns,omitempty"` // empty means void
	Params  []paramSchema `yaml:"params,omitempty"`
}

type paramSchema struct {
	Name    string  `yaml:"name"`
	Type    string  `yaml:"type"`
	Default *string `yaml:"default,omitempty"`
}

// Load reads a catalog from a YAML file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse builds a catalog from YAML bytes
func Parse(data []byte) (*Catalog, error) {
	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, err
	}

	cat := New()
	for _, ks := range schema.Constants {
		typ, err := parseTypeName(ks.Type)
		if err != nil {
			return nil, fmt.Errorf("constant %s: %w", ks.Name, err)
		}
		v, err := parseValue(typ, ks.Value)
		if err != nil {
			return nil, fmt.Errorf("constant %s: %w", ks.Name, err)
		}
		if err := cat.AddConstant(ks.Name, v); err != nil {
			return nil, err
		}
	}

	for _, rs := range schema.Externals {
		returns := types.Void
		if rs.Returns != "" {
			var err error
			returns, err = parseTypeName(rs.Returns)
			if err != nil {
				return nil, fmt.Errorf("external %s: %w", rs.Name, err)
			}
		}
		params := make([]Param, 0, len(rs.Params))
		for _, ps := range rs.Params {
			pt, err := parseTypeName(ps.Type)
			if err != nil {
				return nil, fmt.Errorf("external %s, parameter %s: %w", rs.Name, ps.Name, err)
			}
			p := Param{Name: ps.Name, Type: pt}
			if ps.Default != nil {
				p.Default = *ps.Default
				p.HasDefault = true
			}
			params = append(params, p)
		}
		if _, err := cat.AddRoutine(rs.Name, returns, params...); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// parseTypeName maps a YAML type string to a DataType
func parseTypeName(name string) (types.DataType, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "void", "":
		return types.Void, nil
	case "int":
		return types.Int, nil
	case "float":
		return types.Float, nil
	case "string":
		return types.String, nil
	case "object":
		return types.Object, nil
	case "vector":
		return types.Vector, nil
	case "action":
		return types.Action, nil
	}
	if rest, ok := strings.CutPrefix(name, "struct "); ok {
		return types.StructType(strings.TrimSpace(rest)), nil
	}
	return types.Void, fmt.Errorf("unknown type name %q", name)
}

// parseValue decodes a constant's literal text by its declared type
func parseValue(typ types.DataType, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch typ.Kind {
	case types.KindInt:
		v, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			return Value{}, fmt.Errorf("bad int literal %q", raw)
		}
		return IntValue(int(v)), nil
	case types.KindFloat:
		v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "f"), 64)
		if err != nil {
			return Value{}, fmt.Errorf("bad float literal %q", raw)
		}
		return FloatValue(v), nil
	case types.KindString:
		return StringValue(raw), nil
	case types.KindObject:
		v, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			return Value{}, fmt.Errorf("bad object id %q", raw)
		}
		return ObjectValue(int(v)), nil
	case types.KindVector:
		parts := strings.Split(strings.Trim(raw, "[]"), ",")
		if len(parts) != 3 {
			return Value{}, fmt.Errorf("bad vector literal %q", raw)
		}
		var vec [3]float64
		for i, part := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return Value{}, fmt.Errorf("bad vector literal %q", raw)
			}
			vec[i] = f
		}
		return VectorValue(vec[0], vec[1], vec[2]), nil
	default:
		return Value{}, fmt.Errorf("constants of type %s are not supported", typ)
	}
}
