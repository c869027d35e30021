package timeline

import (
	"slices"
	"strconv"

	"splicer/internal/services"
)

// Well-known transition parameter keys. The vocabulary is open: any other
// non-empty key is passed through to the backend untouched.
const (
	ParamKeyType    = "KeyType"
	ParamHue        = "Hue"
	ParamInvert     = "Invert"
	ParamLuminance  = "Luminance"
	ParamRGB        = "RGB"
	ParamSimilarity = "Similarity"
)

var knownParameters = []string{
	ParamKeyType,
	ParamHue,
	ParamInvert,
	ParamLuminance,
	ParamRGB,
	ParamSimilarity,
}

// KnownParameter reports whether key is part of the well-known vocabulary.
// Comparison is exact.
func KnownParameter(key string) bool {
	return slices.Contains(knownParameters, key)
}

// Parameters maps transition setting names to values. Values are never
// validated; an empty mapping means backend defaults.
type Parameters map[string]string

// Set stores value under key.
func (p *Parameters) Set(key, value string) error {
	if key == "" {
		return services.NewError(services.KindInvalidArgument, "set parameter", "parameter key must be non-empty")
	}
	if *p == nil {
		*p = Parameters{}
	}
	(*p)[key] = value
	return nil
}

func (p *Parameters) SetInt(key string, value int) error {
	return p.Set(key, strconv.Itoa(value))
}

func (p *Parameters) SetFloat(key string, value float64) error {
	return p.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
}

func (p *Parameters) SetBool(key string, value bool) error {
	return p.Set(key, strconv.FormatBool(value))
}

// Get returns the value for key.
func (p Parameters) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// Keys returns the parameter names sorted.
func (p Parameters) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns an independent copy; nil stays nil.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
