package config

import "sort"

// Presets are named system coefficient sets. Both ends of a transmission must
// use the same one.
var Presets = map[string]SystemConfig{
	"default": {R: 60, Sigma: 10, B: 8.0 / 3.0},
	"circuit": {R: 45.6, Sigma: 16, B: 4},
	"classic": {R: 28, Sigma: 10, B: 8.0 / 3.0},
	"wide":    {R: 99.96, Sigma: 10, B: 8.0 / 3.0},
}

// ApplyPreset replaces the system coefficients with the named preset.
func (c *Config) ApplyPreset(name string) bool {
	sys, ok := Presets[name]
	if !ok {
		return false
	}
	c.System = sys
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
