package reps

// StaticAliases returns the built-in representative alias table. The table
// holds no entries, so an account resolves to its raw id unless aliases
// are merged on top of it (see MergeAliases) before handing it to
// NewRegistry.
func StaticAliases() map[string]string {
	return map[string]string{}
}

// MergeAliases layers additional aliases over base, with additional taking
// precedence, returning a new map.
func MergeAliases(base, additional map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(additional))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range additional {
		out[k] = v
	}
	return out
}
