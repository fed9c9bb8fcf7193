package ast

import "strconv"

// JoinPath appends a mapping key to a dotted field path.
//
//	JoinPath("settings.matrix", "lr") == "settings.matrix.lr"
func JoinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// IndexPath appends a sequence index to a field path.
//
//	IndexPath("model.layers", 2) == "model.layers[2]"
func IndexPath(base string, index int) string {
	return base + "[" + strconv.Itoa(index) + "]"
}

// Section returns the top-level section name of a field path.
func Section(path string) string {
	for i := 0; i < len(path); i++ {
		if path[i] == '.' || path[i] == '[' {
			return path[:i]
		}
	}
	return path
}
