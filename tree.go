package config

import "strings"

// Flatten converts a nested key-value tree to a flat map with dot-notation
// paths. Leaf values are kept as-is; only nested maps are descended into.
func Flatten(tree map[string]any) map[string]any {
	flat := make(map[string]any)
	flatten(tree, "", flat)
	return flat
}

func flatten(tree map[string]any, prefix string, flat map[string]any) {
	for key, value := range tree {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if sub, isMap := value.(map[string]any); isMap {
			flatten(sub, path, flat)
		} else {
			flat[path] = value
		}
	}
}

// navigateToPath traverses a nested tree to reach the node at a dotted
// path. Returns nil if any segment is absent or not a map.
func navigateToPath(tree map[string]any, path string) any {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return tree
	}

	current := any(tree)
	for _, segment := range strings.Split(path, ".") {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}
	return current
}

// joinPath appends a key to a dotted field path.
func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// isValidKeySegment checks if a single tree key is a valid TOML bare key:
// ASCII letters, digits, underscores, and dashes.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
