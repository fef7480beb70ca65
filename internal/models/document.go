package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// newDocumentID returns an opaque identifier for metadata documents.
func newDocumentID() string {
	return uuid.NewString()
}

// StringMap copies a JSON map column into a string keyed and valued map.
// Non-string values are formatted with fmt so numeric ids survive round trips.
func StringMap(data datatypes.JSONMap) map[string]string {
	result := make(map[string]string, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			result[key] = strings.TrimSpace(v)
		case float64:
			result[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			result[key] = fmt.Sprint(v)
		}
	}
	return result
}

// JSONMapFromStrings converts a string map into a JSON map column value.
func JSONMapFromStrings(values map[string]string) datatypes.JSONMap {
	data := datatypes.JSONMap{}
	for key, value := range values {
		data[key] = value
	}
	return data
}

// SortedKeys returns the keys of a string map in ascending order.
func SortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
