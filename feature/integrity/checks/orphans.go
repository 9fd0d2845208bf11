package checks

import "sort"

// Orphans returns the stored keys that are not referenced, sorted.
func Orphans(stored []string, referenced map[string]struct{}) []string {
	out := []string{}
	for _, key := range stored {
		if _, ok := referenced[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
