package util

import "golang.org/x/exp/slices"

// AppendUnique appends the values missing from in, skipping empty strings.
func AppendUnique(in []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !slices.Contains(in, v) {
			in = append(in, v)
		}
	}
	return in
}

// Remove returns in without any occurrence of value.
func Remove(in []string, value string) []string {
	return slices.DeleteFunc(slices.Clone(in), func(s string) bool { return s == value })
}
