package configuration

import "strings"

// SplitPaths returns the non empty entries of Paths.
func (c Configuration) SplitPaths() []string {
	paths := []string{}
	for _, p := range strings.Split(c.Paths, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}
