package ignore

// ImplicitDirs are never entered by wildcard traversal, matching how the
// analysis host expands "**" in include patterns.
var ImplicitDirs = []string{
	"node_modules",
	"bower_components",
	"jspm_packages",
}

// isImplicitDir reports whether a directory name is skipped by wildcard
// traversal. Dot-directories (.git, .cache, ...) are skipped as well.
func isImplicitDir(name string) bool {
	if len(name) > 1 && name[0] == '.' && name != ".." {
		return true
	}
	for _, dir := range ImplicitDirs {
		if name == dir {
			return true
		}
	}
	return false
}
