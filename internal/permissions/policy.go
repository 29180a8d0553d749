package permissions

import "alors/internal/logging"

// Policy bundles the sandbox lists a tool call is checked against.
type Policy struct {
	AccessiblePaths        []string
	IgnoredPaths           []string
	AllowedCommandPrefixes []string
}

// CheckPath rejects paths outside the accessible roots and ignored paths.
func (p Policy) CheckPath(path string) error {
	var err error
	if IsPathIgnored(path, p.IgnoredPaths) {
		err = denial(ErrPathIgnored, "Operation on path '%s' is not allowed. It matches one of the ignored paths: %s.",
			path, formatList(p.IgnoredPaths))
	} else {
		err = IsPathAccessible(path, p.AccessiblePaths)
	}
	audit("path", path, err)
	return err
}

// CheckCommand rejects commands outside the prefix whitelist.
func (p Policy) CheckCommand(command string) error {
	err := IsCommandAllowed(command, p.AllowedCommandPrefixes)
	audit("command", command, err)
	return err
}

// Ignored reports whether path should be hidden from listings.
func (p Policy) Ignored(path string) bool {
	return IsPathIgnored(path, p.IgnoredPaths)
}

func audit(kind, target string, err error) {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	logging.Audit().SafetyCheck(kind, target, err == nil, reason)
}
