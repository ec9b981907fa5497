package school

// ResolveServantByName finds a servant by exact, case-sensitive name match
// with no normalization. Supervisor and servant membership on classes is
// recorded as free-text names rather than ids, so a rename silently breaks
// the link; every name lookup in the codebase goes through this one function
// so an id-based migration only has to touch this seam.
func ResolveServantByName(servants []Servant, name string) (Servant, bool) {
	if name == "" {
		return Servant{}, false
	}
	for _, srv := range servants {
		if srv.Name == name {
			return srv, true
		}
	}
	return Servant{}, false
}

// ClassReferencesName reports whether a class lists the given display name as
// its supervisor or one of its servants. Same matching rules as
// ResolveServantByName.
func ClassReferencesName(cls Class, name string) bool {
	if name == "" {
		return false
	}
	if cls.SupervisorName == name {
		return true
	}
	for _, n := range cls.ServantNames {
		if n == name {
			return true
		}
	}
	return false
}

// ReferencedServantNames collects the distinct supervisor/servant names
// referenced by the given classes, in first-seen order.
func ReferencedServantNames(classes []Class) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, cls := range classes {
		add(cls.SupervisorName)
		for _, n := range cls.ServantNames {
			add(n)
		}
	}
	return names
}
