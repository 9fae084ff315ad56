package students

import "strings"

// Search narrows an already fetched list the way the admin students view does:
// a case-insensitive substring match on names, student number and email,
// then an exact status match when status is set. The input is not modified.
func Search(list []Student, term string, status Status) []Student {
	term = strings.ToLower(strings.TrimSpace(term))

	filtered := make([]Student, 0, len(list))
	for _, s := range list {
		if term != "" && !matches(s, term) {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}

func matches(s Student, term string) bool {
	candidates := []string{s.FullName, s.StudentNumber, s.Email}
	if s.UserDetails != nil {
		candidates = append(candidates, s.UserDetails.FirstName, s.UserDetails.LastName, s.UserDetails.Email)
	}
	for _, c := range candidates {
		if c != "" && strings.Contains(strings.ToLower(c), term) {
			return true
		}
	}
	return false
}
