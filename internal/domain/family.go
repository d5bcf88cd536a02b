package domain

import "time"

// Family is a named group of entities sharing one canonical shape and one
// migration flag.
type Family string

const (
	FamilyAgencies     Family = "agencies"
	FamilyCandidates   Family = "candidates"
	FamilyProfiles     Family = "profiles"
	FamilyJobs         Family = "jobs"
	FamilyResumes      Family = "resumes"
	FamilyApplications Family = "applications"
	FamilyAssessments  Family = "assessments"
)

func (f Family) String() string { return string(f) }

// Backend names one of the two persistence backends.
type Backend string

const (
	BackendLegacy Backend = "legacy"
	BackendNew    Backend = "new"
)

// ListOptions filters bulk reads. A nil Since means unfiltered.
type ListOptions struct {
	Since *time.Time
}

// JoinName derives the display name from its primitives.
func JoinName(first, last *string) string {
	var parts []string
	if first != nil && *first != "" {
		parts = append(parts, *first)
	}
	if last != nil && *last != "" {
		parts = append(parts, *last)
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return parts[0] + " " + parts[1]
}
