package translator

import (
	"fmt"

	"go-recruitment-datalayer/internal/domain"
)

// Legacy enums are upper-case; canonical values are the domain constants.
var (
	applicationStatusEnum = map[string]string{
		"SUBMITTED": string(domain.ApplicationStatusSubmitted),
		"IN_REVIEW": string(domain.ApplicationStatusUnderReview),
		"OFFERED":   string(domain.ApplicationStatusOffered),
		"REJECTED":  string(domain.ApplicationStatusRejected),
		"HIRED":     string(domain.ApplicationStatusHired),
		"WITHDRAWN": string(domain.ApplicationStatusWithdrawn),
	}
	jobStatusEnum = map[string]string{
		"ACTIVE":   domain.JobStatusOpen,
		"ARCHIVED": domain.JobStatusClosed,
	}
	assessmentStatusEnum = map[string]string{
		"IN_PROGRESS": domain.AssessmentStatusStarted,
		"COMPLETED":   domain.AssessmentStatusCompleted,
		"ABANDONED":   domain.AssessmentStatusAbandoned,
	}
)

var Agency = Mapping{
	Family: domain.FamilyAgencies,
	Fields: []Field{
		{Canonical: "id", Legacy: "id", Kind: KindString, Required: true},
		{Canonical: "name", Legacy: "name", Kind: KindString, Required: true},
		{Canonical: "slug", Legacy: "slug", Kind: KindString, Required: true},
		{Canonical: "website", Legacy: "websiteUrl", Kind: KindString},
		{Canonical: "created_at", Legacy: "createdAt", Kind: KindTime, Required: true},
		{Canonical: "updated_at", Legacy: "updatedAt", Kind: KindTime, Required: true},
	},
}

var Candidate = Mapping{
	Family: domain.FamilyCandidates,
	Fields: []Field{
		{Canonical: "id", Legacy: "id", Kind: KindString, Required: true},
		{Canonical: "email", Legacy: "email", Kind: KindString, Required: true},
		{Canonical: "first_name", Legacy: "firstName", Kind: KindString},
		{Canonical: "last_name", Legacy: "lastName", Kind: KindString},
		{Canonical: "phone", Legacy: "phoneNumber", Kind: KindString},
		{Canonical: "username", Legacy: "username", Kind: KindString},
		{Canonical: "is_active", Legacy: "isActive", Kind: KindBool, Required: true},
		{Canonical: "created_at", Legacy: "createdAt", Kind: KindTime, Required: true},
		{Canonical: "updated_at", Legacy: "updatedAt", Kind: KindTime, Required: true},
	},
	Derived: []string{"full_name"},
}

var Profile = Mapping{
	Family: domain.FamilyProfiles,
	Fields: []Field{
		{Canonical: "candidate_id", Legacy: "userId", Kind: KindString, Required: true},
		{Canonical: "location", Legacy: "location", Kind: KindString},
		{Canonical: "bio", Legacy: "bio", Kind: KindString},
		{Canonical: "position", Legacy: "currentPosition", Kind: KindString},
		{Canonical: "gender", Legacy: "gender", Kind: KindString},
		{Canonical: "birthday", Legacy: "birthday", Kind: KindTime},
		{Canonical: "employment_status", Legacy: "workStatus", Kind: KindString},
		{Canonical: "salary_min", Legacy: "expectedSalaryMin", Kind: KindInt},
		{Canonical: "salary_max", Legacy: "expectedSalaryMax", Kind: KindInt},
		{Canonical: "salary_currency", Legacy: "salaryCurrency", Kind: KindString},
		{Canonical: "gamification.xp", Legacy: "xpPoints", Kind: KindInt},
		{Canonical: "gamification.level", Legacy: "level", Kind: KindInt},
		{Canonical: "created_at", Legacy: "createdAt", Kind: KindTime, Required: true},
		{Canonical: "updated_at", Legacy: "updatedAt", Kind: KindTime, Required: true},
	},
	CanonicalOnly: []Default{
		{Canonical: "gamification.badges", Kind: KindStringList},
	},
}

var Job = Mapping{
	Family: domain.FamilyJobs,
	Fields: []Field{
		{Canonical: "id", Legacy: "id", Kind: KindString, Required: true},
		{Canonical: "agency_id", Legacy: "companyId", Kind: KindString},
		{Canonical: "title", Legacy: "title", Kind: KindString, Required: true},
		{Canonical: "slug", Legacy: "slug", Kind: KindString, Required: true},
		{Canonical: "description", Legacy: "description", Kind: KindString},
		{Canonical: "location", Legacy: "location", Kind: KindString},
		{Canonical: "employment_type", Legacy: "jobType", Kind: KindString},
		{Canonical: "salary_min", Legacy: "salaryFrom", Kind: KindInt},
		{Canonical: "salary_max", Legacy: "salaryTo", Kind: KindInt},
		{Canonical: "status", Legacy: "status", Kind: KindString, Required: true, Enum: jobStatusEnum},
		{Canonical: "posted_at", Legacy: "postedAt", Kind: KindTime},
		{Canonical: "created_at", Legacy: "createdAt", Kind: KindTime, Required: true},
		{Canonical: "updated_at", Legacy: "updatedAt", Kind: KindTime, Required: true},
	},
}

var Resume = Mapping{
	Family: domain.FamilyResumes,
	Fields: []Field{
		{Canonical: "id", Legacy: "id", Kind: KindString, Required: true},
		{Canonical: "candidate_id", Legacy: "userId", Kind: KindString, Required: true},
		{Canonical: "slug", Legacy: "slug", Kind: KindString, Required: true},
		{Canonical: "title", Legacy: "title", Kind: KindString},
		{Canonical: "raw_data", Legacy: "extractedData", Kind: KindJSON},
		{Canonical: "improved_data", Legacy: "improvedData", Kind: KindJSON},
		{Canonical: "is_primary", Legacy: "isPrimary", Kind: KindBool, Required: true},
		{Canonical: "created_at", Legacy: "createdAt", Kind: KindTime, Required: true},
		{Canonical: "updated_at", Legacy: "updatedAt", Kind: KindTime, Required: true},
	},
}

var Application = Mapping{
	Family: domain.FamilyApplications,
	Fields: []Field{
		{Canonical: "id", Legacy: "id", Kind: KindString, Required: true},
		{Canonical: "candidate_id", Legacy: "userId", Kind: KindString, Required: true},
		{Canonical: "job_id", Legacy: "jobId", Kind: KindString, Required: true},
		{Canonical: "resume_id", Legacy: "resumeId", Kind: KindString},
		{Canonical: "status", Legacy: "status", Kind: KindString, Required: true, Enum: applicationStatusEnum},
		{Canonical: "cover_letter", Legacy: "coverLetter", Kind: KindString},
		{Canonical: "created_at", Legacy: "createdAt", Kind: KindTime, Required: true},
		{Canonical: "updated_at", Legacy: "updatedAt", Kind: KindTime, Required: true},
	},
}

var Assessment = Mapping{
	Family: domain.FamilyAssessments,
	Fields: []Field{
		{Canonical: "id", Legacy: "id", Kind: KindString, Required: true},
		{Canonical: "candidate_id", Legacy: "userId", Kind: KindString, Required: true},
		{Canonical: "type", Legacy: "assessmentType", Kind: KindString, Required: true},
		{Canonical: "status", Legacy: "status", Kind: KindString, Required: true, Enum: assessmentStatusEnum},
		{Canonical: "score", Legacy: "score", Kind: KindFloat},
		{Canonical: "result", Legacy: "resultData", Kind: KindJSON},
		{Canonical: "xp_awarded", Legacy: "xpEarned", Kind: KindInt},
		{Canonical: "started_at", Legacy: "startedAt", Kind: KindTime, Required: true},
		{Canonical: "completed_at", Legacy: "completedAt", Kind: KindTime},
		{Canonical: "created_at", Legacy: "createdAt", Kind: KindTime, Required: true},
	},
}

var mappings = map[domain.Family]Mapping{
	domain.FamilyAgencies:     Agency,
	domain.FamilyCandidates:   Candidate,
	domain.FamilyProfiles:     Profile,
	domain.FamilyJobs:         Job,
	domain.FamilyResumes:      Resume,
	domain.FamilyApplications: Application,
	domain.FamilyAssessments:  Assessment,
}

// For returns the mapping declared for family.
func For(family domain.Family) (Mapping, error) {
	m, ok := mappings[family]
	if !ok {
		return Mapping{}, fmt.Errorf("translator: no mapping for family %q", family)
	}
	return m, nil
}
