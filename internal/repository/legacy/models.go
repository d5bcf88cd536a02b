// Package legacy declares the legacy relational schema as gorm models.
// Adapters query it through maps keyed by these column names; the structs
// exist for migrations, deletes and documentation of the schema.
package legacy

import (
	"time"

	"go-recruitment-datalayer/internal/domain"

	"gorm.io/datatypes"
)

type Company struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	Slug       string    `gorm:"column:slug;not null;uniqueIndex"`
	WebsiteURL *string   `gorm:"column:websiteUrl"`
	CreatedAt  time.Time `gorm:"column:createdAt;not null"`
	UpdatedAt  time.Time `gorm:"column:updatedAt;not null"`
}

func (Company) TableName() string { return "companies" }

type User struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Email       string    `gorm:"column:email;not null;uniqueIndex"`
	FirstName   *string   `gorm:"column:firstName"`
	LastName    *string   `gorm:"column:lastName"`
	PhoneNumber *string   `gorm:"column:phoneNumber"`
	Username    *string   `gorm:"column:username;uniqueIndex"`
	IsActive    bool      `gorm:"column:isActive;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:createdAt;not null"`
	UpdatedAt   time.Time `gorm:"column:updatedAt;not null"`
}

func (User) TableName() string { return "users" }

type UserProfile struct {
	UserID            string     `gorm:"column:userId;primaryKey"`
	Location          *string    `gorm:"column:location"`
	Bio               *string    `gorm:"column:bio"`
	CurrentPosition   *string    `gorm:"column:currentPosition"`
	Gender            *string    `gorm:"column:gender"`
	Birthday          *time.Time `gorm:"column:birthday"`
	WorkStatus        *string    `gorm:"column:workStatus"`
	ExpectedSalaryMin *int64     `gorm:"column:expectedSalaryMin"`
	ExpectedSalaryMax *int64     `gorm:"column:expectedSalaryMax"`
	SalaryCurrency    *string    `gorm:"column:salaryCurrency"`
	XPPoints          int64      `gorm:"column:xpPoints;not null;default:0"`
	Level             int64      `gorm:"column:level;not null;default:1"`
	CreatedAt         time.Time  `gorm:"column:createdAt;not null"`
	UpdatedAt         time.Time  `gorm:"column:updatedAt;not null"`
}

func (UserProfile) TableName() string { return "user_profiles" }

type JobPosting struct {
	ID          string     `gorm:"column:id;primaryKey"`
	CompanyID   *string    `gorm:"column:companyId;index"`
	Title       string     `gorm:"column:title;not null"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex"`
	Description *string    `gorm:"column:description"`
	Location    *string    `gorm:"column:location"`
	JobType     *string    `gorm:"column:jobType"`
	SalaryFrom  *int64     `gorm:"column:salaryFrom"`
	SalaryTo    *int64     `gorm:"column:salaryTo"`
	Status      string     `gorm:"column:status;not null;default:ACTIVE"`
	PostedAt    *time.Time `gorm:"column:postedAt"`
	CreatedAt   time.Time  `gorm:"column:createdAt;not null"`
	UpdatedAt   time.Time  `gorm:"column:updatedAt;not null"`
}

func (JobPosting) TableName() string { return "job_postings" }

type Resume struct {
	ID            string         `gorm:"column:id;primaryKey"`
	UserID        string         `gorm:"column:userId;not null;index;uniqueIndex:idx_resumes_one_primary,where:\"isPrimary\" = true"`
	Slug          string         `gorm:"column:slug;not null;uniqueIndex"`
	Title         *string        `gorm:"column:title"`
	ExtractedData datatypes.JSON `gorm:"column:extractedData"`
	ImprovedData  datatypes.JSON `gorm:"column:improvedData"`
	IsPrimary     bool           `gorm:"column:isPrimary;not null;default:false"`
	CreatedAt     time.Time      `gorm:"column:createdAt;not null"`
	UpdatedAt     time.Time      `gorm:"column:updatedAt;not null"`
}

func (Resume) TableName() string { return "resumes" }

type JobApplication struct {
	ID          string    `gorm:"column:id;primaryKey"`
	UserID      string    `gorm:"column:userId;not null;uniqueIndex:idx_job_applications_user_job"`
	JobID       string    `gorm:"column:jobId;not null;uniqueIndex:idx_job_applications_user_job"`
	ResumeID    *string   `gorm:"column:resumeId"`
	Status      string    `gorm:"column:status;not null;default:SUBMITTED"`
	CoverLetter *string   `gorm:"column:coverLetter"`
	CreatedAt   time.Time `gorm:"column:createdAt;not null"`
	UpdatedAt   time.Time `gorm:"column:updatedAt;not null"`
}

func (JobApplication) TableName() string { return "job_applications" }

type AssessmentSession struct {
	ID             string         `gorm:"column:id;primaryKey"`
	UserID         string         `gorm:"column:userId;not null;index"`
	AssessmentType string         `gorm:"column:assessmentType;not null"`
	Status         string         `gorm:"column:status;not null"`
	Score          *float64       `gorm:"column:score"`
	ResultData     datatypes.JSON `gorm:"column:resultData"`
	XPEarned       int64          `gorm:"column:xpEarned;not null;default:0"`
	StartedAt      time.Time      `gorm:"column:startedAt;not null"`
	CompletedAt    *time.Time     `gorm:"column:completedAt"`
	CreatedAt      time.Time      `gorm:"column:createdAt;not null"`
}

func (AssessmentSession) TableName() string { return "assessment_sessions" }

// Models lists every legacy model, for AutoMigrate in tests and tooling.
func Models() []any {
	return []any{
		&Company{}, &User{}, &UserProfile{}, &JobPosting{},
		&Resume{}, &JobApplication{}, &AssessmentSession{},
	}
}

// ModelFor returns a fresh model value for family's legacy table.
func ModelFor(family domain.Family) any {
	switch family {
	case domain.FamilyAgencies:
		return &Company{}
	case domain.FamilyCandidates:
		return &User{}
	case domain.FamilyProfiles:
		return &UserProfile{}
	case domain.FamilyJobs:
		return &JobPosting{}
	case domain.FamilyResumes:
		return &Resume{}
	case domain.FamilyApplications:
		return &JobApplication{}
	case domain.FamilyAssessments:
		return &AssessmentSession{}
	}
	return nil
}
