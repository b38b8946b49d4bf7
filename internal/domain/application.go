package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the review state of a job application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// JobType is a recruitable in-game job.
type JobType struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	IsOpen      bool          `json:"is_open"`
	Questions   []JobQuestion `json:"questions"`
}

// JobQuestion is one question of a job's application form.
type JobQuestion struct {
	ID        int64  `json:"id"`
	JobTypeID int64  `json:"job_type_id"`
	Question  string `json:"question"`
	Position  int    `json:"position"`
}

// JobApplication is a submitted application.
type JobApplication struct {
	ID            uuid.UUID           `json:"id"`
	JobTypeID     int64               `json:"job_type_id"`
	JobName       string              `json:"job_name"`
	DiscordID     string              `json:"discord_id"`
	ApplicantName string              `json:"applicant_name"`
	Status        ApplicationStatus   `json:"status"`
	ReviewedBy    *string             `json:"reviewed_by"`
	ReviewNotes   *string             `json:"review_notes"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Answers       []ApplicationAnswer `json:"answers,omitempty"`
}

// ApplicationAnswer is an answer joined with its question text.
type ApplicationAnswer struct {
	QuestionID int64  `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// SubmitApplicationInput is the applicant-facing form payload.
type SubmitApplicationInput struct {
	JobTypeID     int64            `json:"job_type_id"`
	ApplicantName string           `json:"applicant_name"`
	Answers       map[int64]string `json:"answers"`
}

// Validate checks the form fields that do not need the database.
func (in SubmitApplicationInput) Validate() error {
	if in.JobTypeID <= 0 {
		return fmt.Errorf("job_type_id is required")
	}
	if in.ApplicantName == "" {
		return fmt.Errorf("applicant_name is required")
	}
	return nil
}

// ApplicationFilter narrows an application listing.
type ApplicationFilter struct {
	Status    ApplicationStatus
	JobTypeID int64
}
