package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository"
)

// ApplicationService handles job applications.
type ApplicationService struct {
	db     repository.DBTX
	tx     repository.TxRunner
	apps   repository.ApplicationRepository
	logger *slog.Logger
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(db repository.DBTX, tx repository.TxRunner, apps repository.ApplicationRepository, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{db: db, tx: tx, apps: apps, logger: logger}
}

func (s *ApplicationService) ListJobs(ctx context.Context) ([]domain.JobType, error) {
	jobs, err := s.apps.ListJobTypes(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("list job types", err)
	}
	return jobs, nil
}

// Submit stores a pending application for an open job. Every answer must belong
// to one of the job's questions and every question must be answered.
func (s *ApplicationService) Submit(ctx context.Context, applicant domain.Principal, in domain.SubmitApplicationInput) (*domain.JobApplication, error) {
	if applicant.DiscordID == "" {
		return nil, domain.ErrUnauthorized("a Discord account is required to apply")
	}
	in.ApplicantName = strings.TrimSpace(in.ApplicantName)
	if err := in.Validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	job, err := s.apps.FindJobType(ctx, s.db, in.JobTypeID)
	if err != nil {
		return nil, domain.ErrInternal("find job type", err)
	}
	if job == nil {
		return nil, domain.ErrNotFound("job type", formatID(in.JobTypeID))
	}
	if !job.IsOpen {
		return nil, domain.ErrValidation(fmt.Sprintf("job %q is not accepting applications", job.Name))
	}
	if err := checkAnswers(job, in.Answers); err != nil {
		return nil, err
	}

	app := &domain.JobApplication{
		ID:            uuid.New(),
		JobTypeID:     job.ID,
		JobName:       job.Name,
		DiscordID:     applicant.DiscordID,
		ApplicantName: in.ApplicantName,
		Status:        domain.ApplicationPending,
	}
	err = s.tx.InTx(ctx, func(tx repository.DBTX) error {
		if err := s.apps.Create(ctx, tx, app); err != nil {
			return err
		}
		return s.apps.InsertAnswers(ctx, tx, app.ID, in.Answers)
	})
	if err != nil {
		return nil, wrapErr("submit application", err)
	}

	s.logger.Info("application submitted", "application_id", app.ID, "job", job.Name, "discord_id", applicant.DiscordID)
	return app, nil
}

func checkAnswers(job *domain.JobType, answers map[int64]string) error {
	known := make(map[int64]struct{}, len(job.Questions))
	for _, q := range job.Questions {
		known[q.ID] = struct{}{}
		if strings.TrimSpace(answers[q.ID]) == "" {
			return domain.ErrValidation(fmt.Sprintf("question %d must be answered", q.ID))
		}
	}
	for id := range answers {
		if _, ok := known[id]; !ok {
			return domain.ErrValidation(fmt.Sprintf("question %d does not belong to job %d", id, job.ID))
		}
	}
	return nil
}

func (s *ApplicationService) List(ctx context.Context, f domain.ApplicationFilter) ([]domain.JobApplication, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ErrValidation("invalid status: " + string(f.Status))
	}
	apps, err := s.apps.List(ctx, s.db, f)
	if err != nil {
		return nil, domain.ErrInternal("list applications", err)
	}
	return apps, nil
}

// Get returns an application with its answers joined to the question text.
func (s *ApplicationService) Get(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	app, err := s.apps.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find application", err)
	}
	if app == nil {
		return nil, domain.ErrNotFound("application", id.String())
	}
	answers, err := s.apps.Answers(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("list answers", err)
	}
	app.Answers = answers
	return app, nil
}

// SetStatus records a review decision.
func (s *ApplicationService) SetStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus, notes, reviewer string) (*domain.JobApplication, error) {
	if !status.Valid() {
		return nil, domain.ErrValidation("invalid status: " + string(status))
	}
	ok, err := s.apps.UpdateStatus(ctx, s.db, id, status, reviewer, notes)
	if err != nil {
		return nil, domain.ErrInternal("update application status", err)
	}
	if !ok {
		return nil, domain.ErrNotFound("application", id.String())
	}
	s.logger.Info("application reviewed", "application_id", id, "status", status, "by", reviewer)
	return s.Get(ctx, id)
}
