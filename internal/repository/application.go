package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/odessarp/dashboard/internal/domain"
)

const applicationSelect = `
	SELECT a.id, a.job_type_id, j.name, a.discord_id, a.applicant_name, a.status,
	       a.reviewed_by, a.review_notes, a.created_at, a.updated_at
	FROM job_applications a
	JOIN job_types j ON j.id = a.job_type_id`

type applicationRepo struct{}

// NewApplicationRepository returns a pgx-backed ApplicationRepository.
func NewApplicationRepository() ApplicationRepository {
	return &applicationRepo{}
}

func (r *applicationRepo) ListJobTypes(ctx context.Context, db DBTX) ([]domain.JobType, error) {
	rows, err := db.Query(ctx, `SELECT id, name, description, is_open FROM job_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list job types: %w", err)
	}
	jobs := []domain.JobType{}
	index := map[int64]int{}
	for rows.Next() {
		var j domain.JobType
		if err := rows.Scan(&j.ID, &j.Name, &j.Description, &j.IsOpen); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan job type: %w", err)
		}
		j.Questions = []domain.JobQuestion{}
		index[j.ID] = len(jobs)
		jobs = append(jobs, j)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list job types: %w", err)
	}

	questions, err := r.questions(ctx, db, nil)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		if i, ok := index[q.JobTypeID]; ok {
			jobs[i].Questions = append(jobs[i].Questions, q)
		}
	}
	return jobs, nil
}

func (r *applicationRepo) FindJobType(ctx context.Context, db DBTX, id int64) (*domain.JobType, error) {
	var j domain.JobType
	err := db.QueryRow(ctx,
		`SELECT id, name, description, is_open FROM job_types WHERE id = $1`, id,
	).Scan(&j.ID, &j.Name, &j.Description, &j.IsOpen)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job type: %w", err)
	}
	questions, err := r.questions(ctx, db, &id)
	if err != nil {
		return nil, err
	}
	j.Questions = questions
	return &j, nil
}

// questions loads the questions of one job type, or of all when jobTypeID is nil.
func (r *applicationRepo) questions(ctx context.Context, db DBTX, jobTypeID *int64) ([]domain.JobQuestion, error) {
	rows, err := db.Query(ctx, `
		SELECT id, job_type_id, question, position FROM job_questions
		WHERE ($1::bigint IS NULL OR job_type_id = $1::bigint)
		ORDER BY job_type_id, position, id`, jobTypeID)
	if err != nil {
		return nil, fmt.Errorf("list job questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.JobQuestion{}
	for rows.Next() {
		var q domain.JobQuestion
		if err := rows.Scan(&q.ID, &q.JobTypeID, &q.Question, &q.Position); err != nil {
			return nil, fmt.Errorf("scan job question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *applicationRepo) Create(ctx context.Context, db DBTX, app *domain.JobApplication) error {
	err := db.QueryRow(ctx, `
		INSERT INTO job_applications (id, job_type_id, discord_id, applicant_name, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		app.ID, app.JobTypeID, app.DiscordID, app.ApplicantName, string(app.Status),
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *applicationRepo) InsertAnswers(ctx context.Context, db DBTX, appID uuid.UUID, answers map[int64]string) error {
	for questionID, answer := range answers {
		_, err := db.Exec(ctx, `
			INSERT INTO application_answers (application_id, question_id, answer)
			VALUES ($1, $2, $3)`, appID, questionID, answer)
		if err != nil {
			return fmt.Errorf("insert answer %d: %w", questionID, err)
		}
	}
	return nil
}

func scanApplication(row pgx.Row) (*domain.JobApplication, error) {
	var a domain.JobApplication
	err := row.Scan(&a.ID, &a.JobTypeID, &a.JobName, &a.DiscordID, &a.ApplicantName, &a.Status,
		&a.ReviewedBy, &a.ReviewNotes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *applicationRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.JobApplication, error) {
	app, err := scanApplication(db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (r *applicationRepo) List(ctx context.Context, db DBTX, f domain.ApplicationFilter) ([]domain.JobApplication, error) {
	rows, err := db.Query(ctx, applicationSelect+`
		WHERE ($1::text = '' OR a.status = $1::text)
		  AND ($2::bigint = 0 OR a.job_type_id = $2::bigint)
		ORDER BY a.created_at DESC`, string(f.Status), f.JobTypeID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := []domain.JobApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

func (r *applicationRepo) Answers(ctx context.Context, db DBTX, appID uuid.UUID) ([]domain.ApplicationAnswer, error) {
	rows, err := db.Query(ctx, `
		SELECT q.id, q.question, aa.answer
		FROM application_answers aa
		JOIN job_questions q ON q.id = aa.question_id
		WHERE aa.application_id = $1
		ORDER BY q.position, q.id`, appID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	answers := []domain.ApplicationAnswer{}
	for rows.Next() {
		var a domain.ApplicationAnswer
		if err := rows.Scan(&a.QuestionID, &a.Question, &a.Answer); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.ApplicationStatus, reviewer, notes string) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE job_applications
		SET status = $2, reviewed_by = $3, review_notes = NULLIF($4, ''), updated_at = now()
		WHERE id = $1`, id, string(status), reviewer, notes)
	if err != nil {
		return false, fmt.Errorf("update application status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
