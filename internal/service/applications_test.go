package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var applicant = domain.Principal{DiscordID: memberID, Username: "ivan"}

func openJob() *domain.JobType {
	return &domain.JobType{
		ID: 3, Name: "LSPD", IsOpen: true,
		Questions: []domain.JobQuestion{{ID: 10, JobTypeID: 3}, {ID: 11, JobTypeID: 3}},
	}
}

func TestApplications_Submit(t *testing.T) {
	answers := map[int64]string{10: "yes", 11: "five years"}
	apps := &repotest.MockApplicationRepository{}
	apps.On("FindJobType", int64(3)).Return(openJob(), nil)
	apps.On("Create", mock.AnythingOfType("*domain.JobApplication")).Return(nil)
	apps.On("InsertAnswers", mock.AnythingOfType("uuid.UUID"), answers).Return(nil)
	tx := &repotest.FakeTx{}
	svc := NewApplicationService(nil, tx, apps, testLogger())

	app, err := svc.Submit(context.Background(), applicant, domain.SubmitApplicationInput{
		JobTypeID: 3, ApplicantName: " Ivan Petrov ", Answers: answers,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, app.Status)
	assert.Equal(t, "Ivan Petrov", app.ApplicantName)
	assert.Equal(t, memberID, app.DiscordID)
	assert.Equal(t, 1, tx.Calls)
	apps.AssertExpectations(t)
}

func TestApplications_SubmitRejects(t *testing.T) {
	closed := openJob()
	closed.IsOpen = false

	tests := []struct {
		name   string
		who    domain.Principal
		job    *domain.JobType
		in     domain.SubmitApplicationInput
		status int
	}{
		{"no discord id", domain.Principal{Email: "a@b.co"}, openJob(),
			domain.SubmitApplicationInput{JobTypeID: 3, ApplicantName: "x"}, http.StatusUnauthorized},
		{"missing name", applicant, openJob(),
			domain.SubmitApplicationInput{JobTypeID: 3}, http.StatusBadRequest},
		{"unknown job", applicant, nil,
			domain.SubmitApplicationInput{JobTypeID: 3, ApplicantName: "x"}, http.StatusNotFound},
		{"closed job", applicant, closed,
			domain.SubmitApplicationInput{JobTypeID: 3, ApplicantName: "x", Answers: map[int64]string{10: "a", 11: "b"}}, http.StatusBadRequest},
		{"unanswered question", applicant, openJob(),
			domain.SubmitApplicationInput{JobTypeID: 3, ApplicantName: "x", Answers: map[int64]string{10: "a", 11: "  "}}, http.StatusBadRequest},
		{"foreign question", applicant, openJob(),
			domain.SubmitApplicationInput{JobTypeID: 3, ApplicantName: "x", Answers: map[int64]string{10: "a", 11: "b", 99: "c"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps := &repotest.MockApplicationRepository{}
			if tt.job != nil {
				apps.On("FindJobType", int64(3)).Return(tt.job, nil)
			} else {
				apps.On("FindJobType", int64(3)).Return(nil, nil)
			}
			tx := &repotest.FakeTx{}
			svc := NewApplicationService(nil, tx, apps, testLogger())

			_, err := svc.Submit(context.Background(), tt.who, tt.in)
			assert.Equal(t, tt.status, appStatus(err))
			assert.Equal(t, 0, tx.Calls)
		})
	}
}

func TestApplications_SetStatus(t *testing.T) {
	id := uuid.New()
	apps := &repotest.MockApplicationRepository{}
	apps.On("UpdateStatus", id, domain.ApplicationAccepted, "staff", "welcome").Return(true, nil)
	apps.On("FindByID", id).Return(&domain.JobApplication{ID: id, Status: domain.ApplicationAccepted}, nil)
	apps.On("Answers", id).Return([]domain.ApplicationAnswer{{QuestionID: 10, Answer: "yes"}}, nil)
	svc := NewApplicationService(nil, &repotest.FakeTx{}, apps, testLogger())

	app, err := svc.SetStatus(context.Background(), id, domain.ApplicationAccepted, "welcome", "staff")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationAccepted, app.Status)
	assert.Len(t, app.Answers, 1)
}

func TestApplications_SetStatusErrors(t *testing.T) {
	id := uuid.New()
	apps := &repotest.MockApplicationRepository{}
	apps.On("UpdateStatus", id, domain.ApplicationRejected, "staff", "").Return(false, nil)
	svc := NewApplicationService(nil, &repotest.FakeTx{}, apps, testLogger())

	_, err := svc.SetStatus(context.Background(), id, "maybe", "", "staff")
	assert.Equal(t, http.StatusBadRequest, appStatus(err))
	_, err = svc.SetStatus(context.Background(), id, domain.ApplicationRejected, "", "staff")
	assert.Equal(t, http.StatusNotFound, appStatus(err))
}
