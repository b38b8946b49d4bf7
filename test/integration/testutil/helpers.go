//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/odessarp/dashboard/internal/domain"
)

// Do sends a request with an optional JSON body and extra headers.
func (env *TestEnv) Do(method, path string, body interface{}, headers map[string]string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, nil)
}

// PostLog posts a game event to /log with the given API key.
func (env *TestEnv) PostLog(apiKey string, body interface{}) *http.Response {
	env.t.Helper()
	headers := map[string]string{}
	if apiKey != "" {
		headers["x-api-key"] = apiKey
	}
	return env.Do(http.MethodPost, "/log", body, headers)
}

// Token issues a session token for p.
func (env *TestEnv) Token(p domain.Principal) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(p)
	if err != nil {
		env.t.Fatalf("Token: %v", err)
	}
	return token
}

// AdminToken issues a token for the configured admin email.
func (env *TestEnv) AdminToken() string {
	return env.Token(domain.Principal{Email: TestAdminEmail, Username: "admin"})
}

// Auth performs an authenticated request.
func (env *TestEnv) Auth(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(method, path, body, map[string]string{"Authorization": "Bearer " + token})
}

// SeedEmailRole grants level to email directly in the database.
func (env *TestEnv) SeedEmailRole(email string, level domain.PermissionLevel) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		`INSERT INTO user_roles_email (email, permission_level, updated_by) VALUES ($1, $2, 'seed')`,
		email, string(level))
	if err != nil {
		env.t.Fatalf("SeedEmailRole: %v", err)
	}
}

// SeedJob creates an open job type with the given questions and returns the job and question IDs.
func (env *TestEnv) SeedJob(name string, questions ...string) (int64, []int64) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var jobID int64
	err := env.Pool.QueryRow(ctx,
		`INSERT INTO job_types (name, description) VALUES ($1, '') RETURNING id`, name).Scan(&jobID)
	if err != nil {
		env.t.Fatalf("SeedJob: insert job: %v", err)
	}

	ids := make([]int64, 0, len(questions))
	for i, q := range questions {
		var id int64
		err := env.Pool.QueryRow(ctx,
			`INSERT INTO job_questions (job_type_id, question, position) VALUES ($1, $2, $3) RETURNING id`,
			jobID, q, i).Scan(&id)
		if err != nil {
			env.t.Fatalf("SeedJob: insert question: %v", err)
		}
		ids = append(ids, id)
	}
	return jobID, ids
}
