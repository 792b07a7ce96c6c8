package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(":0", nil)
}

func TestHandleCreateJob(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(smallJobConfig(3))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handleJobs(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var job Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if job.ID == "" {
		t.Fatal("created job has no ID")
	}

	// The background run on this tiny config finishes quickly.
	deadline := time.After(10 * time.Second)
	for {
		got, _ := srv.jobManager.GetJob(job.ID)
		if got.State == StateCompleted {
			break
		}
		if got.State == StateFailed {
			t.Fatalf("job failed: %s", got.Error)
		}
		select {
		case <-deadline:
			t.Fatalf("job did not complete, state %q", got.State)
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestHandleCreateJobRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader([]byte("{bad")))
	rec := httptest.NewRecorder()
	srv.handleJobs(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON: status = %d, want 400", rec.Code)
	}

	body, _ := json.Marshal(JobConfig{N: 0})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	srv.handleJobs(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("n=0: status = %d, want 400", rec.Code)
	}
}

func TestHandleListJobs(t *testing.T) {
	srv := newTestServer(t)
	srv.jobManager.CreateJob(smallJobConfig(3))
	srv.jobManager.CreateJob(smallJobConfig(4))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	rec := httptest.NewRecorder()
	srv.handleJobs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var jobs []Job
	if err := json.Unmarshal(rec.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("got %d jobs, want 2", len(jobs))
	}
}

func TestHandleJobsMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/jobs", nil)
	rec := httptest.NewRecorder()
	srv.handleJobs(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleJobStatusUnknown(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing/status", nil)
	rec := httptest.NewRecorder()
	srv.handleJobsWithID(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleJobsWithIDMissingID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/", nil)
	rec := httptest.NewRecorder()
	srv.handleJobsWithID(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
