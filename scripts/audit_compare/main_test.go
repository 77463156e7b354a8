package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffResults(t *testing.T) {
	left := []auditResult{{RuleID: "UNT-001", Status: "PASS"}, {RuleID: "COD-004", Status: "FAIL"}}
	right := []auditResult{{RuleID: "UNT-001", Status: "PASS"}, {RuleID: "COD-004", Status: "PASS"}, {RuleID: "SLO-001", Status: "WARN"}}

	diffs := diffResults(left, right)
	require.Equal(t, []ruleDiff{
		{RuleID: "COD-004", Baseline: "FAIL", Candidate: "PASS"},
		{RuleID: "SLO-001", Baseline: "", Candidate: "WARN"},
	}, diffs)
}

func TestLoadTargetsDefaultsRecordType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"targets":[{"id":"c1"},{"record_type":"program","id":"p1","critical":true}]}`), 0o600))

	targets, err := loadTargets(path)
	require.NoError(t, err)
	require.Equal(t, "course", targets[0].RecordType)
	require.True(t, targets[1].Critical)

	require.NoError(t, os.WriteFile(path, []byte(`{"targets":[{"record_type":"section","id":"x"}]}`), 0o600))
	_, err = loadTargets(path)
	require.Error(t, err)
}

func TestCompareTarget(t *testing.T) {
	baseline := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/courses/c1/compliance", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"overall_status":"FAIL","results":[{"rule_id":"COD-004","status":"FAIL"}]}}`))
	}))
	defer baseline.Close()
	candidate := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"overall_status":"PASS","results":[{"rule_id":"COD-004","status":"PASS"}]}}`))
	}))
	defer candidate.Close()

	res := compareTarget(http.DefaultClient, baseline.URL+"/api/v1", candidate.URL+"/api/v1", "tok", target{RecordType: "course", ID: "c1"})
	require.NoError(t, res.Error)
	require.True(t, res.differs())
	require.Equal(t, "FAIL", res.BaselineStatus)
	require.Len(t, res.Diffs, 1)
}

func TestFetchAuditSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"course not found"}}`))
	}))
	defer srv.Close()

	_, err := fetchAudit(http.DefaultClient, srv.URL, "", target{RecordType: "course", ID: "missing"})
	require.ErrorContains(t, err, "NOT_FOUND")
}
