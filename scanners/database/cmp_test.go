package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/dataaccess"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

func TestScanProjectsReportsOneFindingPerProject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"uuid":"u1","key":"owner/repo","name":"repo","github_url":"https://github.com/owner/repo","local_path":"/repos/repo","status":"active"}]`))
	}))
	defer srv.Close()

	client := dataaccess.NewClient(dataaccess.Config{BackendURL: srv.URL, CacheDir: t.TempDir()})
	out, err := scanProjects(context.Background(), client, "federation")
	require.NoError(t, err)

	require.Len(t, out.Findings, 1)
	assert.Equal(t, "cmp_project", out.Findings[0].Kind)
	assert.Equal(t, "repo", out.Findings[0].Message)
	assert.Equal(t, "BACKEND", out.Raw["source"])
	assert.Equal(t, 1, out.Raw["count"])
}

func TestScanAgentsReportsOneFindingPerAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"uuid":"u1","key":"agent-1","name":"Agent One","role":"reviewer"}]`))
	}))
	defer srv.Close()

	client := dataaccess.NewClient(dataaccess.Config{BackendURL: srv.URL, CacheDir: t.TempDir()})
	out, err := scanAgents(context.Background(), client, "federation")
	require.NoError(t, err)

	require.Len(t, out.Findings, 1)
	assert.Equal(t, "cmp_agent", out.Findings[0].Kind)
	assert.Equal(t, 1, out.Raw["count"])
}

func TestScanProjectsPropagatesErrorWhenTiersExhausted(t *testing.T) {
	client := dataaccess.NewClient(dataaccess.Config{CacheDir: t.TempDir()})
	_, err := scanProjects(context.Background(), client, "federation")
	assert.Error(t, err)
}

func TestRegisterBindsBothScanners(t *testing.T) {
	reg := scanner.NewRegistry()
	client := dataaccess.NewClient(dataaccess.Config{CacheDir: t.TempDir()})
	Register(reg, client)

	_, ok := reg.Category("cmp_projects")
	assert.True(t, ok)
	_, ok = reg.Category("cmp_agents")
	assert.True(t, ok)
}
