package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/dataaccess"
)

func TestScanFederationHealthAllTiersDown(t *testing.T) {
	client := dataaccess.NewClient(dataaccess.Config{BackendURL: "http://127.0.0.1:0"})
	out, err := scanFederationHealth(context.Background(), client, "federation")
	require.NoError(t, err)

	require.Len(t, out.Findings, 1)
	assert.Equal(t, "high", out.Findings[0].Severity)
	assert.False(t, out.Raw["backend_reachable"].(bool))
}

func TestScanFederationHealthBackendReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := dataaccess.NewClient(dataaccess.Config{BackendURL: srv.URL})
	out, err := scanFederationHealth(context.Background(), client, "federation")
	require.NoError(t, err)

	assert.Empty(t, out.Findings)
	assert.True(t, out.Raw["backend_reachable"].(bool))
}
