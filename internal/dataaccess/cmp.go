package dataaccess

import (
	"context"
	"encoding/json"
	"errors"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

var errNoPool = errors.New("sql pool not connected")

// CMPProject is a row from the canonical projects table, the single source
// of truth the identity engine reconciles against.
type CMPProject struct {
	UUID        string `json:"uuid"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	GitHubURL   string `json:"github_url"`
	LocalPath   string `json:"local_path"`
	Status      string `json:"status"`
}

// CMPAgent is a row from the canonical agents table.
type CMPAgent struct {
	UUID string `json:"uuid"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// FetchProjects resolves the canonical project list via the hybrid tiers.
func (c *Client) FetchProjects(ctx context.Context) ([]CMPProject, Source, error) {
	result, err := c.FetchJSON(ctx, "cmp_projects", "/api/v1/projects", c.queryProjects)
	if err != nil {
		return nil, SourceUnknown, err
	}
	var projects []CMPProject
	if err := json.Unmarshal(result.Data, &projects); err != nil {
		return nil, result.Source, omnierrors.DataError(err, "decoding cmp projects")
	}
	return projects, result.Source, nil
}

// FetchAgents resolves the canonical agent list via the hybrid tiers.
func (c *Client) FetchAgents(ctx context.Context) ([]CMPAgent, Source, error) {
	result, err := c.FetchJSON(ctx, "cmp_agents", "/api/v1/agents", c.queryAgents)
	if err != nil {
		return nil, SourceUnknown, err
	}
	var agents []CMPAgent
	if err := json.Unmarshal(result.Data, &agents); err != nil {
		return nil, result.Source, omnierrors.DataError(err, "decoding cmp agents")
	}
	return agents, result.Source, nil
}

func (c *Client) queryProjects(ctx context.Context) ([]byte, error) {
	if c.pool == nil {
		return nil, omnierrors.ExternalError(errNoPool, "no sql pool configured")
	}
	rows, err := c.pool.Query(ctx, `SELECT uuid, key, name, github_url, local_path, status FROM projects`)
	if err != nil {
		return nil, omnierrors.ExternalError(err, "querying projects")
	}
	defer rows.Close()

	var projects []CMPProject
	for rows.Next() {
		var p CMPProject
		if err := rows.Scan(&p.UUID, &p.Key, &p.Name, &p.GitHubURL, &p.LocalPath, &p.Status); err != nil {
			return nil, omnierrors.DataError(err, "scanning project row")
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, omnierrors.ExternalError(err, "iterating project rows")
	}
	return json.Marshal(projects)
}

func (c *Client) queryAgents(ctx context.Context) ([]byte, error) {
	if c.pool == nil {
		return nil, omnierrors.ExternalError(errNoPool, "no sql pool configured")
	}
	rows, err := c.pool.Query(ctx, `SELECT uuid, key, name, role FROM agents`)
	if err != nil {
		return nil, omnierrors.ExternalError(err, "querying agents")
	}
	defer rows.Close()

	var agents []CMPAgent
	for rows.Next() {
		var a CMPAgent
		if err := rows.Scan(&a.UUID, &a.Key, &a.Name, &a.Role); err != nil {
			return nil, omnierrors.DataError(err, "scanning agent row")
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, omnierrors.ExternalError(err, "iterating agent rows")
	}
	return json.Marshal(agents)
}
