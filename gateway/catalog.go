package gateway

import (
	"context"
	"net/http"
	"strconv"
)

// ListJobs returns every job offer.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var out []Job
	err := c.getJSON(ctx, "/jobs", &out)
	return out, err
}

// GetJob fetches a job offer.
func (c *Client) GetJob(ctx context.Context, id int64) (Job, error) {
	var out Job
	err := c.getJSON(ctx, jobPath(id), &out)
	return out, err
}

// CreateJob creates a job offer.
func (c *Client) CreateJob(ctx context.Context, in JobInput) (Job, error) {
	var out Job
	err := c.doJSON(ctx, http.MethodPost, "/jobs", normalizeJob(in), &out)
	return out, err
}

// UpdateJob replaces a job offer.
func (c *Client) UpdateJob(ctx context.Context, id int64, in JobInput) (Job, error) {
	var out Job
	err := c.doJSON(ctx, http.MethodPut, jobPath(id), normalizeJob(in), &out)
	return out, err
}

// DeleteJob removes a job offer.
func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, jobPath(id), nil, nil)
}

// ListFormations returns every formation.
func (c *Client) ListFormations(ctx context.Context) ([]Formation, error) {
	var out []Formation
	err := c.getJSON(ctx, "/formations", &out)
	return out, err
}

// GetFormation fetches a formation.
func (c *Client) GetFormation(ctx context.Context, id int64) (Formation, error) {
	var out Formation
	err := c.getJSON(ctx, formationPath(id), &out)
	return out, err
}

// CreateFormation creates a formation.
func (c *Client) CreateFormation(ctx context.Context, in FormationInput) (Formation, error) {
	var out Formation
	err := c.doJSON(ctx, http.MethodPost, "/formations", in, &out)
	return out, err
}

// UpdateFormation replaces a formation.
func (c *Client) UpdateFormation(ctx context.Context, id int64, in FormationInput) (Formation, error) {
	var out Formation
	err := c.doJSON(ctx, http.MethodPut, formationPath(id), in, &out)
	return out, err
}

// DeleteFormation removes a formation.
func (c *Client) DeleteFormation(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, formationPath(id), nil, nil)
}

// ListCategories returns every formation category.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.getJSON(ctx, "/categories", &out)
	return out, err
}

// Statistics returns platform counters plus the caller's own counters.
func (c *Client) Statistics(ctx context.Context) (Statistics, error) {
	var out Statistics
	err := c.getJSON(ctx, "/api/statistics", &out)
	return out, err
}

// AdminStatistics returns the administrator statistics view.
func (c *Client) AdminStatistics(ctx context.Context) (AdminStatistics, error) {
	var out AdminStatistics
	err := c.getJSON(ctx, "/api/admin/statistics", &out)
	return out, err
}

func jobPath(id int64) string {
	return "/jobs/" + strconv.FormatInt(id, 10)
}

func formationPath(id int64) string {
	return "/formations/" + strconv.FormatInt(id, 10)
}

func normalizeJob(in JobInput) JobInput {
	if in.Requirements == nil {
		in.Requirements = []string{}
	}
	return in
}
