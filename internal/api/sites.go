package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

type createSiteRequest struct {
	CID       string `json:"cid"`
	Subdomain string `json:"subdomain"`
}

type updateSiteRequest struct {
	CID string `json:"cid"`
}

// ListSites returns every site owned by the caller.
func (c *Client) ListSites(ctx context.Context) ([]model.Site, error) {
	var sites []model.Site
	if err := do(c.request(ctx), http.MethodGet, "/sites", &sites); err != nil {
		return nil, err
	}
	if sites == nil {
		sites = []model.Site{}
	}
	return sites, nil
}

// CreateSite creates a site serving cid at <subdomain>.<base domain>.
func (c *Client) CreateSite(ctx context.Context, cid, subdomain string) (*model.Site, error) {
	if cid == "" || subdomain == "" {
		return nil, fmt.Errorf("create site: cid and subdomain are required")
	}
	var site model.Site
	req := c.request(ctx).SetBody(createSiteRequest{CID: cid, Subdomain: subdomain})
	if err := do(req, http.MethodPost, "/sites", &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// UpdateSite points an existing site at a new cid.
func (c *Client) UpdateSite(ctx context.Context, siteID, cid string) (*model.Site, error) {
	var site model.Site
	req := c.request(ctx).
		SetPathParam("siteId", siteID).
		SetBody(updateSiteRequest{CID: cid})
	if err := do(req, http.MethodPut, "/sites/{siteId}", &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// DeleteSite removes a site.
func (c *Client) DeleteSite(ctx context.Context, siteID string) error {
	req := c.request(ctx).SetPathParam("siteId", siteID)
	return do[struct{}](req, http.MethodDelete, "/sites/{siteId}", nil)
}

// ListVersions returns the deployment history of a site, newest first.
func (c *Client) ListVersions(ctx context.Context, siteID string) ([]model.Version, error) {
	var versions []model.Version
	req := c.request(ctx).SetPathParam("siteId", siteID)
	if err := do(req, http.MethodGet, "/sites/{siteId}/versions", &versions); err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []model.Version{}
	}
	return versions, nil
}

// Rollback points a site back at a previously deployed cid.
func (c *Client) Rollback(ctx context.Context, siteID, cid string) (*model.Site, error) {
	if cid == "" {
		return nil, fmt.Errorf("rollback: cid is required")
	}
	return c.UpdateSite(ctx, siteID, cid)
}
