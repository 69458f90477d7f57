package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

// DeployFunctionRequest describes an uploaded server bundle.
type DeployFunctionRequest struct {
	CID       string `json:"cid"`
	Runtime   string `json:"runtime"`
	EntryPath string `json:"entry_path"`
}

// DeployFunction attaches a server bundle to a site.
func (c *Client) DeployFunction(ctx context.Context, siteID string, fn DeployFunctionRequest) (*model.Function, error) {
	if siteID == "" {
		return nil, fmt.Errorf("deploy function: site id is required")
	}
	if fn.Runtime == "" {
		fn.Runtime = model.DefaultRuntime
	}

	var out model.Function
	req := c.request(ctx).SetPathParam("siteId", siteID).SetBody(fn)
	if err := do(req, http.MethodPost, "/sites/{siteId}/functions", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFunctions returns the function deployments of a site.
func (c *Client) ListFunctions(ctx context.Context, siteID string) ([]model.Function, error) {
	var fns []model.Function
	req := c.request(ctx).SetPathParam("siteId", siteID)
	if err := do(req, http.MethodGet, "/sites/{siteId}/functions", &fns); err != nil {
		return nil, err
	}
	if fns == nil {
		fns = []model.Function{}
	}
	return fns, nil
}
