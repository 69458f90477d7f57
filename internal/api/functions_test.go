package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

func TestDeployFunctionDefaultsRuntime(t *testing.T) {
	c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sites/s1/functions" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body DeployFunctionRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.Runtime != model.DefaultRuntime {
			t.Errorf("runtime = %q, want %q", body.Runtime, model.DefaultRuntime)
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{
			"site_id": "s1", "cid": body.CID, "runtime": body.Runtime, "entry_path": body.EntryPath,
		}})
	})

	fn, err := c.DeployFunction(context.Background(), "s1", DeployFunctionRequest{CID: "bafy9", EntryPath: "dist/index.js"})
	if err != nil {
		t.Fatalf("DeployFunction: %v", err)
	}
	if fn.CID != "bafy9" || fn.EntryPath != "dist/index.js" {
		t.Errorf("function = %+v", fn)
	}
}

func TestListFunctionsEmpty(t *testing.T) {
	c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": nil})
	})

	fns, err := c.ListFunctions(context.Background(), "s1")
	if err != nil {
		t.Fatalf("ListFunctions: %v", err)
	}
	if fns == nil || len(fns) != 0 {
		t.Errorf("fns = %#v, want empty slice", fns)
	}
}
