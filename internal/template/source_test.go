package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in     string
		branch string
		want   Source
	}{
		{"https://github.com/orbiterhost/orbiter-templates", "", Source{URL: "https://github.com/orbiterhost/orbiter-templates", Owner: "orbiterhost", Repo: "orbiter-templates", Branch: "main"}},
		{"https://github.com/orbiterhost/orbiter-templates.git", "next", Source{URL: "https://github.com/orbiterhost/orbiter-templates.git", Owner: "orbiterhost", Repo: "orbiter-templates", Branch: "next"}},
		{"acme/site-templates", "", Source{URL: "https://github.com/acme/site-templates", Owner: "acme", Repo: "site-templates", Branch: "main"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSource(tt.in, tt.branch)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSource("https://github.com/only-owner", "")
	assert.Error(t, err)
}
