package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContent(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidateGraphs(t *testing.T) {
	assert.NoError(t, (&ContentValidator{}).validateGraphs())
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{
			name: "valid pool",
			file: "pool.yaml",
			body: "encounters:\n  - id: old_well\n    scene: A well.\n    choices: [Look, Leave]\n",
		},
		{
			name:    "bad id",
			file:    "pool.yaml",
			body:    "encounters:\n  - id: Old-Well\n    scene: A well.\n    choices: [Look, Leave]\n",
			wantErr: "snake_case",
		},
		{
			name:    "duplicate id",
			file:    "pool.yaml",
			body:    "encounters:\n  - id: well\n    scene: A.\n    choices: [a, b]\n  - id: well\n    scene: B.\n    choices: [a, b]\n",
			wantErr: "duplicate encounter ID",
		},
		{
			name:    "too few choices",
			file:    "pool.yaml",
			body:    "encounters:\n  - id: well\n    scene: A.\n    choices: [a]\n",
			wantErr: "choices",
		},
		{
			name: "valid bestiary",
			file: "enemies.yaml",
			body: "enemies:\n  - name: Rat\n    hp: [5, 8]\n    damage: [1, 2]\n    ac: 5\ngroups:\n  - [Rat, Rat]\n",
		},
		{
			name:    "unknown group member",
			file:    "enemies.yaml",
			body:    "enemies:\n  - name: Rat\n    hp: [5, 8]\n    damage: [1, 2]\ngroups:\n  - [Bat]\n",
			wantErr: "unknown enemy",
		},
		{
			name:    "wrong extension",
			file:    "pool.json",
			body:    "{}",
			wantErr: ".yaml extension",
		},
		{
			name:    "unknown document",
			file:    "other.yaml",
			body:    "monsters: []\n",
			wantErr: "neither",
		},
		{
			name:    "invalid yaml",
			file:    "bad.yaml",
			body:    "encounters: [\n",
			wantErr: "invalid YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&ContentValidator{}).validateFile(writeContent(t, tt.file, tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateFile_BuiltInContent(t *testing.T) {
	v := &ContentValidator{}
	assert.NoError(t, v.validateFile("../../pkg/encounter/content/fallback.yaml"))
	assert.NoError(t, v.validateFile("../../pkg/combat/content/enemies.yaml"))
}
