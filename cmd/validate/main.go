// Command validate checks encounter pools and bestiaries before they are
// shipped, and that the built-in story graphs load.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/verdant-hollow/pkg/combat"
	"github.com/jwebster45206/verdant-hollow/pkg/encounter"
	"github.com/jwebster45206/verdant-hollow/pkg/story"
)

func main() {
	validator := &ContentValidator{}

	if err := validator.validateGraphs(); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	for _, filename := range os.Args[1:] {
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Content is valid!")
}

var snakeCase = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

type ContentValidator struct {
	errors []string
}

func (v *ContentValidator) validateGraphs() error {
	for name, build := range map[string]func() (*story.Graph, error){
		"scripted": story.ScriptedGraph,
		"dynamic":  story.DynamicGraph,
	} {
		g, err := build()
		if err != nil {
			return fmt.Errorf("%s graph: %w", name, err)
		}
		fmt.Printf("%s graph: %d nodes, %d stages\n", name, len(g.Nodes()), len(g.Stages()))
	}
	return nil
}

// validateFile picks the loader from the document's top-level key.
func (v *ContentValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	ext := filepath.Ext(filename)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("content file must have .yaml extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("file %s contains invalid YAML: %w", filename, err)
	}

	v.errors = nil
	switch {
	case has(top, "encounters"):
		v.validatePool(data)
	case has(top, "enemies"):
		if _, err := combat.LoadBestiary(data); err != nil {
			v.errors = append(v.errors, err.Error())
		}
	default:
		return fmt.Errorf("file %s has neither an encounters nor an enemies list", filename)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func has(top map[string]yaml.Node, key string) bool {
	_, ok := top[key]
	return ok
}

func (v *ContentValidator) validatePool(data []byte) {
	pool, err := encounter.LoadPool(data)
	if err != nil {
		v.errors = append(v.errors, err.Error())
		return
	}
	seen := make(map[string]bool, len(pool))
	for _, e := range pool {
		v.validateIDFormat("encounter ID", e.ID)
		if seen[e.ID] {
			v.errors = append(v.errors, fmt.Sprintf("duplicate encounter ID '%s'", e.ID))
		}
		seen[e.ID] = true
	}
}

func (v *ContentValidator) validateIDFormat(kind, id string) {
	if !snakeCase.MatchString(id) {
		v.errors = append(v.errors, fmt.Sprintf("%s '%s' must be lowercase snake_case", kind, id))
	}
}
