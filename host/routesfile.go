package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// RoutesFile is the YAML layout of a routes file:
//
//	apis:
//	  - name: article
//	    routers:
//	      - name: article
//	        type: content-api
//	        routes:
//	          - method: POST
//	            path: /articles
//	            handler: article.create
//	            config:
//	              body:
//	                title: string
//	                tags: "[string]"
type RoutesFile struct {
	APIs    []Module `yaml:"apis"`
	Plugins []Module `yaml:"plugins"`
}

// LoadRoutesFile decodes the routes file at path.
func LoadRoutesFile(path string) (*RoutesFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	return ParseRoutes(b)
}

// ParseRoutes decodes a routes document. Unknown keys are rejected so that a
// misspelled "config" or "routes" does not silently drop declarations.
func ParseRoutes(b []byte) (*RoutesFile, error) {
	var rf RoutesFile
	if err := yamlDecodeStrict(b, &rf); err != nil {
		return nil, fmt.Errorf("parse routes file: %w", err)
	}
	return &rf, nil
}

func yamlDecodeStrict(b []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadRoutes adds the modules of the routes file at path to the App.
func (a *App) LoadRoutes(path string) error {
	rf, err := LoadRoutesFile(path)
	if err != nil {
		return err
	}
	for _, m := range rf.APIs {
		a.AddAPI(m)
	}
	for _, m := range rf.Plugins {
		a.AddPlugin(m)
	}
	return nil
}
