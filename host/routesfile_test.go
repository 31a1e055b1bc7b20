package host_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/reoring/reqschema/host"
)

const routesYAML = `
apis:
  - name: article
    routers:
      - name: article
        type: content-api
        routes:
          - method: POST
            path: /articles
            handler: article.create
            config:
              body:
                title: string
                tags: "[string]"
                address:
                  street: string
                items:
                  - name: string
              files:
                cover: file
          - method: GET
            path: /articles
            handler: article.find
plugins:
  - name: upload
    routers:
      - name: admin
        type: admin
        routes:
          - method: GET
            path: /upload/settings
            handler: upload.settings
`

func TestParseRoutes(t *testing.T) {
	rf, err := host.ParseRoutes([]byte(routesYAML))
	if err != nil {
		t.Fatalf("ParseRoutes: %v", err)
	}
	if len(rf.APIs) != 1 || len(rf.Plugins) != 1 {
		t.Fatalf("unexpected modules: %+v", rf)
	}
	create := rf.APIs[0].Routers[0].Routes[0]
	if create.Config == nil {
		t.Fatalf("config not decoded")
	}
	wantBody := map[string]any{
		"title":   "string",
		"tags":    "[string]",
		"address": map[string]any{"street": "string"},
		"items":   []any{map[string]any{"name": "string"}},
	}
	if !reflect.DeepEqual(create.Config.Body, wantBody) {
		t.Fatalf("body = %#v", create.Config.Body)
	}
	if create.Config.Files["cover"] != "file" {
		t.Fatalf("files = %#v", create.Config.Files)
	}
	if rf.APIs[0].Routers[0].Routes[1].Config != nil {
		t.Fatalf("route without config should have nil Config")
	}
}

func TestParseRoutes_UnknownField(t *testing.T) {
	if _, err := host.ParseRoutes([]byte("apis:\n  - name: a\n    routerz: []\n")); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestApp_LoadRoutes(t *testing.T) {
	p := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(p, []byte(routesYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	app := host.New(testConfig())
	if err := app.LoadRoutes(p); err != nil {
		t.Fatalf("LoadRoutes: %v", err)
	}
	if len(app.APIs()) != 1 || len(app.Plugins()) != 1 {
		t.Fatalf("modules not added")
	}
	if err := app.LoadRoutes(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
