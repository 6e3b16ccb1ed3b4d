package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pos-catalog/internal/model"
)

const campusCafeXML = `<node id="123" lat="49.41" lon="8.71"><tag k="name" v="Campus Cafe"/><tag k="amenity" v="cafe"/><tag k="addr:street" v="Grabengasse"/><tag k="addr:housenumber" v="1"/><tag k="addr:postcode" v="69117"/><tag k="addr:city" v="Heidelberg"/></node>`

// setupCLI points the CLI at a temp SQLite catalog and a fake OSM API.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	osmAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/0.6/node/123" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, campusCafeXML)
	}))
	t.Cleanup(osmAPI.Close)

	dbPath := filepath.Join(dir, "cli.db")
	t.Setenv("POSCATALOG_STORE_DRIVER", "sqlite")
	t.Setenv("POSCATALOG_STORE_DATABASE_URL", dbPath)
	t.Setenv("POSCATALOG_OSM_BASE_URL", osmAPI.URL+"/api/0.6")
	t.Setenv("POSCATALOG_LOG_LEVEL", "error")
	return dbPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		configFile = ""
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_ImportListGetClear(t *testing.T) {
	dbPath := setupCLI(t)

	out, err := execute(t, "import", "--node", "123", "-o", "json")
	require.NoError(t, err)
	var imported model.Pos
	require.NoError(t, json.Unmarshal([]byte(out), &imported))
	assert.NotEmpty(t, imported.ID)
	assert.Equal(t, "Campus Cafe", imported.Name)
	assert.Equal(t, model.PosTypeCafe, imported.Type)
	assert.FileExists(t, dbPath)

	_, err = execute(t, "import", "--node", "123", "-o", "json")
	var dup *model.DuplicateNameError
	require.ErrorAs(t, err, &dup)

	out, err = execute(t, "pos", "list", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Campus Cafe")

	out, err = execute(t, "pos", "get", imported.ID, "-o", "json")
	require.NoError(t, err)
	var got model.Pos
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, imported.ID, got.ID)

	out, err = execute(t, "pos", "clear")
	require.NoError(t, err)
	assert.Equal(t, "removed 1 points of sale\n", out)

	_, err = execute(t, "pos", "get", imported.ID, "-o", "json")
	var nf *model.PosNotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCLI_ImportUnknownNode(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "import", "--node", "999", "-o", "json")
	var nf *model.NodeNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, http.StatusNotFound, nf.StatusCode)
}

func TestCLI_ImportRejectsBadInput(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "import", "--node=-4", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--node must be a positive")

	_, err = execute(t, "import", "--node", "123", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestCLI_Migrate(t *testing.T) {
	dbPath := setupCLI(t)

	_, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.FileExists(t, dbPath)
}

func TestCLI_UnsupportedDriver(t *testing.T) {
	setupCLI(t)
	t.Setenv("POSCATALOG_STORE_DRIVER", "mysql")

	_, err := execute(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestCLI_ConfigFlag(t *testing.T) {
	dir := t.TempDir()
	setupCLI(t)

	_, err := execute(t, "migrate", "--config", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")

	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: console\n"), 0644))
	_, err = execute(t, "migrate", "--config", path)
	require.NoError(t, err)
}
