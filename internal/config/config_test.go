package config

import (
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, ErrInvalidPort},
		{"port too large", func(c *Config) { c.Port = 99999 }, ErrInvalidPort},
		{"empty source", func(c *Config) { c.Source = "" }, ErrMissingSource},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrNegativeTimeout},
		{"empty index", func(c *Config) { c.IndexFile = "" }, ErrInvalidIndex},
		{"index with dir", func(c *Config) { c.IndexFile = "a/index.html" }, ErrInvalidIndex},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			if err := c.Validate(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFinalizeCanonicalizesSource(t *testing.T) {
	base := t.TempDir()
	realDir := filepath.Join(base, "realDir")
	if err := os.Mkdir(realDir, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	c := Default()
	c.Source = link + "/./"
	c.NotFoundFile = "404.html"
	if err := c.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	want, _ := filepath.EvalSymlinks(realDir)
	if c.ServeRoot() != want {
		t.Fatalf("serve root %q, want %q", c.ServeRoot(), want)
	}
	if !filepath.IsAbs(c.ServeRoot()) {
		t.Fatalf("serve root not absolute: %q", c.ServeRoot())
	}
	if c.NotFoundFile != filepath.Join(want, "404.html") {
		t.Fatalf("not found file %q not joined onto root", c.NotFoundFile)
	}
	if !c.Finalized() {
		t.Fatal("expected finalized")
	}
}

func TestFinalizeRejectsFileSource(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := Default()
	c.Source = f
	if err := c.Finalize(); !errors.Is(err, ErrSourceNotDir) {
		t.Fatalf("expected ErrSourceNotDir, got %v", err)
	}
}

func TestFinalizeMissingSource(t *testing.T) {
	c := Default()
	c.Source = filepath.Join(t.TempDir(), "nope")
	if err := c.Finalize(); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestFlagsApplyOnlyExplicit(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := BindFlags(fs)
	if err := fs.Parse([]string{"-port", "9090", "-timeout", "5", "-debug"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := Default()
	c.Workers = 12
	c.IndexFile = "home.html"
	f.Apply(c)

	if c.Port != 9090 {
		t.Errorf("port = %d, want 9090", c.Port)
	}
	if c.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.Timeout)
	}
	if !c.Debug {
		t.Error("debug not applied")
	}
	if c.Workers != 12 {
		t.Errorf("workers overwritten by default flag value: %d", c.Workers)
	}
	if c.IndexFile != "home.html" {
		t.Errorf("index overwritten by default flag value: %s", c.IndexFile)
	}
}

func TestAddress(t *testing.T) {
	c := &Config{Host: "127.0.0.1", Port: 9000}
	if got := c.Address(); got != "127.0.0.1:9000" {
		t.Fatalf("address = %s", got)
	}
}

func TestUnmarshalJSONTimeout(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Duration
	}{
		{"duration string", `{"timeout":"5s","port":9000}`, 5 * time.Second},
		{"nanoseconds", `{"timeout":2000000000}`, 2 * time.Second},
		{"absent keeps default", `{"port":9000}`, DefaultTimeout},
		{"null keeps default", `{"timeout":null}`, DefaultTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			if err := json.Unmarshal([]byte(tc.in), c); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if c.Timeout != tc.want {
				t.Fatalf("timeout = %s, want %s", c.Timeout, tc.want)
			}
		})
	}

	c := Default()
	if err := json.Unmarshal([]byte(`{"timeout":"5s","port":9000}`), c); err != nil {
		t.Fatal(err)
	}
	if c.Port != 9000 || c.IndexFile != DefaultIndexFile {
		t.Fatalf("other fields not decoded: %+v", c)
	}
	if err := json.Unmarshal([]byte(`{"timeout":"abc"}`), Default()); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
