package iniconf

import (
	"strings"
	"testing"

	"github.com/nabbar/svc-fabric/errors"
	"github.com/nabbar/svc-fabric/internal/errs"
)

func TestParseBasic(t *testing.T) {
	src := `
# full line comment
multicast.address = 224.1.1.11
multicast.port: 9901 ; trailing comment

[service]
port = 9902
exec-path = /opt/app/renderer
`
	tree, e := Parse(strings.NewReader(src))
	if e != nil {
		t.Fatalf("unexpected error: %v", e)
	}

	if v, ok := tree.Get("", "multicast.address"); !ok || v != "224.1.1.11" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
	if v, ok := tree.Get("", "multicast.port"); !ok || v != "9901" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
	if v, ok := tree.Get("service", "port"); !ok || v != "9902" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
}

func TestParseDuplicateKeyReportsLine(t *testing.T) {
	src := "a = 1\nb = 2\na = 3\n"

	_, e := Parse(strings.NewReader(src))
	if e == nil {
		t.Fatalf("expected a duplicate key error")
	}

	if !strings.Contains(e.Error(), "line 3") {
		t.Fatalf("expected error to name line 3, got: %v", e)
	}
}

func TestParseBadLineIsConfigurationError(t *testing.T) {
	_, e := Parse(strings.NewReader("not-a-key-value-line\n"))
	if e == nil {
		t.Fatalf("expected an error")
	}

	ce, ok := e.(errors.Error)
	if !ok {
		t.Fatalf("expected an errors.Error, got %T", e)
	}
	if !ce.IsCode(errs.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration code")
	}
}

func TestParseBool(t *testing.T) {
	cases := map[string]bool{"true": true, "TRUE": true, "on": true, "On": true, "false": false, "off": false}
	for in, want := range cases {
		got, ok := ParseBool(in)
		if !ok || got != want {
			t.Fatalf("ParseBool(%q) = %v,%v want %v,true", in, got, ok, want)
		}
	}

	if _, ok := ParseBool("maybe"); ok {
		t.Fatalf("expected ParseBool to reject an unrecognized value")
	}
}

func TestFlatten(t *testing.T) {
	tree := Tree{
		"":        {"a": "1"},
		"service": {"port": "9902"},
	}

	flat := tree.Flatten()
	if flat["a"] != "1" || flat["service.port"] != "9902" {
		t.Fatalf("unexpected flatten result: %+v", flat)
	}
}
