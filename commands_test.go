package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/oszuidwest/hotelsite/internal/content"
	"github.com/oszuidwest/hotelsite/internal/media"
)

func TestCheckImages(t *testing.T) {
	assets := embeddedFS("assets")
	c, err := content.Default(assets)
	if err != nil {
		t.Fatal(err)
	}
	loader := media.NewLoader(assets)

	results := checkImages(context.Background(), loader, c, "images/fallback.svg")
	// 3 home, 4 rooms, 5 explore, plus the fallback.
	if len(results) != 13 {
		t.Fatalf("results = %d", len(results))
	}
	if results[len(results)-1].Src != "images/fallback.svg" {
		t.Errorf("fallback not last: %q", results[len(results)-1].Src)
	}

	var out bytes.Buffer
	if err := reportImages(&out, results); err != nil {
		t.Errorf("report: %v\n%s", err, out.String())
	}
	if strings.Contains(out.String(), "FAIL") {
		t.Errorf("unexpected failure:\n%s", out.String())
	}

	out.Reset()
	results = checkImages(context.Background(), loader, c, "images/missing.png")
	if err := reportImages(&out, results); err == nil {
		t.Error("expected error for missing fallback")
	}
	if !strings.Contains(out.String(), "FAIL  images/missing.png") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	if !strings.HasPrefix(out.String(), "hotelsite "+Version) {
		t.Errorf("output = %q", out.String())
	}
}

func TestSiteAssets_Overlay(t *testing.T) {
	dir := t.TempDir()
	if got := siteAssets(dir + "/absent"); got == nil {
		t.Fatal("nil assets")
	}

	assets := siteAssets(dir)
	f, err := assets.Open("images/fallback.svg")
	if err != nil {
		t.Fatalf("embedded file not reachable through overlay: %v", err)
	}
	f.Close()
}
