// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package configfile

import (
	"os"
	"strings"
	"testing"
)

func TestMatchLineExactBoundary(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "userchroot-conf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	want := "alice:/srv/jails\n"
	if _, err := f.WriteString(want); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}

	g := &Gatekeeper{f: f}

	matched, err := g.MatchLine(want)
	if err != nil {
		t.Fatal(err)
	}
	if !matched {
		t.Fatal("expected exact line to match")
	}
}

func TestMatchLineRejectsOverlongLine(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "userchroot-conf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	want := "alice:/srv/jails\n"
	// One byte longer than want, on its own line, should never match,
	// and should not corrupt matching of a following good line.
	overlong := "alice:/srv/jailsx\n"
	good := "bob:/srv/other\n"
	if _, err := f.WriteString(overlong + good); err != nil {
		t.Fatal(err)
	}

	g := &Gatekeeper{f: f}

	matched, err := g.MatchLine(want)
	if err != nil {
		t.Fatal(err)
	}
	if matched {
		t.Fatal("expected overlong line to be discarded, not matched")
	}

	matched, err = g.MatchLine(good)
	if err != nil {
		t.Fatal(err)
	}
	if !matched {
		t.Fatal("expected the line following an overlong one to still match")
	}
}

func TestMatchLineNoTrailingNewlineAtEOF(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "userchroot-conf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString("alice:/srv/jails"); err != nil {
		t.Fatal(err)
	}

	g := &Gatekeeper{f: f}
	matched, err := g.MatchLine("alice:/srv/jails\n")
	if err != nil {
		t.Fatal(err)
	}
	if matched {
		t.Fatal("a line with no trailing newline must never match, even at EOF")
	}
}

func TestLinesIteratesWithoutTrailingNewlines(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "userchroot-conf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	content := "alice:/srv/jails\nbob:/srv/other\n"
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}

	g := &Gatekeeper{f: f}
	var got []string
	err = g.Lines(func(line string) (bool, error) {
		got = append(got, line)
		return false, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
