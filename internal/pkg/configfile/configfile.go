// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package configfile implements the TOCTOU-safe open-then-verify handle
// for the compiled-in authorization policy file. Once Open returns, all
// further reads go through the descriptor it pins; no path-based
// operation on the config file is trusted again.
package configfile

import (
	"bufio"
	"io"
	"os"

	"github.com/bloomberg/userchroot/internal/pkg/pathcheck"
	"github.com/bloomberg/userchroot/internal/pkg/ucerror"
	"golang.org/x/sys/unix"
)

// writableBits matches pathcheck's restrictive-permission test.
const writableBits = 0o022

// Gatekeeper holds the single authoritative file descriptor for the
// policy file, opened and identity-pinned by Open.
type Gatekeeper struct {
	f *os.File
}

// Open opens path for reading, validates every ancestor directory with
// pathcheck.WalkAncestors, link-stats the path itself, fstats the opened
// descriptor, and asserts the two stats agree on (device, inode). The
// returned Gatekeeper owns the descriptor; callers must Close it.
func Open(path string) (*Gatekeeper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ucerror.WithPath(ucerror.KindResource, "failed to open configuration file", path)
	}

	if err := pathcheck.WalkAncestors(path); err != nil {
		f.Close()
		return nil, err
	}

	var pathStat unix.Stat_t
	if err := unix.Lstat(path, &pathStat); err != nil {
		f.Close()
		return nil, ucerror.WithPath(ucerror.KindResource, "failed to stat config file", path)
	}
	if pathStat.Mode&unix.S_IFMT != unix.S_IFREG {
		f.Close()
		return nil, ucerror.WithPath(ucerror.KindPolicy, "configuration file is not a regular file", path)
	}
	if pathStat.Uid != 0 {
		f.Close()
		return nil, ucerror.WithPath(ucerror.KindPolicy, "configuration file should be owned by root", path)
	}
	if pathStat.Mode&writableBits != 0 {
		f.Close()
		return nil, ucerror.WithPath(ucerror.KindPolicy, "configuration file has non-restrictive permissions", path)
	}

	var fdStat unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &fdStat); err != nil {
		f.Close()
		return nil, ucerror.WithPath(ucerror.KindResource, "failed to fstat configuration file", path)
	}
	if fdStat.Dev != pathStat.Dev || fdStat.Ino != pathStat.Ino {
		f.Close()
		return nil, ucerror.WithPath(ucerror.KindTOCTOU, "config file moved after opening", path)
	}

	return &Gatekeeper{f: f}, nil
}

// Close releases the underlying descriptor.
func (g *Gatekeeper) Close() error {
	return g.f.Close()
}

// Lines streams the config file line by line to fn. Each line is passed
// without its trailing newline. Reading stops at the first error
// returned by fn, or at EOF. It is a general-purpose iterator used by
// tests and tooling; the authorizer itself uses MatchLine, whose bounded
// buffer semantics are policy-significant.
func (g *Gatekeeper) Lines(fn func(line string) (stop bool, err error)) error {
	if _, err := g.f.Seek(0, 0); err != nil {
		return ucerror.WithPath(ucerror.KindResource, "failed to seek configuration file", "")
	}
	scanner := bufio.NewScanner(g.f)
	for scanner.Scan() {
		stop, err := fn(scanner.Text())
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return ucerror.WithPath(ucerror.KindResource, "failed to read configuration file", "")
	}
	return nil
}

// fgetsLine reads at most maxLen-1 bytes, stopping at (and including) a
// newline, from r. It mirrors C's fgets(buf, maxLen, stream): a line that
// fits returns truncated=false; a line that doesn't fit within maxLen-1
// bytes without a newline returns truncated=true with no newline
// consumed; eof is set once no further bytes are available.
func fgetsLine(r *bufio.Reader, maxLen int) (line string, truncated bool, eof bool, err error) {
	var buf []byte
	for len(buf) < maxLen-1 {
		c, e := r.ReadByte()
		if e == io.EOF {
			return string(buf), false, true, nil
		}
		if e != nil {
			return "", false, false, e
		}
		buf = append(buf, c)
		if c == '\n' {
			return string(buf), false, false, nil
		}
	}
	return string(buf), true, false, nil
}

// discardToNewline consumes and drops bytes up to and including the next
// newline, or until EOF. Used to resynchronize after an overlong line so
// its continuation fragments never participate in a match.
func discardToNewline(r *bufio.Reader) (eof bool, err error) {
	for {
		c, e := r.ReadByte()
		if e == io.EOF {
			return true, nil
		}
		if e != nil {
			return false, e
		}
		if c == '\n' {
			return false, nil
		}
	}
}

// MatchLine reports whether the configuration file contains target as an
// exact line (target must include its trailing newline). The read buffer
// is sized to target's own length plus one, exactly as the original
// source sizes its fgets buffer to the line it's looking for: any actual
// line that doesn't fit is discarded whole, along with any continuation
// fragments, rather than partially compared.
func (g *Gatekeeper) MatchLine(target string) (bool, error) {
	if _, err := g.f.Seek(0, 0); err != nil {
		return false, ucerror.WithPath(ucerror.KindResource, "failed to seek configuration file", "")
	}

	maxLen := len(target) + 1
	r := bufio.NewReader(g.f)

	for {
		line, truncated, eof, err := fgetsLine(r, maxLen)
		if err != nil {
			return false, ucerror.WithPath(ucerror.KindResource, "failed to read configuration file", "")
		}

		if truncated {
			discardEOF, err := discardToNewline(r)
			if err != nil {
				return false, ucerror.WithPath(ucerror.KindResource, "failed to read configuration file", "")
			}
			if discardEOF {
				return false, nil
			}
			continue
		}

		if line == "" && eof {
			return false, nil
		}
		if line == target {
			return true, nil
		}
		if eof {
			return false, nil
		}
	}
}
