// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package identity resolves a uid to an account name using the host's
// /etc/passwd, needed before an authorization decision can name an
// owner in the policy file.
package identity

import (
	"bufio"
	"os"

	pwd "github.com/astromechza/etcpwdparse"

	"github.com/bloomberg/userchroot/internal/pkg/ucerror"
)

// passwdPath is the host account database consulted for uid -> name
// resolution. Not configurable: this tool never trusts a caller-supplied
// database path.
const passwdPath = "/etc/passwd"

// LookupName resolves uid to its account name by scanning /etc/passwd
// line by line with pwd.ParsePasswdLine. The first matching uid wins,
// mirroring glibc's own nsswitch "files" lookup order.
func LookupName(uid uint32) (string, error) {
	f, err := os.Open(passwdPath)
	if err != nil {
		return "", ucerror.New(ucerror.KindResource, "failed to open the account database")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entry, err := pwd.ParsePasswdLine(line)
		if err != nil {
			continue
		}
		if uint32(entry.Uid()) == uid {
			return entry.Username(), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", ucerror.New(ucerror.KindResource, "failed to read the account database")
	}

	return "", ucerror.New(ucerror.KindPolicy, "failed to resolve account name for owner")
}
