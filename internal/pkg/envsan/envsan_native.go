// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

//go:build nativeenvclear

package envsan

import "os"

// snapshot and clear implement the "native" strategy: a single bulk
// call. os.Clearenv drops every entry from the process's environment in
// one step.
func snapshot() []string {
	return os.Environ()
}

func clear() error {
	os.Clearenv()
	return nil
}
