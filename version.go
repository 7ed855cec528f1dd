// Copyright ©2019 The Gonum Authors. All rights reserved.
// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cannon

import (
	"fmt"
	"runtime/debug"
)

const root = "github.com/LynnColeArt/cannon"

// Version returns the version of the cannon module and its checksum as
// recorded in the binary's build info, and the version of the gonum module
// that backs the block kernel. The returned values are empty in binaries
// built without module support.
//
// The exact version format returned by Version may change in future.
func Version() (version, sum, gonum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", ""
	}
	if b.Main.Path == root {
		version, sum = b.Main.Version, b.Main.Sum
	}
	for _, m := range b.Deps {
		switch m.Path {
		case root:
			version, sum = moduleVersion(m)
		case "gonum.org/v1/gonum":
			gonum, _ = moduleVersion(m)
		}
	}
	return version, sum, gonum
}

func moduleVersion(m *debug.Module) (version, sum string) {
	if m.Replace == nil {
		return m.Version, m.Sum
	}
	switch {
	case m.Replace.Version != "" && m.Replace.Path != "":
		return fmt.Sprintf("%s=>%s %s", m.Version, m.Replace.Path, m.Replace.Version), m.Replace.Sum
	case m.Replace.Version != "":
		return fmt.Sprintf("%s=>%s", m.Version, m.Replace.Version), m.Replace.Sum
	case m.Replace.Path != "":
		return fmt.Sprintf("%s=>%s", m.Version, m.Replace.Path), m.Replace.Sum
	default:
		return m.Version + "*", m.Sum + "*"
	}
}
