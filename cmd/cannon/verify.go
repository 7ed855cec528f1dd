// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/LynnColeArt/cannon"
	"github.com/LynnColeArt/cannon/config"
)

// verify recomputes A·B with gonum and compares it with c.
func verify(n int, a, b, c []float64, tol config.Tolerance) cannon.VerificationResult {
	var want mat.Dense
	want.Mul(mat.NewDense(n, n, a), mat.NewDense(n, n, b))

	cfg := cannon.DefaultTolerance()
	cfg.AbsTol = tol.Abs
	cfg.RelTol = tol.Rel
	res := cannon.VerifyFloat64Array(want.RawMatrix().Data, c, cfg)
	klog.V(1).InfoS("verified", "n", n, "errors", res.NumErrors,
		"maxAbs", res.MaxAbsError, "maxRel", res.MaxRelError)
	return res
}
