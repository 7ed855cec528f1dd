// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cannon multiplies dense square matrices with Cannon's algorithm
// on a virtual 2-D torus of processes.
//
// A world of P processes is reduced to the largest d×d grid with d² ≤ P.
// The root pads A and B to a multiple of d, cuts them into d² blocks and
// scatters one A-block and one B-block to every grid cell. After the
// initial skew, cell (r,c) holds A-block (r, (c+r) mod d) and B-block
// ((r+c) mod d, c). Each of the d systolic rounds multiplies the resident
// blocks into the local C-block and then rotates A one step left and B one
// step up. The C-blocks are gathered on the root and cropped to n×n.
//
// Processes talk only through a comm.Comm. The in-process world from
// comm.NewWorld drives every rank as a goroutine (see MultiplyLocal);
// package comm/wsnet connects ranks running as separate processes.
//
// A Task is driven through Validate, PreProcess, Run and PostProcess.
// Execute runs all four and reports success as a boolean.
package cannon
