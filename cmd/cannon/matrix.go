// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/LynnColeArt/cannon/config"
)

// maxMatrixSize bounds the side of a matrix read from text. n² values of a
// larger matrix would not fit in memory.
const maxMatrixSize = 1 << 16

// readMatrix parses the text form: the size n followed by n² values in
// row-major order, separated by any whitespace.
func readMatrix(r io.Reader) (int, []float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, nil, err
		}
		return 0, nil, fmt.Errorf("matrix: missing size")
	}
	n, err := strconv.Atoi(sc.Text())
	if err != nil || n < 1 || n > maxMatrixSize {
		return 0, nil, fmt.Errorf("matrix: bad size %q", sc.Text())
	}
	// Grow with the values actually present rather than trusting the header.
	m := make([]float64, 0, min(n*n, 1<<16))
	for sc.Scan() {
		if len(m) == n*n {
			return 0, nil, fmt.Errorf("matrix: more than %d values", n*n)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return 0, nil, fmt.Errorf("matrix: value %d: %w", len(m), err)
		}
		m = append(m, v)
	}
	if err := sc.Err(); err != nil {
		return 0, nil, err
	}
	if len(m) != n*n {
		return 0, nil, fmt.Errorf("matrix: got %d values, want %d", len(m), n*n)
	}
	return n, m, nil
}

// writeMatrix writes m in the form readMatrix accepts, one row per line.
func writeMatrix(w io.Writer, n int, m []float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(m[i*n+j], 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func readMatrixFile(path string) (int, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()
	n, m, err := readMatrix(f)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, m, nil
}

func writeMatrixFile(path string, n int, m []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeMatrix(f, n, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// operands loads A and B from the job's files or generates them from its
// seed.
func operands(job config.Job) (n int, a, b []float64, err error) {
	if job.A != "" {
		n, a, err = readMatrixFile(job.A)
		if err != nil {
			return 0, nil, nil, err
		}
		nb, bm, err := readMatrixFile(job.B)
		if err != nil {
			return 0, nil, nil, err
		}
		if nb != n {
			return 0, nil, nil, fmt.Errorf("A is %d×%d but B is %d×%d", n, n, nb, nb)
		}
		return n, a, bm, nil
	}
	rng := rand.New(rand.NewSource(job.Seed))
	gen := func() []float64 {
		m := make([]float64, job.N*job.N)
		for i := range m {
			m[i] = rng.Float64()*2 - 1
		}
		return m
	}
	a = gen()
	b = gen()
	return job.N, a, b, nil
}
