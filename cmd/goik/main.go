// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.6.20
//

// Demo driver for the inverse kinematics solver: synthesizes marker data for
// a pendulum held at a reference angle, assembles the first frame from a
// cold start, then tracks the remaining frames while ramping up the weight
// of the left marker.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"

	m "github.com/mkhts/goik"
)

func main() {

	// Parse command line arguments
	args, err := parseArgs()
	if err != nil {
		m.PrintE(err)
		flag.Usage()
		os.Exit(1)
	}

	// Run the main application
	if err := runApplication(args); err != nil {
		m.PrintE(err)
		os.Exit(1)
	}
}

type cmdOpt struct {
	angle    float64 // Ground-truth hinge angle [rad]
	frames   int     // Number of frames to track
	dt       float64 // Frame interval [s]
	noise    float64 // Marker noise radius [m]
	seed     uint64  // Random seed for the noise source
	accuracy float64 // Solver convergence tolerance
	ramp     float64 // Left-marker weight increment per frame
	outFn    string  // Output file path
	noHeader bool    // Suppress the header line
}

// Parse command line arguments
func parseArgs() (a cmdOpt, err error) {
	flag.Usage = func() {
		m.PrintA(`
[Usage]
	%s [Options]

[Options]
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Float64Var(&a.angle, "a", m.PI/3, "Ground-truth hinge angle [rad]")
	flag.IntVar(&a.frames, "n", 101, "Number of frames to synthesize and track")
	flag.Float64Var(&a.dt, "dt", 0.01, "Frame interval [s]")
	flag.Float64Var(&a.noise, "nr", 0.02, "Marker noise radius [m]. Set to 0 for noiseless data.")
	flag.Uint64Var(&a.seed, "seed", 0, "Seed for the marker noise source")
	flag.Float64Var(&a.accuracy, "acc", 1e-6, "Solver convergence tolerance")
	flag.Float64Var(&a.ramp, "wr", 0.1, "Weight increment per frame for the left marker")
	flag.StringVar(&a.outFn, "o", "", "Output file path. If not specified, output to stdout.")
	flag.BoolVar(&a.noHeader, "nh", false, "Do not output the header line.")
	var dbg int
	flag.IntVar(&dbg, "x", 0, "Debug information display. Specify level value. 0(OFF), 1(display), 2(detailed display), 3(more detailed)")
	flag.Parse()
	if a.frames < 1 {
		return a, fmt.Errorf("number of frames must be >= 1")
	}
	m.DBG_ = dbg
	return
}

// Main application processing
func runApplication(args cmdOpt) error {

	// Build the model and the ground-truth trajectory
	model := m.NewPendulumWithMarkers()
	states := make([]*m.State, args.frames)
	for i := range states {
		s := m.NewState(model.NumCoordinates())
		s.Time = float64(i) * args.dt
		s.Q[0] = args.angle
		states[i] = s
	}

	// Synthesize marker data (fixed noise offset across frames)
	table, err := m.GenerateMarkerData(model, states, args.noise, true, rand.NewSource(args.seed))
	if err != nil {
		return fmt.Errorf("failed to generate marker data: %w", err)
	}
	if m.DBG_ >= 1 {
		m.PrintA("--- marker data ---\n")
		fmt.Fprintln(os.Stderr, table)
	}

	// Prepare output
	out, err := prepareOutput(args)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}
	defer closeOutput(out)

	return trackFrames(args, model, table, out)
}

// Track all frames and print per-frame results
func trackFrames(args cmdOpt, model *m.Model, table *m.MarkerTable, out io.Writer) error {

	markersRef := m.NewMarkersReference(table)
	opt := m.NewSolverOpt()
	opt.Accuracy = args.accuracy
	solver, err := m.NewInverseKinematicsSolverOpt(model, markersRef, nil, opt)
	if err != nil {
		return fmt.Errorf("failed to construct solver: %w", err)
	}

	names := solver.MarkerNames()
	if !args.noHeader {
		fmt.Fprintf(out, "%%  time(s)    theta(rad)")
		for _, n := range names {
			fmt.Fprintf(out, "  err_%s(m)", n)
		}
		fmt.Fprintf(out, "  w_%s\n", names[len(names)-1])
	}

	// Cold-start assembly for the first frame
	state := m.NewState(model.NumCoordinates())
	if err := solver.Assemble(state); err != nil {
		if !m.IsConvergenceWarning(err) {
			return fmt.Errorf("assemble failed: %w", err)
		}
		m.PrintD(1, "assemble: %s\n", err.Error())
	}
	m.PrintD(1, "assemble: theta=%.9f rad (%.4f deg)\n", state.Q[0], m.ToDeg(state.Q[0]))

	weights := solver.MarkerWeights()
	for i := 0; i < table.NumFrames(); i++ {
		state.Time = table.Frames[i].Time

		// Ramp up the weight of the left marker frame over frame
		weights[len(weights)-1] = 1 + args.ramp*float64(i)
		if err := solver.UpdateMarkerWeights(weights); err != nil {
			return err
		}

		if err := solver.Track(state); err != nil {
			if !m.IsConvergenceWarning(err) {
				return fmt.Errorf("track failed at t=%.3f: %w", state.Time, err)
			}
			m.PrintD(1, "track t=%.3f: %s\n", state.Time, err.Error())
		}

		errs, err := solver.ComputeCurrentMarkerErrors()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%10.3f  %12.9f", state.Time, state.Q[0])
		for _, e := range errs {
			fmt.Fprintf(out, " %10.6f", e)
		}
		fmt.Fprintf(out, "  %6.2f\n", weights[len(weights)-1])
	}

	return nil
}

// Prepare output file
func prepareOutput(args cmdOpt) (io.WriteCloser, error) {

	// Use stdout if no output file is specified
	if len(args.outFn) == 0 {
		return &nopCloser{os.Stdout}, nil
	}

	// Create output file
	f, err := os.Create(args.outFn)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// Close output file
func closeOutput(out io.WriteCloser) {
	if out != nil {
		out.Close()
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
