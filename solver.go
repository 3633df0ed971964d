// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.6.15
//

// Implements the weighted least-squares inverse kinematics solver.

package goik

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SolveWLS solves one damped weighted least-squares update
// - dx = (G^t W G + lambda I)^-1 G^t W dr
// - lambda = 0 gives the plain Gauss-Newton step
func SolveWLS(G mat.Matrix, dr mat.Vector, W mat.Matrix, lambda float64) (dx mat.Vector, err error) {

	n1, m1 := G.Dims()
	n2, m2 := W.Dims()
	if n1 != n2 {
		return nil, fmt.Errorf("invalid matrix size. G(%d x %d), W(%d x %d)", n1, m1, n2, m2)
	}
	l1 := dr.Len()
	if l1 != m2 {
		return nil, fmt.Errorf("invalid matrix size. W(%d x %d), dr(%d x 1)", n2, m2, l1)
	}

	// A（G^t W G + lambda I)
	var WG mat.Dense
	WG.Mul(W, G)
	var A mat.Dense
	A.Mul(G.T(), &WG)
	for i := 0; i < m1; i++ {
		A.Set(i, i, A.At(i, i)+lambda)
	}

	// b（G^t W dr）
	var GtW mat.Dense
	GtW.Mul(G.T(), W)
	var b mat.VecDense
	b.MulVec(&GtW, dr)

	// Solve for x (x = A^-1 b)
	var x mat.VecDense
	err = x.SolveVec(&A, &b)
	if err != nil {
		return nil, err
	}
	dx = &x

	return
}

// SolverOpt contains the tuning parameters of an inverse kinematics solve
type SolverOpt struct {
	Accuracy   float64 // Convergence tolerance on the coordinate update [rad]
	MaxIter    int     // Maximum number of Gauss-Newton iterations per solve
	LambdaInit float64 // Initial damping factor for the normal equations
}

// NewSolverOpt creates a new SolverOpt with default values
func NewSolverOpt() *SolverOpt {
	return &SolverOpt{
		Accuracy:   DEFAULT_ACCURACY, // Coordinate update tolerance [rad]
		MaxIter:    MAX_SOLVE_ITER,   // Iteration cap per solve
		LambdaInit: LAMBDA_INIT,      // Near-zero damping, raised on rejected steps
	}
}

// InverseKinematicsSolver adjusts the free coordinates of a kinematic model
// so that model-predicted marker positions and coordinate values match
// weighted reference targets in a least-squares sense.
//
// The solver binds to one model, one markers reference and a set of
// coordinate references for its entire lifetime; the name matching and
// observable order are fixed at construction. Marker observables come first,
// in reference column order, followed by coordinate observables; index i of
// every weight or error slice refers to the same observable for the life of
// the instance.
//
// A solver is not safe for concurrent use. Assemble and Track block until
// convergence and mutate the caller's state in place.
type InverseKinematicsSolver struct {
	model       *Model
	markersRef  *MarkersReference
	observables []observable // Marker observables first, then coordinates
	nMarkers    int
	accuracy    float64
	maxIter     int
	lambdaInit  float64
	solved      bool
	last        *State // Copy of the last solved state
}

// NewInverseKinematicsSolver binds a model to reference data with default
// tuning. Reference markers that do not exist in the model are skipped (with
// a debug log); binding fails with a BindingError if no reference marker
// matches the model or if a coordinate reference names an unknown coordinate.
// markersRef may be nil when only coordinate targets are tracked.
func NewInverseKinematicsSolver(model *Model, markersRef *MarkersReference, coordRefs []*CoordinateReference) (*InverseKinematicsSolver, error) {
	return NewInverseKinematicsSolverOpt(model, markersRef, coordRefs, NewSolverOpt())
}

// NewInverseKinematicsSolverOpt is NewInverseKinematicsSolver with explicit
// tuning parameters.
func NewInverseKinematicsSolverOpt(model *Model, markersRef *MarkersReference, coordRefs []*CoordinateReference, opt *SolverOpt) (*InverseKinematicsSolver, error) {

	if opt.Accuracy <= 0 {
		return nil, &InvalidArgumentError{Arg: "opt.Accuracy", Reason: fmt.Sprintf("must be > 0, got %g", opt.Accuracy)}
	}
	if opt.MaxIter < 1 {
		return nil, &InvalidArgumentError{Arg: "opt.MaxIter", Reason: fmt.Sprintf("must be >= 1, got %d", opt.MaxIter)}
	}
	if opt.LambdaInit <= 0 {
		return nil, &InvalidArgumentError{Arg: "opt.LambdaInit", Reason: fmt.Sprintf("must be > 0, got %g", opt.LambdaInit)}
	}

	p := &InverseKinematicsSolver{
		model:       model,
		markersRef:  markersRef,
		observables: []observable{},
		accuracy:    opt.Accuracy,
		maxIter:     opt.MaxIter,
		lambdaInit:  opt.LambdaInit,
	}

	if markersRef != nil {
		names := markersRef.Names()
		for _, name := range names {
			mk, ok := model.markerByName(name)
			if !ok {
				PrintD(2, "\t%s: not in the model, skipped\n", name)
				continue
			}
			p.observables = append(p.observables, &markerObservable{
				mk:  mk,
				ref: markersRef,
				w:   markersRef.Weight(name),
			})
			p.nMarkers++
		}
		if len(names) > 0 && p.nMarkers == 0 {
			return nil, &BindingError{Name: names[0], Kind: "marker"}
		}
	}

	for _, cr := range coordRefs {
		idx, ok := model.CoordinateIndex(cr.Name)
		if !ok {
			return nil, &BindingError{Name: cr.Name, Kind: "coordinate"}
		}
		p.observables = append(p.observables, &coordObservable{
			idx: idx,
			ref: cr,
			w:   cr.Weight,
		})
	}

	if len(p.observables) == 0 {
		return nil, fmt.Errorf("no observables to track")
	}

	return p, nil
}

// Accuracy returns the current convergence tolerance.
func (p *InverseKinematicsSolver) Accuracy() float64 {
	return p.accuracy
}

// SetAccuracy sets the convergence tolerance used by subsequent solves. The
// solver iterates until the coordinate update falls below this value, so a
// smaller accuracy never yields a larger weighted residual for the same
// data.
func (p *InverseKinematicsSolver) SetAccuracy(v float64) error {
	if v <= 0 {
		return &InvalidArgumentError{Arg: "accuracy", Reason: fmt.Sprintf("must be > 0, got %g", v)}
	}
	p.accuracy = v
	return nil
}

// MarkerNames returns the bound marker names in observable order.
func (p *InverseKinematicsSolver) MarkerNames() []string {
	names := make([]string, p.nMarkers)
	for i := 0; i < p.nMarkers; i++ {
		names[i] = p.observables[i].name()
	}
	return names
}

// MarkerWeights returns a copy of the current marker weight vector, in
// observable order.
func (p *InverseKinematicsSolver) MarkerWeights() []float64 {
	w := make([]float64, p.nMarkers)
	for i := 0; i < p.nMarkers; i++ {
		w[i] = p.observables[i].weight()
	}
	return w
}

// UpdateMarkerWeights replaces the marker weight vector. The length must
// equal the number of bound marker observables and every entry must be
// non-negative; on error no weight is changed. New weights take effect on
// the next solve.
func (p *InverseKinematicsSolver) UpdateMarkerWeights(w []float64) error {
	if len(w) != p.nMarkers {
		return &InvalidArgumentError{
			Arg:    "weights",
			Reason: fmt.Sprintf("length %d does not match %d bound markers", len(w), p.nMarkers),
		}
	}
	for i, v := range w {
		if v < 0 {
			return &InvalidArgumentError{
				Arg:    "weights",
				Reason: fmt.Sprintf("weight[%d] = %g is negative", i, v),
			}
		}
	}
	for i, v := range w {
		p.observables[i].setWeight(v)
	}
	return nil
}

// Assemble solves for the pose that best matches the reference data at the
// state's time, starting from the coordinate values currently in s. The
// converged pose is written back into s. If the iteration limit is reached
// first, the best pose found is still written back and the returned error
// wraps ErrNotConverged.
func (p *InverseKinematicsSolver) Assemble(s *State) error {
	err := p.solveFrame(s)
	if err != nil && !IsConvergenceWarning(err) {
		return err
	}
	p.solved = true
	p.last = s.Clone()
	return err
}

// Track re-solves for a new frame of a time series, reusing the pose in s as
// the warm start. It requires a prior successful Assemble.
func (p *InverseKinematicsSolver) Track(s *State) error {
	if !p.solved {
		return fmt.Errorf("Track() before Assemble(): %w", ErrNotReady)
	}
	err := p.solveFrame(s)
	if err != nil && !IsConvergenceWarning(err) {
		return err
	}
	p.last = s.Clone()
	return err
}

// IsConvergenceWarning reports whether err is the recoverable
// iteration-limit condition (the solve still produced a usable pose).
func IsConvergenceWarning(err error) bool {
	return errors.Is(err, ErrNotConverged)
}

// activeRow is one observable selected for the current frame, with its
// targets prefetched and its residual rows located in the stacked system.
type activeRow struct {
	obs observable
	tgt []float64
	row int
}

// solveFrame runs the damped Gauss-Newton iteration for the reference data
// at s.Time, mutating s.Q in place.
func (p *InverseKinematicsSolver) solveFrame(s *State) error {

	t := s.Time
	nq := p.model.NumCoordinates()
	if len(s.Q) != nq {
		return &InvalidArgumentError{
			Arg:    "state",
			Reason: fmt.Sprintf("has %d coordinates, model has %d", len(s.Q), nq),
		}
	}

	// Select observables active at this frame. A zero weight or an absent
	// reference sample removes the observable from the residual.
	active := []activeRow{}
	w := []float64{}
	n := 0
	for _, obs := range p.observables {
		if obs.weight() <= 0 {
			continue
		}
		tgt, ok, err := obs.target(t)
		if err != nil {
			return fmt.Errorf("target(%q) failed, err=%v", obs.name(), err)
		}
		if !ok {
			PrintD(3, "\t%s: absent at t=%.3f\n", obs.name(), t)
			continue
		}
		active = append(active, activeRow{obs: obs, tgt: tgt, row: n})
		for k := 0; k < obs.dim(); k++ {
			w = append(w, obs.weight())
		}
		n += obs.dim()
	}
	if n == 0 {
		return fmt.Errorf("no active observables at t=%.3f", t)
	}

	W := mat.NewDiagDense(n, w)
	lambda := p.lambdaInit

	cost := p.residual(s, active)
	PrintD(2, "\tt=%.3f: initial cost=%e\n", t, cost)

	for iter := 0; iter < p.maxIter; iter++ {

		// Linearize around the current pose
		fr := p.model.frames(s.Q)
		G := mat.NewDense(n, nq, nil)
		dr := mat.NewVecDense(n, nil)
		for _, a := range active {
			pred := a.obs.predict(p.model, s, fr)
			for k := range pred {
				dr.SetVec(a.row+k, a.tgt[k]-pred[k])
			}
			a.obs.jacobianInto(p.model, s, fr, G, a.row)
		}
		if DBG_ >= 3 {
			PrintA("\tG ")
			PrintMat(G)
		}

		// Damped step with acceptance test: a step is only taken if it does
		// not increase the weighted cost, so the cost is non-increasing over
		// the whole solve.
		stepped := false
		step := make([]float64, nq)
		q0 := make([]float64, nq)
		copy(q0, s.Q)
		for retry := 0; retry < MAX_DAMP_RETRY && lambda <= LAMBDA_MAX; retry++ {
			dx, err := SolveWLS(G, dr, W, lambda)
			if err != nil {
				lambda *= LAMBDA_UP
				continue
			}
			for i := 0; i < nq; i++ {
				step[i] = dx.AtVec(i)
				s.Q[i] = q0[i] + step[i]
			}
			cost2 := p.residual(s, active)
			if cost2 <= cost {
				cost = cost2
				lambda = math.Max(lambda*LAMBDA_DOWN, p.lambdaInit)
				stepped = true
				break
			}
			copy(s.Q, q0)
			lambda *= LAMBDA_UP
		}

		if !stepped {
			// No step improves the fit: the pose is at the achievable
			// minimum for this data.
			PrintD(2, "\tt=%.3f: stalled at iter %d, cost=%e\n", t, iter, cost)
			return nil
		}

		PrintD(3, "\t--- ITER %d: cost=%e, |dq|=%e, lambda=%e\n", iter+1, cost, floats.Norm(step, math.Inf(1)), lambda)

		if floats.Norm(step, math.Inf(1)) < p.accuracy {
			PrintD(2, "\tt=%.3f: converged after %d iters, cost=%e\n", t, iter+1, cost)
			return nil
		}
	}

	return fmt.Errorf("iteration limit %d reached at t=%.3f: %w", p.maxIter, t, ErrNotConverged)
}

// residual evaluates the weighted sum of squared residuals for the pose in s.
func (p *InverseKinematicsSolver) residual(s *State, active []activeRow) float64 {
	fr := p.model.frames(s.Q)
	cost := 0.0
	for _, a := range active {
		pred := a.obs.predict(p.model, s, fr)
		wg := a.obs.weight()
		for k := range pred {
			d := a.tgt[k] - pred[k]
			cost += wg * d * d
		}
	}
	return cost
}

// ComputeCurrentMarkerErrors returns, per bound marker, the Euclidean
// distance between the model-predicted position at the last-solved pose and
// the reference target at that pose's time. Markers absent at that frame
// report NaN. The call is read-only and idempotent; before any solve it
// fails with ErrNotReady.
func (p *InverseKinematicsSolver) ComputeCurrentMarkerErrors() ([]float64, error) {
	sq, err := p.ComputeCurrentSquaredMarkerErrors()
	if err != nil {
		return nil, err
	}
	for i, v := range sq {
		sq[i] = math.Sqrt(v)
	}
	return sq, nil
}

// ComputeCurrentSquaredMarkerErrors is ComputeCurrentMarkerErrors with
// squared distances.
func (p *InverseKinematicsSolver) ComputeCurrentSquaredMarkerErrors() ([]float64, error) {
	if !p.solved {
		return nil, fmt.Errorf("no solved pose: %w", ErrNotReady)
	}
	fr := p.model.frames(p.last.Q)
	errs := make([]float64, p.nMarkers)
	for i := 0; i < p.nMarkers; i++ {
		mo := p.observables[i].(*markerObservable)
		tgt, ok, err := mo.ref.ValueAt(mo.mk.Name, p.last.Time)
		if err != nil {
			return nil, fmt.Errorf("ValueAt(%q) failed, err=%v", mo.mk.Name, err)
		}
		if !ok {
			errs[i] = math.NaN()
			continue
		}
		pos := p.model.markerWorld(mo.mk, fr)
		errs[i] = SQ(pos.X-tgt.X) + SQ(pos.Y-tgt.Y) + SQ(pos.Z-tgt.Z)
	}
	return errs, nil
}
