// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.5.18
//

package goik

const (
	PI = 3.1415926535897932 // Pi

	DEFAULT_ACCURACY = 1e-5 // Default convergence tolerance on the coordinate update [rad]
	DEFAULT_WEIGHT   = 1.0  // Default marker weight when none is registered

	MAX_SOLVE_ITER = 100   // Maximum number of Gauss-Newton iterations per solve
	MAX_DAMP_RETRY = 30    // Maximum step rejections within one iteration
	LAMBDA_INIT    = 1e-10 // Initial damping factor for the normal equations
	LAMBDA_UP      = 10.0  // Damping increase factor on a rejected step
	LAMBDA_DOWN    = 0.1   // Damping decrease factor on an accepted step
	LAMBDA_MAX     = 1e10  // Damping ceiling; reaching it stalls the solve
)
