// Package solver implements restarted GMRES for complex sparse systems.
//
// The Krylov basis is built with Arnoldi iteration using modified
// Gram-Schmidt, and the projected least-squares problem is updated
// incrementally with Givens rotations, so the residual norm of every
// iteration is available without re-solving. The residual history is
// part of the contract, not a diagnostic: downstream sweeps judge
// convergence quality from it.
package solver

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/edp1096/toy-helmholtz/internal/consts"
)

var (
	// ErrDidNotConverge reports that MaxIter ran out before the relative
	// residual reached Tol. The returned Result still holds the best
	// solution and the full history; the caller decides whether to
	// retry or accept it.
	ErrDidNotConverge = errors.New("solver: did not converge")
	// ErrBreakdown reports that the Krylov basis could not be extended
	// (a candidate direction vanished during orthogonalization). The
	// returned Result holds the best solution found so far.
	ErrBreakdown = errors.New("solver: krylov subspace breakdown")
	// ErrDimensionMismatch reports that b does not match the operator size.
	ErrDimensionMismatch = errors.New("solver: dimension mismatch")
)

// Operator is the minimal matrix surface GMRES needs. operator.Operator
// satisfies it; tests may provide their own.
type Operator interface {
	Size() int
	// MatVec computes dst = A·x. dst and x have length Size and do not alias.
	MatVec(dst, x []complex128)
}

// Options controls a GMRES run.
type Options struct {
	// Restart bounds the Krylov subspace; the solve restarts from the
	// current iterate every Restart iterations. <= 0 means no restart.
	Restart int
	// Tol is the relative residual tolerance ‖b−Ax‖/‖b‖. <= 0 selects
	// the default.
	Tol float64
	// MaxIter caps total iterations across restarts. Negative means the
	// system size; zero returns the initial guess immediately.
	MaxIter int
}

// DefaultOptions returns the options used when callers have no opinion:
// no restart, default tolerance, MaxIter equal to the system size.
func DefaultOptions() Options {
	return Options{Restart: 0, Tol: consts.DefaultTol, MaxIter: -1}
}

// Result carries the outcome of a solve. It is populated even when
// Solve returns ErrDidNotConverge or ErrBreakdown.
type Result struct {
	Solution []complex128
	// Residuals holds the relative residual norm after each iteration,
	// in iteration order. Empty if no iterations ran.
	Residuals  []float64
	Iterations int
	Converged  bool
}

// Solve runs restarted GMRES on A·x = b from a zero initial guess.
func Solve(a Operator, b []complex128, opts Options) (*Result, error) {
	n := a.Size()
	if len(b) != n {
		return nil, fmt.Errorf("%w: operator size %d, rhs length %d", ErrDimensionMismatch, n, len(b))
	}
	tol := opts.Tol
	if tol <= 0 {
		tol = consts.DefaultTol
	}
	maxIter := opts.MaxIter
	if maxIter < 0 {
		maxIter = n
	}

	x := make([]complex128, n)
	res := &Result{Solution: x}

	bnorm := norm(b)
	if bnorm <= consts.ZeroNormEps {
		res.Converged = true
		return res, nil
	}
	if maxIter == 0 {
		return res, nil
	}
	restart := opts.Restart
	if restart <= 0 || restart > maxIter {
		restart = maxIter
	}

	r := make([]complex128, n)
	w := make([]complex128, n)
	total := 0

	for total < maxIter {
		a.MatVec(r, x)
		for i := range r {
			r[i] = b[i] - r[i]
		}
		beta := norm(r)
		if beta/bnorm <= tol || beta <= consts.ZeroNormEps {
			res.Converged = true
			res.Iterations = total
			return res, nil
		}

		m := restart
		if rem := maxIter - total; m > rem {
			m = rem
		}

		// Arnoldi basis and the rotated Hessenberg system.
		basis := make([][]complex128, m+1)
		hess := make([][]complex128, m+1)
		for i := range hess {
			hess[i] = make([]complex128, m)
		}
		cs := make([]complex128, m)
		sn := make([]complex128, m)
		g := make([]complex128, m+1)
		g[0] = complex(beta, 0)
		basis[0] = make([]complex128, n)
		for i := range r {
			basis[0][i] = r[i] / complex(beta, 0)
		}

		cols := 0
		converged := false
		broke := false
		exhausted := false
		for j := 0; j < m; j++ {
			a.MatVec(w, basis[j])
			for i := 0; i <= j; i++ {
				hij := dot(basis[i], w)
				hess[i][j] = hij
				for k := range w {
					w[k] -= hij * basis[i][k]
				}
			}
			hnext := norm(w)

			for i := 0; i < j; i++ {
				t := cs[i]*hess[i][j] + sn[i]*hess[i+1][j]
				hess[i+1][j] = -cmplx.Conj(sn[i])*hess[i][j] + cs[i]*hess[i+1][j]
				hess[i][j] = t
			}

			if hnext <= consts.BreakdownEps {
				if cmplx.Abs(hess[j][j]) <= consts.BreakdownEps {
					// The new direction vanished and the projected column
					// carries no pivot: the subspace cannot reduce the
					// residual any further.
					broke = true
					break
				}
				// Invariant subspace: the projected solve is exact.
				cs[j], sn[j] = 1, 0
				g[j+1] = 0
				cols = j + 1
				total++
				res.Residuals = append(res.Residuals, 0)
				converged = true
				break
			}

			basis[j+1] = make([]complex128, n)
			for k := range w {
				basis[j+1][k] = w[k] / complex(hnext, 0)
			}
			c, s := givens(hess[j][j], complex(hnext, 0))
			cs[j], sn[j] = c, s
			hess[j][j] = c*hess[j][j] + s*complex(hnext, 0)
			g[j+1] = -cmplx.Conj(s) * g[j]
			g[j] = c * g[j]

			cols = j + 1
			total++
			rel := cmplx.Abs(g[j+1]) / bnorm
			res.Residuals = append(res.Residuals, rel)
			if rel <= tol {
				converged = true
				break
			}
			if total >= maxIter {
				exhausted = true
				break
			}
		}

		// Back substitution over the columns actually built, then update
		// the iterate; valid for convergence, restart, and breakdown alike.
		if cols > 0 {
			y := make([]complex128, cols)
			for i := cols - 1; i >= 0; i-- {
				sum := g[i]
				for l := i + 1; l < cols; l++ {
					sum -= hess[i][l] * y[l]
				}
				y[i] = sum / hess[i][i]
			}
			for l := 0; l < cols; l++ {
				for i := 0; i < n; i++ {
					x[i] += y[l] * basis[l][i]
				}
			}
		}
		res.Iterations = total

		if converged {
			res.Converged = true
			return res, nil
		}
		if broke {
			return res, ErrBreakdown
		}
		if exhausted {
			break
		}
	}

	res.Iterations = total
	return res, ErrDidNotConverge
}

// norm is the Euclidean norm.
func norm(v []complex128) float64 {
	var sum float64
	for _, z := range v {
		sum += real(z)*real(z) + imag(z)*imag(z)
	}
	return math.Sqrt(sum)
}

// dot is the conjugated inner product ⟨u, v⟩ = Σ conj(uᵢ)·vᵢ.
func dot(u, v []complex128) complex128 {
	var sum complex128
	for i := range u {
		sum += cmplx.Conj(u[i]) * v[i]
	}
	return sum
}

// givens builds the complex Givens rotation annihilating b against a:
// [c s; -conj(s) c]·[a b]ᵀ = [r 0]ᵀ with real c.
func givens(a, b complex128) (c, s complex128) {
	if a == 0 {
		return 0, 1
	}
	absA := cmplx.Abs(a)
	den := math.Hypot(absA, cmplx.Abs(b))
	c = complex(absA/den, 0)
	s = a / complex(absA, 0) * cmplx.Conj(b) / complex(den, 0)
	return c, s
}
