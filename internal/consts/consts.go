package consts

const (
	DefaultTol   = 1e-8   // Default relative residual tolerance
	BreakdownEps = 1e-14  // Arnoldi subdiagonal below this cannot extend the basis
	ZeroNormEps  = 1e-300 // Norms below this are treated as exactly zero
)
