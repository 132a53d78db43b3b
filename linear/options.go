package linear

// Option is a function that configures Regression
type Option func(*Regression)

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(lr *Regression) {
		lr.FitIntercept = fit
	}
}

// WithAlpha sets the L2 penalty. Zero gives ordinary least squares.
// The intercept is never penalized.
func WithAlpha(alpha float64) Option {
	return func(lr *Regression) {
		lr.Alpha = alpha
	}
}

// WithParallelThreshold sets the row count above which the design matrix
// is assembled in parallel.
func WithParallelThreshold(rows int) Option {
	return func(lr *Regression) {
		lr.parallelThreshold = rows
	}
}
