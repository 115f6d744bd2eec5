package mixture

import "errors"

var (
	// ErrInvalidArgument reports K <= 0, K > n, empty data or mismatched
	// dimensions between parameters and data. Nothing is computed.
	ErrInvalidArgument = errors.New("mixture: invalid argument")

	// ErrDegenerateCovariance reports a component covariance that is not
	// positive-definite, during initialization or after an M-step. The
	// affected restart or fold fails; siblings keep running.
	ErrDegenerateCovariance = errors.New("mixture: degenerate covariance")

	// ErrNumericFailure reports a non-finite log-density or log-likelihood
	// produced outside the covariance checks.
	ErrNumericFailure = errors.New("mixture: numeric failure")

	// ErrAllRestartsFailed reports that no restart of a fit produced a
	// usable model.
	ErrAllRestartsFailed = errors.New("mixture: all restarts failed")

	// ErrAllFoldsFailed reports that every cross-validation fold failed.
	ErrAllFoldsFailed = errors.New("mixture: all folds failed")
)
