package optimization

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"sine-fitting/internal/domain"
)

const (
	hessianStep = 1e-6
	pinvRcond   = 1e-15
)

// Uncertainty - ковариационная матрица и стандартные ошибки параметров
type Uncertainty struct {
	Covariance *mat.Dense
	StdErrors  []float64
	// Fallback выставляется, когда вместо оценки возвращено значение по умолчанию
	Fallback bool
}

// CovarianceEstimator оценивает неопределённость параметров в точке оптимума.
type CovarianceEstimator interface {
	Name() string
	Estimate(cost *CostFunction, params []float64) Uncertainty
}

// NewCovarianceEstimator returns the estimator for the given method.
func NewCovarianceEstimator(logger *zap.Logger, method domain.CovarianceMethod) CovarianceEstimator {
	if method == domain.CovarianceHessian {
		return &HessianCovariance{logger: logger, step: hessianStep}
	}
	return &JacobianCovariance{logger: logger}
}

// HessianCovariance inverts a finite-difference Hessian of the sum of raw
// (unsquared) residuals. A singular Hessian is pseudo-inverted; any other
// failure yields the identity matrix.
type HessianCovariance struct {
	logger *zap.Logger
	step   float64
}

func (h *HessianCovariance) Name() string { return domain.CovarianceHessian.String() }

func (h *HessianCovariance) Estimate(cost *CostFunction, params []float64) Uncertainty {
	n := len(params)
	fallback := func(reason string) Uncertainty {
		h.logger.Debug("Hessian covariance fallback", zap.String("reason", reason))
		cov := identity(n)
		return Uncertainty{Covariance: cov, StdErrors: StandardErrors(cov), Fallback: true}
	}

	residualSum := func(p []float64) float64 {
		return floats.Sum(cost.Residuals(p, nil))
	}

	step := h.step
	base := residualSum(params)
	single := make([]float64, n)
	shifted := append([]float64(nil), params...)
	for i := 0; i < n; i++ {
		shifted[i] += step
		single[i] = residualSum(shifted)
		shifted[i] = params[i]
	}

	hessian := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			copy(shifted, params)
			shifted[i] += step
			shifted[j] += step
			hessian.Set(i, j, (residualSum(shifted)-single[i]-single[j]+base)/(step*step))
		}
	}
	if !allFinite(hessian.RawMatrix().Data) {
		return fallback("non-finite hessian")
	}

	var cov mat.Dense
	if mat.Det(hessian) != 0 {
		if err := cov.Inverse(hessian); err == nil && allFinite(cov.RawMatrix().Data) {
			return Uncertainty{Covariance: &cov, StdErrors: StandardErrors(&cov)}
		}
	}

	pinv, ok := pseudoInverse(hessian)
	if !ok {
		return fallback("svd failed")
	}
	return Uncertainty{Covariance: pinv, StdErrors: StandardErrors(pinv)}
}

// JacobianCovariance uses the asymptotic estimate (JᵀJ)⁻¹·SS_res/(n-p).
// On failure it reports zero uncertainty.
type JacobianCovariance struct {
	logger *zap.Logger
}

func (j *JacobianCovariance) Name() string { return domain.CovarianceJacobian.String() }

func (j *JacobianCovariance) Estimate(cost *CostFunction, params []float64) Uncertainty {
	n := len(params)
	fallback := func(reason string) Uncertainty {
		j.logger.Debug("Jacobian covariance fallback", zap.String("reason", reason))
		return Uncertainty{
			Covariance: mat.NewDense(n, n, nil),
			StdErrors:  make([]float64, n),
			Fallback:   true,
		}
	}

	dof := cost.Samples().Len() - n
	if dof <= 0 {
		return fallback("not enough samples")
	}

	ssRes := cost.sse(params)
	if !isFinite(ssRes) {
		return fallback("non-finite residuals")
	}

	jac := cost.Jacobian(params)
	var jtj, cov mat.Dense
	jtj.Mul(jac.T(), jac)
	if err := cov.Inverse(&jtj); err != nil {
		return fallback(err.Error())
	}
	cov.Scale(ssRes/float64(dof), &cov)

	if !allFinite(cov.RawMatrix().Data) {
		return fallback("non-finite covariance")
	}
	return Uncertainty{Covariance: &cov, StdErrors: StandardErrors(&cov)}
}

// StandardErrors returns sqrt(|diag(cov)|).
func StandardErrors(cov mat.Matrix) []float64 {
	r, _ := cov.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = math.Sqrt(math.Abs(cov.At(i, i)))
	}
	return out
}

// pseudoInverse вычисляет псевдообратную матрицу через SVD.
func pseudoInverse(a *mat.Dense) (*mat.Dense, bool) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return nil, false
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	r, c := a.Dims()
	cutoff := 0.0
	if len(values) > 0 {
		cutoff = pinvRcond * floats.Max(values)
	}
	sInv := mat.NewDense(c, r, nil)
	for i, s := range values {
		if s > cutoff {
			sInv.Set(i, i, 1/s)
		}
	}

	var tmp, out mat.Dense
	tmp.Mul(&v, sInv)
	out.Mul(&tmp, u.T())
	if !allFinite(out.RawMatrix().Data) {
		return nil, false
	}
	return &out, true
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
