package sot

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// kalmanFilter is a constant velocity Kalman filter over the state vector
// (center x, center y, aspect ratio, height) plus their velocities.  Unlike
// a full visual tracker it owns its state mean and covariance so callers
// only feed it measurements
type kalmanFilter struct {
	stdWeightPosition float64
	stdWeightVelocity float64
	// motionMat is the 8x8 constant velocity transition matrix
	motionMat *mat.Dense
	// updateMat is the 4x8 projection from state to measurement space
	updateMat *mat.Dense
	// mean is the 8 element state mean
	mean []float64
	// cov is the 8x8 state covariance
	cov *mat.Dense
}

// newKalmanFilter returns a filter with the given position and velocity
// standard deviation weights
func newKalmanFilter(stdWeightPosition, stdWeightVelocity float64) *kalmanFilter {

	ndim := 4
	dt := 1.0

	motionMat := mat.NewDense(8, 8, nil)

	for i := 0; i < 8; i++ {
		motionMat.Set(i, i, 1.0)
	}

	for i := 0; i < ndim; i++ {
		motionMat.Set(i, ndim+i, dt)
	}

	updateMat := mat.NewDense(4, 8, nil)

	for i := 0; i < 4; i++ {
		updateMat.Set(i, i, 1.0)
	}

	return &kalmanFilter{
		stdWeightPosition: stdWeightPosition,
		stdWeightVelocity: stdWeightVelocity,
		motionMat:         motionMat,
		updateMat:         updateMat,
		mean:              make([]float64, 8),
		cov:               mat.NewDense(8, 8, nil),
	}
}

// initiate seeds the state mean and covariance from a first measurement of
// (center x, center y, aspect ratio, height)
func (kf *kalmanFilter) initiate(measurement [4]float64) {

	copy(kf.mean[:4], measurement[:])

	for i := 4; i < 8; i++ {
		kf.mean[i] = 0.0
	}

	h := measurement[3]

	std := []float64{
		2 * kf.stdWeightPosition * h,
		2 * kf.stdWeightPosition * h,
		1e-2,
		2 * kf.stdWeightPosition * h,
		10 * kf.stdWeightVelocity * h,
		10 * kf.stdWeightVelocity * h,
		1e-5,
		10 * kf.stdWeightVelocity * h,
	}

	kf.cov = mat.NewDense(8, 8, nil)

	for i, v := range std {
		kf.cov.Set(i, i, v*v)
	}
}

// predict advances the state mean and covariance one frame through the
// motion model
func (kf *kalmanFilter) predict() {

	h := kf.mean[3]

	std := []float64{
		kf.stdWeightPosition * h,
		kf.stdWeightPosition * h,
		1e-2,
		kf.stdWeightPosition * h,
		kf.stdWeightVelocity * h,
		kf.stdWeightVelocity * h,
		1e-5,
		kf.stdWeightVelocity * h,
	}

	motionCov := mat.NewDense(8, 8, nil)

	for i, v := range std {
		motionCov.Set(i, i, v*v)
	}

	// mean = F * mean
	meanVec := mat.NewVecDense(8, kf.mean)
	next := mat.NewVecDense(8, nil)
	next.MulVec(kf.motionMat, meanVec)

	for i := 0; i < 8; i++ {
		kf.mean[i] = next.AtVec(i)
	}

	// cov = F * cov * F^T + Q
	tmp := mat.NewDense(8, 8, nil)
	tmp.Mul(kf.motionMat, kf.cov)

	next2 := mat.NewDense(8, 8, nil)
	next2.Mul(tmp, kf.motionMat.T())
	next2.Add(next2, motionCov)

	kf.cov = next2
}

// update corrects the state with a new measurement
func (kf *kalmanFilter) update(measurement [4]float64) error {

	projectedMean, projectedCov := kf.project()

	chol := mat.Cholesky{}

	if ok := chol.Factorize(projectedCov); !ok {
		return errors.New("failed to factorize projected covariance")
	}

	// B = cov * H^T
	B := mat.NewDense(8, 4, nil)
	B.Mul(kf.cov, kf.updateMat.T())

	// solve S * gainT = B^T for the transposed Kalman gain
	var gainT mat.Dense
	err := chol.SolveTo(&gainT, B.T())

	if err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	// innovation is the measurement residual
	innovation := mat.NewVecDense(4, nil)

	for i := 0; i < 4; i++ {
		innovation.SetVec(i, measurement[i]-projectedMean[i])
	}

	// mean += K * innovation
	delta := mat.NewVecDense(8, nil)
	delta.MulVec(gainT.T(), innovation)

	for i := 0; i < 8; i++ {
		kf.mean[i] += delta.AtVec(i)
	}

	// cov -= K * S * K^T
	tmp := mat.NewDense(8, 4, nil)
	tmp.Mul(gainT.T(), projectedCov)

	reduction := mat.NewDense(8, 8, nil)
	reduction.Mul(tmp, &gainT)

	next := mat.NewDense(8, 8, nil)
	next.Sub(kf.cov, reduction)

	kf.cov = next

	return nil
}

// project returns the state mean and covariance projected to measurement
// space with measurement noise added
func (kf *kalmanFilter) project() ([4]float64, *mat.SymDense) {

	h := kf.mean[3]

	std := []float64{
		kf.stdWeightPosition * h,
		kf.stdWeightPosition * h,
		1e-1,
		kf.stdWeightPosition * h,
	}

	innovationCov := mat.NewSymDense(4, nil)

	for i, v := range std {
		innovationCov.SetSym(i, i, v*v)
	}

	projectedVec := mat.NewVecDense(4, nil)
	projectedVec.MulVec(kf.updateMat, mat.NewVecDense(8, kf.mean))

	var projectedMean [4]float64

	for i := 0; i < 4; i++ {
		projectedMean[i] = projectedVec.AtVec(i)
	}

	tmp := mat.NewDense(4, 8, nil)
	tmp.Mul(kf.updateMat, kf.cov)

	tmp2 := mat.NewDense(4, 4, nil)
	tmp2.Mul(tmp, kf.updateMat.T())

	projectedCov := mat.NewSymDense(4, nil)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			projectedCov.SetSym(i, j, tmp2.At(i, j))
		}
	}

	projectedCov.AddSym(projectedCov, innovationCov)

	return projectedMean, projectedCov
}

// positionStd returns the standard deviation of the filter's position
// estimate, the measure of how uncertain the predicted location has become
func (kf *kalmanFilter) positionStd() float64 {
	return math.Sqrt((kf.cov.At(0, 0) + kf.cov.At(1, 1)) / 2)
}
