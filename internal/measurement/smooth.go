package measurement

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RMahshie/fluxloop/internal/series"
)

// SavitzkyGolayCoefficients returns the 2·halfWidth+1 convolution weights that
// evaluate a least-squares polynomial of the given degree at the window
// centre.
func SavitzkyGolayCoefficients(halfWidth, degree int) ([]float64, error) {
	size := 2*halfWidth + 1
	if halfWidth < 1 || degree < 0 || degree >= size {
		return nil, fmt.Errorf("%w: half width %d, degree %d", ErrWindow, halfWidth, degree)
	}
	// Vandermonde matrix of the window offsets.
	j := mat.NewDense(size, degree+1, nil)
	for i := 0; i < size; i++ {
		x := float64(i - halfWidth)
		p := 1.0
		for k := 0; k <= degree; k++ {
			j.Set(i, k, p)
			p *= x
		}
	}
	id := mat.NewDense(size, size, nil)
	for i := 0; i < size; i++ {
		id.Set(i, i, 1)
	}
	var pinv mat.Dense
	if err := pinv.Solve(j, id); err != nil {
		return nil, fmt.Errorf("savitzky-golay fit: %w", err)
	}
	return mat.Row(nil, 0, &pinv), nil
}

// SavitzkyGolay smooths s with a local polynomial fit. The halfWidth samples
// at each end have no full window and are dropped, so the result has
// Len()−2·halfWidth samples on the frequencies of the window centres.
func SavitzkyGolay(s *series.FrequencySeries, halfWidth, degree int) (*series.FrequencySeries, error) {
	coef, err := SavitzkyGolayCoefficients(halfWidth, degree)
	if err != nil {
		return nil, err
	}
	n := s.Len()
	if n < len(coef) {
		return nil, fmt.Errorf("%w: %d samples for a window of %d", ErrWindow, n, len(coef))
	}
	out := &series.FrequencySeries{Name: s.Name, Unit: s.Unit, Samples: make([]series.Sample, 0, n-2*halfWidth)}
	for c := halfWidth; c < n-halfWidth; c++ {
		var v, u2 float64
		for k, w := range coef {
			p := s.Samples[c-halfWidth+k]
			v += w * p.Value
			u2 += w * w * p.Uncertainty * p.Uncertainty
		}
		out.Samples = append(out.Samples, series.Sample{
			Frequency:   s.Samples[c].Frequency,
			Value:       v,
			Uncertainty: math.Sqrt(u2),
		})
	}
	return out, nil
}

// MovingAverage returns the rolling mean of window consecutive samples. Each
// mean is reported at the last frequency of its window, so the result has
// Len()−window+1 samples.
func MovingAverage(s *series.FrequencySeries, window int) (*series.FrequencySeries, error) {
	n := s.Len()
	if window < 1 || window > n {
		return nil, fmt.Errorf("%w: window %d over %d samples", ErrWindow, window, n)
	}
	out := &series.FrequencySeries{Name: s.Name, Unit: s.Unit, Samples: make([]series.Sample, 0, n-window+1)}
	var sum, u2 float64
	for i, p := range s.Samples {
		sum += p.Value
		u2 += p.Uncertainty * p.Uncertainty
		if i >= window {
			old := s.Samples[i-window]
			sum -= old.Value
			u2 -= old.Uncertainty * old.Uncertainty
		}
		if i >= window-1 {
			out.Samples = append(out.Samples, series.Sample{
				Frequency:   p.Frequency,
				Value:       sum / float64(window),
				Uncertainty: math.Sqrt(math.Max(u2, 0)) / float64(window),
			})
		}
	}
	return out, nil
}
