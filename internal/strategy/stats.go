package strategy

import "math"

// StatsProvider supplies the one-sample significance test the statistical
// filter depends on. Modeling it as an injected capability keeps "library
// missing" an ordinary branch rather than an import-time conditional.
type StatsProvider interface {
	Available() bool
	// OneSampleTTest tests whether the sample mean differs from mu. It
	// returns the t statistic, the two-sided p-value, and whether the test
	// could be performed at all.
	OneSampleTTest(sample []float64, mu float64) (t, p float64, ok bool)
}

// TTester is the built-in StatsProvider backed by a Student-t distribution.
type TTester struct{}

// Available reports that the built-in tester is always usable.
func (TTester) Available() bool { return true }

// OneSampleTTest implements StatsProvider.
func (TTester) OneSampleTTest(sample []float64, mu float64) (float64, float64, bool) {
	n := len(sample)
	if n < 2 {
		return 0, 1, false
	}
	var sum float64
	for _, x := range sample {
		sum += x
	}
	mean := sum / float64(n)

	var sq float64
	for _, x := range sample {
		d := x - mean
		sq += d * d
	}
	sd := math.Sqrt(sq / float64(n-1))

	if sd == 0 {
		if mean == mu {
			return 0, 1, true
		}
		// Zero variance with a shifted mean: maximally significant.
		if mean > mu {
			return math.Inf(1), 0, true
		}
		return math.Inf(-1), 0, true
	}

	t := (mean - mu) / (sd / math.Sqrt(float64(n)))
	nu := float64(n - 1)
	p := regIncompleteBeta(nu/2, 0.5, nu/(nu+t*t))
	return t, p, true
}

// regIncompleteBeta computes the regularized incomplete beta function
// I_x(a, b) via the standard continued-fraction expansion.
func regIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lgA, _ := math.Lgamma(a)
	lgB, _ := math.Lgamma(b)
	lgAB, _ := math.Lgamma(a + b)
	front := math.Exp(lgAB - lgA - lgB + a*math.Log(x) + b*math.Log(1-x))

	// Use the expansion that converges fastest for the given x.
	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

// betaCF evaluates the continued fraction for the incomplete beta function
// using the modified Lentz method.
func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		tiny    = 1e-30
	)

	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		m2 := float64(2 * m)
		fm := float64(m)

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}
