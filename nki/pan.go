package nki

// panScale converts between the canonical panorama (-1..1, 0 center) and
// the stored value of one generation. Normalize and denormalize must be
// exact inverses for every valid input.
type panScale struct {
	normalize   func(stored float64) float64
	denormalize func(pan float64) float64
}

// Generation 1 stores panning as 0..1 with 0.5 center.
var gen1Pan = panScale{
	normalize:   func(v float64) float64 { return (v - 0.5) / 0.5 },
	denormalize: func(v float64) float64 { return 0.5 + v*0.5 },
}

// Generation 2 stores panning as a percentage -100..100.
var gen2Pan = panScale{
	normalize:   func(v float64) float64 { return v / 100 },
	denormalize: func(v float64) float64 { return v * 100 },
}
