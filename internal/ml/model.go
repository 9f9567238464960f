package ml

import "encoding/gob"

// Model is a fitted regressor over a fixed-width feature vector.
type Model interface {
	Predict(x []float64) float64
}

func init() {
	// Concrete model types cross the gob boundary inside the trained
	// artifact bundle.
	gob.Register(&Tree{})
	gob.Register(&Forest{})
	gob.Register(&GBT{})
	gob.Register(&Stacked{})
}
