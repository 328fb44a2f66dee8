package model

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrModelNotReady  = errors.New("model not ready")
	ErrModelLoad      = errors.New("model load failed")
	ErrShapeMismatch  = errors.New("tensor shape mismatch")
	ErrUnlabeledClass = errors.New("predicted class has no label")
	ErrEmptyOutput    = errors.New("empty classifier output")
)

// Decode selects the highest-probability slot. Ties keep the lowest index.
// Every slot takes part in the scan, so a winner past the end of labels is
// rejected with ErrUnlabeledClass rather than mapped to some other class.
func Decode(probs ProbabilityVector, labels []string) (*PredictionResult, error) {
	if len(probs) == 0 {
		return nil, ErrEmptyOutput
	}

	maxIdx := 0
	maxVal := probs[0]
	for i := 1; i < len(probs); i++ {
		if probs[i] > maxVal {
			maxVal = probs[i]
			maxIdx = i
		}
	}

	if maxIdx >= len(labels) {
		return nil, fmt.Errorf("%w: index %d (value %v), %d labels", ErrUnlabeledClass, maxIdx, maxVal, len(labels))
	}

	return &PredictionResult{
		Index:       maxIdx,
		Label:       labels[maxIdx],
		Probability: maxVal,
	}, nil
}

// Scores maps each labelled slot to its raw value.
func Scores(probs ProbabilityVector, labels []string) map[string]float32 {
	predictions := make(map[string]float32, len(labels))
	for i, val := range probs {
		if i < len(labels) {
			predictions[labels[i]] = val
		}
	}
	return predictions
}

// FormatResult renders the result the way it is shown to the user.
func FormatResult(r *PredictionResult) string {
	return "Predicted: " + r.Label + "\nProbability: " + strconv.FormatFloat(float64(r.Probability), 'g', -1, 32)
}
