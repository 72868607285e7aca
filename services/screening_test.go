package services

import (
	"math"
	"testing"

	"spectrumhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adult with no reported traits: x = [0.3, 0, 0, 0, 0, 0, 1, 0 x10]
func lowInput() models.ScreeningInput {
	return models.ScreeningInput{Age: 30, AgeDesc: 1}
}

func highInput() models.ScreeningInput {
	in := models.ScreeningInput{
		Age:           30,
		Gender:        1,
		Jaundice:      1,
		FamilyHistory: 1,
		UsedAppBefore: 1,
		Result:        10,
		AgeDesc:       1,
	}
	for i := range in.Answers {
		in.Answers[i] = 1
	}
	return in
}

func TestScreeningInputFeatures(t *testing.T) {
	in := highInput()
	in.Age = 50
	in.Result = 7
	in.Answers[9] = 0

	x := in.Features()
	require.Len(t, x, models.FeatureCount)
	assert.InDelta(t, 0.5, x[0], 1e-9)
	assert.InDelta(t, 0.7, x[5], 1e-9)
	assert.Equal(t, 1.0, x[6])
	assert.Equal(t, 1.0, x[7])
	assert.Equal(t, 0.0, x[16])
}

func TestLogisticRegression(t *testing.T) {
	p, err := logisticRegression{}.Predict(lowInput().Features())
	require.NoError(t, err)

	// -0.24 + 0.3*0.15 + 0.24 = 0.045
	assert.Equal(t, 1, p.Prediction)
	assert.InDelta(t, 1/(1+math.Exp(-0.045)), p.Confidence, 1e-9)
	assert.Equal(t, ModelLogisticRegression, p.Model)
}

func TestRandomForest(t *testing.T) {
	tests := []struct {
		name       string
		input      models.ScreeningInput
		label      int
		confidence float64
	}{
		{"base score only", lowInput(), 0, 0.8},
		{"clamped to one", highInput(), 1, 1.0},
		{
			"jaundice and family history",
			models.ScreeningInput{Age: 30, Jaundice: 1, FamilyHistory: 1},
			0, 0.5,
		},
		{
			"three signals tip over",
			models.ScreeningInput{Age: 30, Jaundice: 1, FamilyHistory: 1, Answers: [10]int{1}},
			1, 0.65,
		},
		{
			"result above half",
			models.ScreeningInput{Age: 30, Result: 6, Jaundice: 1},
			1, 0.55,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := randomForest{}.Predict(tt.input.Features())
			require.NoError(t, err)
			assert.Equal(t, tt.label, p.Prediction)
			assert.InDelta(t, tt.confidence, p.Confidence, 1e-9)
		})
	}
}

func TestSVM(t *testing.T) {
	p, err := supportVectorMachine{}.Predict(lowInput().Features())
	require.NoError(t, err)

	// -0.31 + 0.3*0.12 + 0.22 = -0.054
	assert.Equal(t, 0, p.Prediction)
	assert.InDelta(t, 1/(1+math.Exp(-0.054)), p.Confidence, 1e-9)

	p, err = supportVectorMachine{}.Predict(highInput().Features())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Prediction)
}

func TestXGBoost(t *testing.T) {
	p, err := gradientBoosting{}.Predict(lowInput().Features())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Prediction)
	assert.InDelta(t, 1/(1+math.Exp(-0.3)), p.Confidence, 1e-9)

	p, err = gradientBoosting{}.Predict(highInput().Features())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Prediction)
	assert.InDelta(t, 1/(1+math.Exp(-1.0)), p.Confidence, 1e-9)

	// result 7 is not above the 0.7 split
	in := lowInput()
	in.Result = 7
	p, err = gradientBoosting{}.Predict(in.Features())
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-0.3)), p.Confidence, 1e-9)
}

func TestNeuralNetworkDeterministicPerSeed(t *testing.T) {
	x := highInput().Features()

	a, err := newNeuralNetwork(7).Predict(x)
	require.NoError(t, err)
	b, err := newNeuralNetwork(7).Predict(x)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.GreaterOrEqual(t, a.Confidence, 0.5)
	assert.LessOrEqual(t, a.Confidence, 1.0)
	assert.Contains(t, []int{0, 1}, a.Prediction)
}

func TestNeuralNetworkOutputBounds(t *testing.T) {
	// ReLU hidden layers are non-negative and the output weights positive,
	// so the pre-sigmoid value is at least the 0.2 bias.
	for seed := uint64(1); seed <= 20; seed++ {
		p, err := newNeuralNetwork(seed).Predict(lowInput().Features())
		require.NoError(t, err)
		assert.Equal(t, 1, p.Prediction, "seed %d", seed)
		assert.GreaterOrEqual(t, p.Confidence, 1/(1+math.Exp(-0.2)), "seed %d", seed)
	}
}

func TestClassifiersRejectShortVectors(t *testing.T) {
	for _, c := range NewEnsemble(1).classifiers {
		_, err := c.Predict([]float64{1, 2, 3})
		assert.Error(t, err, c.Name())
	}
}

func TestEnsemblePredict(t *testing.T) {
	e := NewEnsemble(42)
	assert.Equal(t, []string{
		ModelLogisticRegression, ModelRandomForest, ModelSVM, ModelXGBoost, ModelNeuralNetwork,
	}, e.ModelNames())

	res, err := e.Predict(highInput())
	require.NoError(t, err)

	require.Len(t, res.Predictions, 5)
	assert.Len(t, res.ByModel, 5)
	assert.Equal(t, 5, res.Summary.TotalModels)
	assert.Equal(t, 5, res.Summary.PositiveVotes)
	assert.Equal(t, 1, res.Summary.Majority)
	assert.NotEmpty(t, res.Disclaimer)

	var sum float64
	for _, p := range res.Predictions {
		assert.GreaterOrEqual(t, p.Confidence, 0.5)
		assert.Equal(t, p, res.ByModel[p.Model])
		sum += p.Confidence
	}
	assert.InDelta(t, sum/5, res.Summary.MeanConfidence, 1e-9)
}

func TestEnsembleMajorityLow(t *testing.T) {
	res, err := NewEnsemble(42).Predict(lowInput())
	require.NoError(t, err)

	// logistic, xgboost and the network lean positive on this input; forest and svm do not
	assert.Equal(t, 0, res.ByModel[ModelRandomForest].Prediction)
	assert.Equal(t, 0, res.ByModel[ModelSVM].Prediction)
	assert.Equal(t, 3, res.Summary.PositiveVotes)
	assert.Equal(t, 1, res.Summary.Majority)
}

func TestModelMetrics(t *testing.T) {
	metrics := ModelMetrics()
	require.Len(t, metrics, 5)
	assert.Equal(t, ModelXGBoost, metrics[3].Name)
	assert.InDelta(t, 0.89, metrics[3].Accuracy, 1e-9)
}
