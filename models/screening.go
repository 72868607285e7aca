package models

// FeatureCount is the length of the screening feature vector.
const FeatureCount = 17

// ScreeningInput is one screening questionnaire converted to numbers.
// Binary fields hold 0 or 1.
type ScreeningInput struct {
	Age           float64
	Gender        int // 1 = male
	Jaundice      int
	FamilyHistory int
	UsedAppBefore int
	Result        float64 // 0-10 questionnaire score
	AgeDesc       int     // 1 = 18 or more
	Answers       [10]int // A1..A10
}

// Features returns the normalised vector the scoring formulas consume:
// age/100, gender, jaundice, family history, prior app use, result/10, age bracket, a1..a10.
func (in ScreeningInput) Features() []float64 {
	v := make([]float64, 0, FeatureCount)
	v = append(v,
		in.Age/100,
		float64(in.Gender),
		float64(in.Jaundice),
		float64(in.FamilyHistory),
		float64(in.UsedAppBefore),
		in.Result/10,
		float64(in.AgeDesc),
	)
	for _, a := range in.Answers {
		v = append(v, float64(a))
	}
	return v
}

// Prediction is the output of one scoring formula.
type Prediction struct {
	Model      string  `json:"model"`
	Prediction int     `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

// ScreeningSummary aggregates the per-model predictions.
type ScreeningSummary struct {
	PositiveVotes  int     `json:"positiveVotes"`
	TotalModels    int     `json:"totalModels"`
	Majority       int     `json:"majority"`
	MeanConfidence float64 `json:"meanConfidence"`
}

// ScreeningResult is the response of a screening run.
type ScreeningResult struct {
	Predictions []Prediction          `json:"predictions"`
	ByModel     map[string]Prediction `json:"byModel"`
	Summary     ScreeningSummary      `json:"summary"`
	Disclaimer  string                `json:"disclaimer"`
}

// ModelMetrics is a row of the model comparison table.
type ModelMetrics struct {
	Name      string  `json:"name"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1Score"`
}
