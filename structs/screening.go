package structs

import (
	"strconv"

	"spectrumhub/models"
)

// ScreeningRequest mirrors the screening form. Answers arrive as "0"/"1" strings.
type ScreeningRequest struct {
	Age           float64  `json:"age" binding:"required,min=1,max=100"`
	Gender        string   `json:"gender" binding:"required,oneof=m f"`
	Jaundice      string   `json:"jaundice" binding:"required,oneof=yes no"`
	FamilyHistory string   `json:"family_history" binding:"required,oneof=yes no"`
	Relation      string   `json:"relation"`
	Ethnicity     string   `json:"ethnicity"`
	UsedAppBefore string   `json:"used_app_before" binding:"required,oneof=yes no"`
	Result        *float64 `json:"result" binding:"required,min=0,max=10"`
	AgeDesc       string   `json:"age_desc" binding:"required,oneof=18_or_more less_than_18"`
	A1            string   `json:"a1" binding:"required,oneof=0 1"`
	A2            string   `json:"a2" binding:"required,oneof=0 1"`
	A3            string   `json:"a3" binding:"required,oneof=0 1"`
	A4            string   `json:"a4" binding:"required,oneof=0 1"`
	A5            string   `json:"a5" binding:"required,oneof=0 1"`
	A6            string   `json:"a6" binding:"required,oneof=0 1"`
	A7            string   `json:"a7" binding:"required,oneof=0 1"`
	A8            string   `json:"a8" binding:"required,oneof=0 1"`
	A9            string   `json:"a9" binding:"required,oneof=0 1"`
	A10           string   `json:"a10" binding:"required,oneof=0 1"`
}

func flag(v, truthy string) int {
	if v == truthy {
		return 1
	}
	return 0
}

// ToInput converts a bound request into the numeric questionnaire.
func (r ScreeningRequest) ToInput() models.ScreeningInput {
	in := models.ScreeningInput{
		Age:           r.Age,
		Gender:        flag(r.Gender, "m"),
		Jaundice:      flag(r.Jaundice, "yes"),
		FamilyHistory: flag(r.FamilyHistory, "yes"),
		UsedAppBefore: flag(r.UsedAppBefore, "yes"),
		AgeDesc:       flag(r.AgeDesc, "18_or_more"),
	}
	if r.Result != nil {
		in.Result = *r.Result
	}
	for i, a := range []string{r.A1, r.A2, r.A3, r.A4, r.A5, r.A6, r.A7, r.A8, r.A9, r.A10} {
		in.Answers[i], _ = strconv.Atoi(a)
	}
	return in
}
