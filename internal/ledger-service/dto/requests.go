package dto

type CreateBetRequest struct {
	Content             string `json:"content"`
	FalsifiableCriteria string `json:"falsifiableCriteria"`
	Deadline            string `json:"deadline"` // RFC3339
	Quarter             string `json:"quarter"`  // ex: "Q1-2025"
}

type ResolveBetRequest struct {
	Outcome    string  `json:"outcome"` // "hit" | "miss" | "excused"
	Evidence   *string `json:"evidence,omitempty"`
	Reflection *string `json:"reflection,omitempty"`
}
