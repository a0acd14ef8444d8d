// Package schemas defines the wire types of the prediction API. Field names
// mirror the response keys the deployed models have always been served
// under; clients index them positionally, so every batch slice preserves
// input order: batch_*[i] corresponds to code[i].
package schemas

// PredictResponse is the body of /api/v1/{device}/predict.
type PredictResponse struct {
	// BatchVulPred holds the function-level verdict per input:
	// 0 non-vulnerable, 1 vulnerable.
	BatchVulPred []int `json:"batch_vul_pred"`
	// BatchVulPredProb holds the probability of the predicted class.
	BatchVulPredProb []float64 `json:"batch_vul_pred_prob"`
	// BatchLineScores holds one attention-attribution score per detected
	// source line, per input. An inner slice can be shorter than the
	// input's line count: blank lines and lines past the tokenizer's
	// truncation horizon receive no score.
	BatchLineScores [][]float64 `json:"batch_line_scores"`
}

// CWEResponse is the body of /api/v1/{device}/cwe.
type CWEResponse struct {
	CWEID       []string  `json:"cwe_id"`
	CWEIDProb   []float64 `json:"cwe_id_prob"`
	CWEType     []string  `json:"cwe_type"`
	CWETypeProb []float64 `json:"cwe_type_prob"`
}

// SeverityResponse is the body of /api/v1/{device}/sev.
type SeverityResponse struct {
	BatchSevScore []float64 `json:"batch_sev_score"`
	BatchSevClass []string  `json:"batch_sev_class"`
}

// RepairResponse is the body of /api/v1/{device}/repair.
type RepairResponse struct {
	BatchRepair []string `json:"batch_repair"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
