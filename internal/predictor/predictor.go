// File: internal/predictor/predictor.go

// Package predictor orchestrates the per-endpoint prediction pipelines:
// tokenize, frame, run the model, and post-process into wire responses.
// Batch items are independent units of work; nothing computed for one item
// can influence a sibling.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"vulnserve/api/schemas"
	"vulnserve/internal/attribution"
	"vulnserve/internal/config"
	"vulnserve/internal/labels"
	"vulnserve/internal/repair"
	"vulnserve/internal/runtime"
	"vulnserve/internal/severity"
	"vulnserve/internal/tokenize"
)

// Runtime is the slice of the inference sidecar client the predictor needs.
type Runtime interface {
	Tokenize(ctx context.Context, code []string) ([][]int, [][]string, error)
	Classify(ctx context.Context, provider runtime.Provider, ids [][]int) ([][]float64, []attribution.Tensor, error)
	ClassifyCWE(ctx context.Context, provider runtime.Provider, ids [][]int) ([][]float64, [][]float64, error)
	ScoreSeverity(ctx context.Context, provider runtime.Provider, ids [][]int) ([]float64, error)
	Generate(ctx context.Context, provider runtime.Provider, ids [][]int, maxNewTokens int) ([]string, error)
}

// EmptyInputError reports a batch item with no non-empty source lines.
// There is nothing to attribute scores to, so the request is rejected
// before any model runs.
type EmptyInputError struct {
	Index int
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("code[%d] contains no non-empty lines", e.Index)
}

// Predictor drives the prediction pipelines for all four model heads.
type Predictor struct {
	rt      Runtime
	labels  *labels.Map
	models  config.ModelsConfig
	special tokenize.Special
	logger  *zap.Logger
}

// New builds a Predictor.
func New(rt Runtime, lm *labels.Map, models config.ModelsConfig, logger *zap.Logger) *Predictor {
	return &Predictor{
		rt:     rt,
		labels: lm,
		models: models,
		special: tokenize.Special{
			BosID:  models.BosID,
			EosID:  models.EosID,
			PadID:  models.PadID,
			TypeID: models.ClsTypeID,
		},
		logger: logger.Named("predictor"),
	}
}

// Predict runs function-level vulnerability classification and per-line
// attention attribution for every input, preserving batch order.
func (p *Predictor) Predict(ctx context.Context, provider runtime.Provider, code []string) (*schemas.PredictResponse, error) {
	if err := rejectEmptyItems(code); err != nil {
		return nil, err
	}
	seqs, err := p.frameBatch(ctx, code, false)
	if err != nil {
		return nil, err
	}

	probs, attentions, err := p.rt.Classify(ctx, provider, sequenceIDs(seqs))
	if err != nil {
		return nil, err
	}

	resp := &schemas.PredictResponse{
		BatchVulPred:     make([]int, len(code)),
		BatchVulPredProb: make([]float64, len(code)),
		BatchLineScores:  make([][]float64, len(code)),
	}
	for i := range code {
		pred, prob, err := predictedClass(probs[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		resp.BatchVulPred[i] = pred
		resp.BatchVulPredProb[i] = prob

		scores, err := p.lineScores(code[i], seqs[i], attentions[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		resp.BatchLineScores[i] = scores
	}
	return resp, nil
}

// lineScores runs the attribution pipeline for one item: aggregate, scrub,
// regroup into line scores. Degenerate attention degrades this item to
// all-zero line scores instead of failing the batch.
func (p *Predictor) lineScores(code string, seq tokenize.Sequence, tensor attribution.Tensor) ([]float64, error) {
	aggregated, err := attribution.Aggregate(tensor, seq.ContentLen)
	if errors.Is(err, attribution.ErrDegenerateAttention) {
		p.logger.Warn("degenerate attention, emitting zero line scores")
		return make([]float64, countNonEmptyLines(code)), nil
	}
	if err != nil {
		return nil, err
	}

	scrubbed, err := attribution.Scrub(aggregated, seq.ContentLen)
	if err != nil {
		return nil, err
	}

	pairs := make([]attribution.TokenScore, len(scrubbed))
	for i := range scrubbed {
		pairs[i] = attribution.TokenScore{Token: seq.Tokens[i], Score: scrubbed[i]}
	}
	return attribution.ScoreLines(pairs, tokenize.IsLineBoundary), nil
}

// CWE runs CWE-ID and CWE abstract-type classification for every input.
func (p *Predictor) CWE(ctx context.Context, provider runtime.Provider, code []string) (*schemas.CWEResponse, error) {
	if err := rejectEmptyItems(code); err != nil {
		return nil, err
	}
	seqs, err := p.frameBatch(ctx, code, true)
	if err != nil {
		return nil, err
	}

	idProbs, typeProbs, err := p.rt.ClassifyCWE(ctx, provider, sequenceIDs(seqs))
	if err != nil {
		return nil, err
	}

	resp := &schemas.CWEResponse{
		CWEID:       make([]string, len(code)),
		CWEIDProb:   make([]float64, len(code)),
		CWEType:     make([]string, len(code)),
		CWETypeProb: make([]float64, len(code)),
	}
	for i := range code {
		idx, prob, err := predictedClass(idProbs[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		label, err := p.labels.CWEID(idx)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		resp.CWEID[i] = label
		resp.CWEIDProb[i] = prob

		idx, prob, err = predictedClass(typeProbs[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		typ, err := p.labels.CWEType(idx)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		resp.CWEType[i] = typ
		resp.CWETypeProb[i] = prob
	}
	return resp, nil
}

// Severity runs CVSS score regression and class bucketing for every input.
func (p *Predictor) Severity(ctx context.Context, provider runtime.Provider, code []string) (*schemas.SeverityResponse, error) {
	if err := rejectEmptyItems(code); err != nil {
		return nil, err
	}
	seqs, err := p.frameBatch(ctx, code, false)
	if err != nil {
		return nil, err
	}

	scores, err := p.rt.ScoreSeverity(ctx, provider, sequenceIDs(seqs))
	if err != nil {
		return nil, err
	}

	resp := &schemas.SeverityResponse{
		BatchSevScore: scores,
		BatchSevClass: make([]string, len(scores)),
	}
	for i, s := range scores {
		resp.BatchSevClass[i] = string(severity.Classify(s))
	}
	return resp, nil
}

// Repair generates one cleaned repair candidate per input.
func (p *Predictor) Repair(ctx context.Context, provider runtime.Provider, code []string) (*schemas.RepairResponse, error) {
	if err := rejectEmptyItems(code); err != nil {
		return nil, err
	}
	seqs, err := p.frameBatch(ctx, code, false)
	if err != nil {
		return nil, err
	}

	repairs, err := p.rt.Generate(ctx, provider, sequenceIDs(seqs), p.models.MaxRepairTokens)
	if err != nil {
		return nil, err
	}

	resp := &schemas.RepairResponse{BatchRepair: make([]string, len(repairs))}
	for i, r := range repairs {
		resp.BatchRepair[i] = repair.Clean(r)
	}
	return resp, nil
}

// frameBatch tokenizes the whole batch and frames every item to the model's
// fixed input length.
func (p *Predictor) frameBatch(ctx context.Context, code []string, withType bool) ([]tokenize.Sequence, error) {
	rawIDs, rawToks, err := p.rt.Tokenize(ctx, code)
	if err != nil {
		return nil, err
	}
	seqs := make([]tokenize.Sequence, len(code))
	for i := range code {
		var seq tokenize.Sequence
		if withType {
			seq, err = tokenize.FrameWithTypeToken(rawIDs[i], rawToks[i], p.special, p.models.MaxSequenceLength)
		} else {
			seq, err = tokenize.Frame(rawIDs[i], rawToks[i], p.special, p.models.MaxSequenceLength)
		}
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		seqs[i] = seq
	}
	return seqs, nil
}

func sequenceIDs(seqs []tokenize.Sequence) [][]int {
	ids := make([][]int, len(seqs))
	for i := range seqs {
		ids[i] = seqs[i].IDs
	}
	return ids
}

// rejectEmptyItems fails the request when any item has no non-empty lines.
func rejectEmptyItems(code []string) error {
	for i, c := range code {
		if countNonEmptyLines(c) == 0 {
			return &EmptyInputError{Index: i}
		}
	}
	return nil
}

func countNonEmptyLines(code string) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		if line != "" {
			n++
		}
	}
	return n
}

// predictedClass returns the argmax class of a probability vector and the
// probability assigned to it.
func predictedClass(probs []float64) (int, float64, error) {
	if len(probs) == 0 {
		return 0, 0, errors.New("predictor: empty probability vector")
	}
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best, probs[best], nil
}
