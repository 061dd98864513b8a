package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/metrics"
)

type Options struct {
	URL          string
	Model        string
	Labels       string
	Preprocessor string
	// tensor names; default pixel_values / logits
	InputName  string
	OutputName string
	Timeout    time.Duration
	// 0 means DefaultMaxPixels
	MaxPixels int
}

type tensor struct {
	Name     string    `json:"name"`
	Shape    []int64   `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float32 `json:"data"`
}

type inferRequest struct {
	Inputs  []tensor            `json:"inputs"`
	Outputs []map[string]string `json:"outputs,omitempty"`
}

type inferResponse struct {
	ModelName string   `json:"model_name"`
	Outputs   []tensor `json:"outputs"`
}

// Remote is the resident model handle shared by all requests. It is read-only
// after Load.
type Remote struct {
	http       *resty.Client
	model      string
	inputName  string
	outputName string
	maxPixels  int
	labels     []string
	pre        Preprocess
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// Load reads labels and preprocessing config, then checks the inference server
// once. It fails if the model is not ready.
func Load(ctx context.Context, opts Options, logger *zap.Logger, m *metrics.Metrics) (*Remote, error) {
	if opts.URL == "" {
		return nil, errors.New("CLASSIFIER_URL not set")
	}
	labels, err := LoadLabels(opts.Labels)
	if err != nil {
		return nil, err
	}
	pre, err := LoadPreprocess(opts.Preprocessor)
	if err != nil {
		return nil, err
	}
	if opts.InputName == "" {
		opts.InputName = "pixel_values"
	}
	if opts.OutputName == "" {
		opts.OutputName = "logits"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}

	r := &Remote{
		http: resty.New().
			SetBaseURL(strings.TrimRight(opts.URL, "/")).
			SetTimeout(opts.Timeout).
			SetHeader("Content-Type", "application/json"),
		model:      opts.Model,
		inputName:  opts.InputName,
		outputName: opts.OutputName,
		maxPixels:  opts.MaxPixels,
		labels:     labels,
		pre:        pre,
		logger:     logger,
		metrics:    m,
	}
	if err := r.Ready(ctx); err != nil {
		return nil, err
	}
	logger.Info("classifier loaded",
		zap.String("model", opts.Model),
		zap.Int("labels", len(labels)),
		zap.Int64s("input_shape", pre.Shape()),
	)
	return r, nil
}

func (r *Remote) modelPath(suffix string) string {
	return "/v2/models/" + url.PathEscape(r.model) + suffix
}

func (r *Remote) Ready(ctx context.Context) error {
	resp, err := r.http.R().SetContext(ctx).Get(r.modelPath("/ready"))
	if err != nil {
		return fmt.Errorf("%w: readiness: %v", apperrors.ErrModelUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: model %s not ready (%s)", apperrors.ErrModelUnavailable, r.model, resp.Status())
	}
	return nil
}

func (r *Remote) Classify(ctx context.Context, data []byte) (Prediction, error) {
	img, err := Decode(data, r.maxPixels)
	if err != nil {
		return Prediction{}, err
	}
	input := r.pre.Tensor(img)

	start := time.Now()
	logits, err := r.infer(ctx, input)
	r.metrics.ObserveInference(time.Since(start))
	if err != nil {
		r.logger.Error("inference failed", zap.String("model", r.model), zap.Error(err))
		return Prediction{}, fmt.Errorf("%w: %v", apperrors.ErrModelUnavailable, err)
	}
	if len(logits) != len(r.labels) {
		return Prediction{}, fmt.Errorf("%w: got %d logits for %d labels", apperrors.ErrModelUnavailable, len(logits), len(r.labels))
	}

	probs := Softmax(logits)
	idx := Argmax(probs)
	return Prediction{Label: CleanLabel(r.labels[idx]), Confidence: probs[idx]}, nil
}

func (r *Remote) infer(ctx context.Context, input []float32) ([]float32, error) {
	req := inferRequest{
		Inputs: []tensor{{
			Name:     r.inputName,
			Shape:    r.pre.Shape(),
			Datatype: "FP32",
			Data:     input,
		}},
		Outputs: []map[string]string{{"name": r.outputName}},
	}
	var out inferResponse
	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(r.modelPath("/infer"))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("infer: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	for _, o := range out.Outputs {
		if o.Name == r.outputName || len(out.Outputs) == 1 {
			return o.Data, nil
		}
	}
	return nil, fmt.Errorf("infer: output %q missing", r.outputName)
}

func (r *Remote) Labels() []string { return r.labels }

func (r *Remote) Close() error { return nil }
