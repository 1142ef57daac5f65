package ml

import (
	"os"

	onnxruntime "github.com/yalue/onnxruntime_go"

	"sibyl/pkg/errors"
)

// MetaModel wraps an ONNX Runtime session for the learned ensemble
// combiner: a binary classifier over the agent outputs that yields the
// probability of an upward move.
type MetaModel struct {
	session   *onnxruntime.DynamicAdvancedSession
	inputName string
}

// LoadMetaModel loads the meta-learner from file. An empty or missing
// path yields ErrModelUnavailable so the caller can fall back to the
// weighted baseline.
func LoadMetaModel(modelPath string) (*MetaModel, error) {
	if modelPath == "" {
		return nil, errors.Wrap(errors.ErrModelUnavailable, "no model path configured")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, errors.Wrapf(errors.ErrModelUnavailable, "model file %s: %v", modelPath, err)
	}

	// Initialize ONNX runtime environment (only once)
	if err := onnxruntime.InitializeEnvironment(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize ONNX runtime")
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	// Input: "input" (agent feature vector)
	// Output: "probabilities" ([p_down, p_up])
	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath,
		[]string{"input"}, []string{"probabilities"}, options)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ONNX model")
	}

	return &MetaModel{
		session:   session,
		inputName: "input",
	}, nil
}

// ProbUp runs inference and returns the probability of an upward move
func (m *MetaModel) ProbUp(features []float64) (float64, error) {
	if m.session == nil {
		return 0, errors.New("model session is nil")
	}

	inputShape := onnxruntime.NewShape(1, int64(len(features)))
	inputTensor, err := onnxruntime.NewTensor(inputShape, features)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	probabilities := make([]float64, 2)
	probShape := onnxruntime.NewShape(1, 2)
	probTensor, err := onnxruntime.NewTensor(probShape, probabilities)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create output tensor")
	}
	defer probTensor.Destroy()

	inputs := []onnxruntime.Value{inputTensor}
	outputs := []onnxruntime.Value{probTensor}
	if err := m.session.Run(inputs, outputs); err != nil {
		return 0, errors.Wrap(err, "inference failed")
	}

	return probabilities[1], nil
}

// Destroy cleans up the ONNX session
func (m *MetaModel) Destroy() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}
