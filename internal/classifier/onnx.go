package classifier

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv guards process-wide ONNX Runtime initialization.
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxModel runs a classifier exported with a single float input of shape
// [1, len(vocabulary)] and a float probability output of shape [1, len(labels)].
type onnxModel struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	features   int64
	labels     int64
}

// ONNXOpener returns a ModelOpener backed by ONNX Runtime. When libPath is
// empty the shared library is expected next to the model file.
func ONNXOpener(libPath string) ModelOpener {
	return func(m Manifest, modelPath string) (Model, error) {
		lib := libPath
		if lib == "" {
			lib = filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
		}
		return newONNXModel(lib, modelPath, m)
	}
}

func newONNXModel(libPath, modelPath string, m Manifest) (*onnxModel, error) {
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	inputName, err := pickTensor("input", m.Input, inputs)
	if err != nil {
		return nil, err
	}
	outputName, err := pickTensor("output", m.Output, outputs)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(1)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{inputName}, []string{outputName}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxModel{
		session:    session,
		inputName:  inputName,
		outputName: outputName,
		features:   int64(len(m.Vocabulary)),
		labels:     int64(len(m.Labels)),
	}, nil
}

// pickTensor returns want if the model declares it, or the only tensor when
// want is empty.
func pickTensor(kind, want string, infos []ort.InputOutputInfo) (string, error) {
	if want == "" {
		if len(infos) == 1 {
			return infos[0].Name, nil
		}
		if kind == "output" {
			for _, info := range infos {
				if info.Name == "probabilities" {
					return info.Name, nil
				}
			}
		}
		return "", fmt.Errorf("onnx: model has %d %ss; name one in the manifest", len(infos), kind)
	}
	for _, info := range infos {
		if info.Name == want {
			return want, nil
		}
	}
	return "", fmt.Errorf("onnx: model has no %s named %q", kind, want)
}

// PredictProba runs one inference call.
func (o *onnxModel) PredictProba(features []float32) ([]float64, error) {
	if int64(len(features)) != o.features {
		return nil, fmt.Errorf("onnx: expected %d features, got %d", o.features, len(features))
	}

	in, err := ort.NewTensor(ort.NewShape(1, o.features), features)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, o.labels))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	o.mu.Lock()
	err = o.session.Run([]ort.Value{in}, []ort.Value{out})
	o.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	src := out.GetData()
	probs := make([]float64, len(src))
	for i, p := range src {
		probs[i] = float64(p)
	}
	return probs, nil
}

// Close releases the session. Release calls it on shutdown.
func (o *onnxModel) Close() error {
	return o.session.Destroy()
}

var _ io.Closer = (*onnxModel)(nil)
