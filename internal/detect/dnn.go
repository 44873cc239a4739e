package detect

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"brick-scout/internal/colormatch"
	"brick-scout/pkg/geometry"
)

// SSD input geometry and normalization, fixed by the MobileNet-SSD
// family the models are exported from.
const (
	dnnInputSize = 300
	dnnScale     = 1.0 / 127.5
	dnnMean      = 127.5
)

// DNNDetector runs a MobileNet-SSD style network through the OpenCV DNN
// module. Each output row maps a class index to a part number through
// the labels sidecar file shipped next to the model.
type DNNDetector struct {
	mu     sync.Mutex
	net    gocv.Net
	labels []string
	closed bool
}

// OpenDNN loads the network at modelPath together with its sidecar
// files: the graph config (same name, .pbtxt extension) when one
// exists, and the class labels (same name, .labels extension, one part
// number per line, line index = class id).
func OpenDNN(modelPath string) (Detector, error) {
	configPath := sidecar(modelPath, ".pbtxt")
	if _, err := os.Stat(configPath); err != nil {
		configPath = ""
	}

	labels, err := readLabels(sidecar(modelPath, ".labels"))
	if err != nil {
		return nil, &LoadError{Path: modelPath, Reason: "reading class labels", Err: err}
	}

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, &LoadError{Path: modelPath, Reason: "network is empty after load"}
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, &LoadError{Path: modelPath, Reason: "setting DNN backend", Err: err}
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, &LoadError{Path: modelPath, Reason: "setting DNN target", Err: err}
	}

	return &DNNDetector{net: net, labels: labels}, nil
}

// Detect runs one forward pass and returns every detection row the
// network produced, with the dominant color sampled inside each box.
// Confidence filtering belongs to the quality filter, not here.
func (d *DNNDetector) Detect(img image.Image) ([]RawDetection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("detector is closed")
	}

	mat, err := imageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, dnnScale,
		image.Pt(dnnInputSize, dnnInputSize),
		gocv.NewScalar(dnnMean, dnnMean, dnnMean, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	// SSD output: N rows of [batch, classID, confidence, x1, y1, x2, y2]
	// with coordinates normalized to the input image.
	rows := output.Total() / 7
	reshaped := output.Reshape(1, rows)
	defer reshaped.Close()

	w := float64(mat.Cols())
	h := float64(mat.Rows())

	var out []RawDetection
	for i := 0; i < reshaped.Rows(); i++ {
		classID := int(reshaped.GetFloatAt(i, 1))
		if classID < 0 || classID >= len(d.labels) {
			continue
		}
		key := d.labels[classID]
		if key == "" {
			continue
		}

		confidence := float64(reshaped.GetFloatAt(i, 2))
		x1 := float64(reshaped.GetFloatAt(i, 3)) * w
		y1 := float64(reshaped.GetFloatAt(i, 4)) * h
		x2 := float64(reshaped.GetFloatAt(i, 5)) * w
		y2 := float64(reshaped.GetFloatAt(i, 6)) * h
		if x2 <= x1 || y2 <= y1 {
			continue
		}
		box := geometry.NewRect(x1, y1, x2-x1, y2-y1)

		roi := image.Rect(int(x1), int(y1), int(x2), int(y2))
		out = append(out, RawDetection{
			Key:        key,
			Box:        box,
			Confidence: confidence,
			Color:      colormatch.Dominant(img, roi),
		})
	}
	return out, nil
}

// Close releases the network. Safe to call more than once.
func (d *DNNDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.net.Close()
}

func sidecar(modelPath, ext string) string {
	return strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ext
}

func readLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		labels = append(labels, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}
