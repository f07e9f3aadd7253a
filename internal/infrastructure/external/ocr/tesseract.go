package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// TesseractConfig configures the tesseract CLI engine
type TesseractConfig struct {
	Binary      string // defaults to "tesseract"
	TessdataDir string
	PSM         int
	OEM         int
}

// Tesseract recognizes text by running the tesseract CLI in TSV mode,
// which yields both the words and their confidences in one pass.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
	logger *zap.Logger
}

// NewTesseract creates a tesseract engine
func NewTesseract(cfg TesseractConfig, runner Runner, logger *zap.Logger) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &Tesseract{cfg: cfg, runner: runner, logger: logger}
}

// Name identifies the engine in logs and metrics
func (t *Tesseract) Name() string { return "tesseract" }

// Recognize reads image from stdin; language uses tesseract syntax, e.g. "vie+eng".
func (t *Tesseract) Recognize(ctx context.Context, image []byte, language string) (Result, error) {
	args := []string{"stdin", "stdout", "-l", language}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := t.runner.Run(ctx, bytes.NewReader(image), t.cfg.Binary, args...)
	if err != nil {
		return Result{}, fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}

	result := parseTSV(string(out))
	t.logger.Debug("Tesseract finished",
		zap.Int("text_length", len(result.Text)),
		zap.Float64("confidence", result.Confidence))
	return result, nil
}

type lineKey struct{ page, block, par, line int }

// parseTSV rebuilds text lines from tesseract TSV output and averages the
// word confidences. Rows with conf -1 are layout rows, not words.
func parseTSV(tsv string) Result {
	rows := strings.Split(strings.ReplaceAll(tsv, "\r\n", "\n"), "\n")
	if len(rows) == 0 {
		return Result{}
	}

	col := map[string]int{}
	for i, name := range strings.Split(rows[0], "\t") {
		col[strings.TrimSpace(name)] = i
	}
	confIdx, okConf := col["conf"]
	textIdx, okText := col["text"]
	if !okConf || !okText {
		return Result{}
	}

	var (
		lines   []string
		current lineKey
		words   []string
		sum     float64
		n       int
	)
	flush := func() {
		if len(words) > 0 {
			lines = append(lines, strings.Join(words, " "))
			words = nil
		}
	}

	for _, row := range rows[1:] {
		cols := strings.Split(row, "\t")
		if len(cols) <= textIdx || len(cols) <= confIdx {
			continue
		}
		conf, err := strconv.ParseFloat(strings.TrimSpace(cols[confIdx]), 64)
		if err != nil || conf < 0 {
			continue
		}
		word := strings.TrimSpace(cols[textIdx])
		if word == "" {
			continue
		}

		key := lineKey{atoi(cols, col, "page_num"), atoi(cols, col, "block_num"), atoi(cols, col, "par_num"), atoi(cols, col, "line_num")}
		if key != current {
			flush()
			current = key
		}
		words = append(words, word)
		sum += conf
		n++
	}
	flush()

	if n == 0 {
		return Result{}
	}
	return Result{Text: strings.Join(lines, "\n"), Confidence: sum / float64(n)}
}

func atoi(cols []string, col map[string]int, name string) int {
	i, ok := col[name]
	if !ok || i >= len(cols) {
		return 0
	}
	v, _ := strconv.Atoi(cols[i])
	return v
}
