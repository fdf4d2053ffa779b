// Package ingest loads per-product hazard sheets from CSV files and
// indexes them into the retrieval library.
//
// The expected layout is one directory per product containing one CSV per
// source document:
//
//	<data_dir>/<produto>/<fonte>_<produto>.csv
//
// e.g. produtos/leite_pasteurizado/appcc_leite_pasteurizado.csv.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/hazard"
	"github.com/fyrsmithlabs/haccpd/internal/retriever"
)

var (
	// ErrMissingColumns is returned when a sheet lacks the etapa or
	// perigo column after header normalization.
	ErrMissingColumns = errors.New("sheet missing required column (etapa, perigo)")

	// ErrNoSheets is returned when a run finds no CSV files at all.
	ErrNoSheets = errors.New("no sheets found under data directory")
)

// columnAliases maps normalized header names to canonical field names.
// Headers are lower-cased and trimmed before lookup; unknown headers are
// kept as-is so already-canonical columns pass through.
var columnAliases = map[string]string{
	"perigos":                   "perigo",
	"medidas preventivas":       "medida",
	"o perigo é significativo?": "perigo_significativo",
	"codigo":                    "tipo",
	"código":                    "tipo",
	"o que":                     "monitoramento_oque",
	"como":                      "monitoramento_como",
	"quando":                    "monitoramento_quando",
	"quem":                      "monitoramento_quem",
	"limite critico":            "limite_critico",
	"limite crítico":            "limite_critico",
	"ação corretiva":            "acao_corretiva",
}

// nanSentinels are cell values that spreadsheet exports use for missing
// data. They are scrubbed to the empty string during parsing.
var nanSentinels = map[string]struct{}{
	"nan": {}, "none": {}, "null": {}, "n/a": {}, "na": {}, "-": {},
}

// Config holds ingestion pipeline settings.
type Config struct {
	// DataDir is the root of the per-product sheet layout.
	DataDir string

	// Force re-indexes sheets whose product/source index already exists.
	Force bool
}

// Result summarizes one ingestion run.
type Result struct {
	Indexed int
	Skipped int
	Failed  int
}

// Pipeline walks the sheet layout and feeds each sheet to the library.
type Pipeline struct {
	cfg     Config
	library *retriever.Library
	logger  *zap.Logger
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(cfg Config, library *retriever.Library, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, library: library, logger: logger}
}

// Run scans DataDir and indexes every sheet found. A malformed sheet is
// logged and counted as failed without aborting the run; the returned
// error is non-nil only when nothing could be scanned.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	sheets, err := filepath.Glob(filepath.Join(p.cfg.DataDir, "*", "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", p.cfg.DataDir, err)
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSheets, p.cfg.DataDir)
	}

	res := &Result{}
	for _, path := range sheets {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		product := filepath.Base(filepath.Dir(path))
		source, ok := sourceFromFilename(filepath.Base(path), product)
		if !ok {
			p.logger.Warn("skipping sheet with unrecognized source",
				zap.String("path", path))
			res.Skipped++
			continue
		}

		if !p.cfg.Force && p.hasIndex(ctx, product, source) {
			p.logger.Debug("index already exists",
				zap.String("produto", product),
				zap.String("fonte", string(source)))
			res.Skipped++
			continue
		}

		recs, err := p.readSheet(path)
		if err != nil {
			p.logger.Error("failed to read sheet",
				zap.String("path", path), zap.Error(err))
			res.Failed++
			continue
		}

		if err := p.library.AddRecords(ctx, product, source, recs); err != nil {
			p.logger.Error("failed to index sheet",
				zap.String("path", path), zap.Error(err))
			res.Failed++
			continue
		}

		p.logger.Info("indexed sheet",
			zap.String("produto", product),
			zap.String("fonte", string(source)),
			zap.Int("registros", len(recs)))
		res.Indexed++
	}
	return res, nil
}

func (p *Pipeline) hasIndex(ctx context.Context, product string, source hazard.Source) bool {
	_, err := p.library.Open(ctx, product, source)
	return err == nil
}

// sourceFromFilename extracts the source document name from a sheet
// filename of the form <fonte>_<produto>.csv.
func sourceFromFilename(name, product string) (hazard.Source, bool) {
	base := strings.TrimSuffix(name, ".csv")
	base = strings.TrimSuffix(base, "_"+product)
	for _, s := range hazard.Sources {
		if strings.EqualFold(base, string(s)) {
			return s, true
		}
	}
	return "", false
}

// readSheet parses one CSV sheet into canonical records.
func (p *Pipeline) readSheet(path string) ([]hazard.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		cols[i] = name
	}
	if !containsColumn(cols, "etapa") || !containsColumn(cols, "perigo") {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, path)
	}

	var recs []hazard.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		var rec hazard.Record
		for i, cell := range row {
			if i >= len(cols) {
				break
			}
			setField(&rec, cols[i], scrub(cell))
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func containsColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}

// scrub trims a cell and maps NaN-like sentinels to the empty string.
func scrub(cell string) string {
	cell = strings.TrimSpace(cell)
	if _, ok := nanSentinels[strings.ToLower(cell)]; ok {
		return ""
	}
	return cell
}

func setField(rec *hazard.Record, col, val string) {
	switch col {
	case "etapa":
		rec.Etapa = val
	case "tipo":
		rec.Tipo = val
	case "perigo":
		rec.Perigo = val
	case "justificativa":
		rec.Justificativa = val
	case "probabilidade":
		rec.Probabilidade = val
	case "severidade":
		rec.Severidade = val
	case "risco":
		rec.Risco = val
	case "medida":
		rec.Medida = val
	case "perigo_significativo":
		rec.PerigoSignificativo = val
	case "limite_critico":
		rec.LimiteCritico = val
	case "monitoramento_oque":
		rec.MonitoramentoOQue = val
	case "monitoramento_como":
		rec.MonitoramentoComo = val
	case "monitoramento_quando":
		rec.MonitoramentoQuando = val
	case "monitoramento_quem":
		rec.MonitoramentoQuem = val
	case "acao_corretiva":
		rec.AcaoCorretiva = val
	case "registro":
		rec.Registro = val
	case "verificacao":
		rec.Verificacao = val
	}
}
