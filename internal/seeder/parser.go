package seeder

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/weatherscore/internal/config"
	"github.com/alexivanou/weatherscore/internal/model"
)

const defaultBatchSize = 500

// Parser reads high-score export files.
//
// One record per line, tab separated:
//
//	player	score	[level	[completion_time	[achieved_at]]]
//
// Lines starting with '#' and blank lines are ignored. achieved_at is RFC 3339.
type Parser struct {
	batchSize    int
	defaultLevel string
}

// Result summarises one import run
type Result struct {
	Parsed  int
	Skipped int
}

// NewParser creates a new parser instance with config
func NewParser(seederCfg config.SeederConfig) *Parser {
	batchSize := seederCfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	level := seederCfg.DefaultLevel
	if level == "" {
		level = model.DefaultLevel
	}
	return &Parser{
		batchSize:    batchSize,
		defaultLevel: level,
	}
}

// ParseFile parses a .tsv/.txt file, or the first .tsv/.txt entry of a .zip archive
func (p *Parser) ParseFile(path string, callback func(batch []model.HighScore) error) (Result, error) {
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		return p.parseZip(path, callback)
	}

	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return p.Parse(file, callback)
}

func (p *Parser) parseZip(zipPath string, callback func(batch []model.HighScore) error) (Result, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		name := strings.ToLower(f.Name)
		if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt") {
			rc, err := f.Open()
			if err != nil {
				return Result{}, fmt.Errorf("failed to open file in zip: %w", err)
			}
			defer rc.Close()
			return p.Parse(rc, callback)
		}
	}

	return Result{}, fmt.Errorf("no score file found in zip")
}

// Parse streams records from reader and hands them to callback in batches of
// at most the configured size. Malformed lines are counted and skipped.
func (p *Parser) Parse(reader io.Reader, callback func(batch []model.HighScore) error) (Result, error) {
	var res Result

	buf := make([]byte, 0, 64*1024)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(buf, 1024*1024)

	batch := make([]model.HighScore, 0, p.batchSize)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		hs, ok := p.parseLine(line)
		if !ok {
			res.Skipped++
			continue
		}

		batch = append(batch, hs)
		res.Parsed++

		if len(batch) >= p.batchSize {
			if err := callback(batch); err != nil {
				return res, fmt.Errorf("batch callback error: %w", err)
			}
			batch = make([]model.HighScore, 0, p.batchSize)
		}
	}

	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("failed to scan scores: %w", err)
	}

	if len(batch) > 0 {
		if err := callback(batch); err != nil {
			return res, fmt.Errorf("batch callback error: %w", err)
		}
	}

	return res, nil
}

func (p *Parser) parseLine(line string) (model.HighScore, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 {
		return model.HighScore{}, false
	}

	player := strings.TrimSpace(parts[0])
	if player == "" {
		return model.HighScore{}, false
	}

	score, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.HighScore{}, false
	}

	level := p.defaultLevel
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		level = strings.TrimSpace(parts[2])
	}

	var completion float64
	if len(parts) > 3 && strings.TrimSpace(parts[3]) != "" {
		completion, err = strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || completion < 0 || math.IsNaN(completion) || math.IsInf(completion, 0) {
			return model.HighScore{}, false
		}
	}

	hs := model.NewHighScore(player, score, level, completion)

	if len(parts) > 4 && strings.TrimSpace(parts[4]) != "" {
		at, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[4]))
		if err != nil {
			return model.HighScore{}, false
		}
		hs.AchievedAt = at.UTC().Truncate(time.Microsecond)
	}

	return hs, true
}
