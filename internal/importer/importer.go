// Package importer parses measurement samples from the text stream written
// by the sensor board over its serial line.
//
// The board prints a line containing START, then one line per reading of
// the form "pressure magnitude phase", then a line containing END.
package importer

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/bpmonitor/capstone/internal/models"
)

// ErrUnterminated is returned when the stream ends between START and END.
var ErrUnterminated = errors.New("sample not terminated by END")

const (
	startMarker = "START"
	endMarker   = "END"
)

// Reader yields successive samples from a stream.
type Reader struct {
	scanner *bufio.Scanner
	userID  string
	// Skip drops the first Skip readings of every sample, which the board
	// emits while the cuff pressure settles.
	Skip int
}

// NewReader returns a Reader attributing samples to userID.
func NewReader(r io.Reader, userID string) *Reader {
	return &Reader{scanner: bufio.NewScanner(r), userID: userID}
}

// Next returns the next complete sample. It returns io.EOF when the stream
// ends before another START line.
func (r *Reader) Next() (*models.Sample, error) {
	if err := r.waitForStart(); err != nil {
		return nil, err
	}

	sample := &models.Sample{UserID: r.userID, Measurements: []models.Measurement{}}
	seen := 0
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if strings.Contains(line, endMarker) {
			return sample, nil
		}
		m, ok := parseReading(line)
		if !ok {
			continue
		}
		seen++
		if seen <= r.Skip {
			continue
		}
		sample.Measurements = append(sample.Measurements, m)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, ErrUnterminated
}

func (r *Reader) waitForStart() error {
	for r.scanner.Scan() {
		if strings.Contains(r.scanner.Text(), startMarker) {
			return nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

// parseReading accepts exactly three whitespace-separated floats.
func parseReading(line string) (models.Measurement, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return models.Measurement{}, false
	}
	var vals [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return models.Measurement{}, false
		}
		vals[i] = v
	}
	return models.Measurement{Pressure: vals[0], ImpedanceMagnitude: vals[1], ImpedancePhase: vals[2]}, true
}

// ReadSample reads the first sample from r.
func ReadSample(r io.Reader, userID string) (*models.Sample, error) {
	return NewReader(r, userID).Next()
}
