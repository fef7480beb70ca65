package result

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// MarkTuple is one subject's result cell: [internal, external, 'grade', credit].
type MarkTuple struct {
	Internal int    `json:"internal"`
	External int    `json:"external"`
	Grade    string `json:"grade"`
	Credit   int    `json:"credit"`
}

// MalformedMark is returned by MarkDecoder for cells that do not parse.
var MalformedMark = MarkTuple{Grade: "N/A"}

// Total returns internal plus external marks.
func (m MarkTuple) Total() int {
	return m.Internal + m.External
}

// String formats the tuple in its canonical cell form, e.g. [65, 24, 'B', 8].
func (m MarkTuple) String() string {
	return fmt.Sprintf("[%d, %d, '%s', %d]", m.Internal, m.External, m.Grade, m.Credit)
}

// ParseMarkTuple parses the grammar `[int, int, quoted-string, int]`.
// The grade may be single or double quoted. Empty input is not a tuple.
func ParseMarkTuple(cell string) (MarkTuple, error) {
	trimmed := strings.TrimSpace(cell)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") || len(trimmed) < 2 {
		return MarkTuple{}, fmt.Errorf("%w: missing brackets", ErrMalformedMark)
	}

	parts := strings.Split(trimmed[1:len(trimmed)-1], ",")
	if len(parts) != 4 {
		return MarkTuple{}, fmt.Errorf("%w: expected 4 elements, got %d", ErrMalformedMark, len(parts))
	}

	internal, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return MarkTuple{}, fmt.Errorf("%w: internal marks: %v", ErrMalformedMark, err)
	}
	external, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return MarkTuple{}, fmt.Errorf("%w: external marks: %v", ErrMalformedMark, err)
	}
	grade, err := unquoteGrade(strings.TrimSpace(parts[2]))
	if err != nil {
		return MarkTuple{}, err
	}
	credit, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return MarkTuple{}, fmt.Errorf("%w: credit: %v", ErrMalformedMark, err)
	}

	return MarkTuple{Internal: internal, External: external, Grade: grade, Credit: credit}, nil
}

func unquoteGrade(value string) (string, error) {
	if len(value) < 2 {
		return "", fmt.Errorf("%w: grade must be quoted", ErrMalformedMark)
	}
	quote := value[0]
	if (quote != '\'' && quote != '"') || value[len(value)-1] != quote {
		return "", fmt.Errorf("%w: grade must be quoted", ErrMalformedMark)
	}
	grade := strings.TrimSpace(value[1 : len(value)-1])
	if grade == "" {
		return "", fmt.Errorf("%w: empty grade", ErrMalformedMark)
	}
	return grade, nil
}

// MarkFailureRecorder counts cells that failed to decode.
type MarkFailureRecorder interface {
	Inc()
}

// MarkDecoder decodes cells leniently: an empty cell is absent and a corrupt
// cell degrades to MalformedMark with a warning instead of failing the row.
type MarkDecoder struct {
	logger   zerolog.Logger
	failures MarkFailureRecorder
}

// NewMarkDecoder builds a decoder; failures may be nil.
func NewMarkDecoder(logger zerolog.Logger, failures MarkFailureRecorder) MarkDecoder {
	return MarkDecoder{
		logger:   logger.With().Str("component", "mark_decoder").Logger(),
		failures: failures,
	}
}

// Decode returns the tuple and whether the cell carried data.
func (d MarkDecoder) Decode(cell string) (MarkTuple, bool) {
	if strings.TrimSpace(cell) == "" {
		return MarkTuple{}, false
	}

	mark, err := ParseMarkTuple(cell)
	if err != nil {
		if d.failures != nil {
			d.failures.Inc()
		}
		d.logger.Warn().Err(err).Str("cell", truncate(cell, 64)).Msg("failed to decode mark tuple")
		return MalformedMark, true
	}
	return mark, true
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
