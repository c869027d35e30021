package ffmpeg

import (
	"strconv"
	"strings"
	"time"

	"splicer/internal/render"
)

// progressParser folds ffmpeg -progress key=value lines into updates. A block
// ends with a progress= line.
type progressParser struct {
	total   time.Duration
	outTime time.Duration
	speed   string
}

// feed consumes one line and reports whether a block completed.
func (p *progressParser) feed(line string) (render.Progress, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return render.Progress{}, false
	}
	value = strings.TrimSpace(value)
	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds.
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			p.outTime = time.Duration(us) * time.Microsecond
		}
	case "speed":
		p.speed = value
	case "progress":
		update := render.Progress{Stage: "encode", OutTime: p.outTime, Percent: p.percent()}
		if value == "end" {
			update.Percent = 100
			update.Message = "encode finished"
		} else if p.speed != "" && p.speed != "N/A" {
			update.Message = "speed " + p.speed
		}
		return update, true
	}
	return render.Progress{}, false
}

func (p *progressParser) percent() float64 {
	if p.total <= 0 {
		return 0
	}
	pct := float64(p.outTime) / float64(p.total) * 100
	return min(max(pct, 0), 100)
}

// tailBuffer keeps the last lines written to it.
type tailBuffer struct {
	limit   int
	lines   []string
	partial strings.Builder
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			t.push(t.partial.String())
			t.partial.Reset()
			continue
		}
		t.partial.WriteByte(b)
	}
	return len(p), nil
}

func (t *tailBuffer) push(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *tailBuffer) String() string {
	lines := t.lines
	if rest := strings.TrimSpace(t.partial.String()); rest != "" {
		lines = append(lines[:len(lines):len(lines)], rest)
	}
	return strings.Join(lines, "\n")
}
