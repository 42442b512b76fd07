package superopt

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatProgress renders "<count> <noun> | <rate>/s | <elapsed>".
func FormatProgress(noun string, count uint64, rate float64, elapsed time.Duration) string {
	return fmt.Sprintf("%s %s | %s/s | %s",
		humanize.Comma(int64(count)), noun, humanize.Comma(int64(rate)), elapsed.Truncate(time.Second))
}

// Ticker reports a counter at a fixed interval. It never touches the best
// program.
type Ticker struct {
	Out      io.Writer
	Interval time.Duration
	Live     bool
	Noun     string
	Count    func() uint64
	Elapsed  func() time.Duration
}

// Run reports until done is closed. Without Out it only waits.
func (t *Ticker) Run(done <-chan struct{}) {
	if t.Out == nil {
		<-done
		return
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	last, lastTick := t.Count(), time.Now()
	for {
		select {
		case <-done:
			if t.Live {
				fmt.Fprintln(t.Out)
			}
			return
		case now := <-ticker.C:
			current := t.Count()
			rate := float64(current-last) / now.Sub(lastTick).Seconds()
			line := FormatProgress(t.Noun, current, rate, t.Elapsed())
			if t.Live {
				fmt.Fprintf(t.Out, "\r\033[K%s", line)
			} else {
				fmt.Fprintln(t.Out, line)
			}
			last, lastTick = current, now
		}
	}
}

func (sc *SearchContext) progressTicker() *Ticker {
	return &Ticker{
		Out:      sc.Options.Progress,
		Interval: sc.Options.ProgressInterval,
		Live:     sc.Options.Live,
		Noun:     "programs tested",
		Count:    sc.Evaluated,
		Elapsed:  sc.Elapsed,
	}
}
