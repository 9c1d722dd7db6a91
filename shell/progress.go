package shell

import (
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/smartystreets/logging"
)

var suffixes = [5]string{"B", "KB", "MB", "GB", "TB"}

func humanFileSize(size float64) string {
	if size < 1 {
		return "0 B"
	}
	base := math.Min(math.Floor(math.Log(size)/math.Log(1024)), float64(len(suffixes)-1))
	scaled := math.Round(size/math.Pow(1024, base)*100) / 100
	return strconv.FormatFloat(scaled, 'f', -1, 64) + " " + suffixes[int(base)]
}

// progressCounter logs the number of bytes written through it every interval
// and once more on Close.
type progressCounter struct {
	logger  *logging.Logger
	label   string
	written atomic.Int64
	ticker  *time.Ticker
	done    chan struct{}
	stopped chan struct{}
}

func newProgressCounter(logger *logging.Logger, label string, interval time.Duration) *progressCounter {
	this := &progressCounter{
		logger:  logger,
		label:   label,
		ticker:  time.NewTicker(interval),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go this.report()
	return this
}

func (this *progressCounter) report() {
	defer close(this.stopped)
	for {
		select {
		case <-this.ticker.C:
			this.logger.Printf("[INFO] downloading %s... %s", this.label, humanFileSize(float64(this.written.Load())))
		case <-this.done:
			return
		}
	}
}

func (this *progressCounter) Write(p []byte) (int, error) {
	this.written.Add(int64(len(p)))
	return len(p), nil
}

func (this *progressCounter) Written() int64 { return this.written.Load() }

func (this *progressCounter) Close() error {
	this.ticker.Stop()
	close(this.done)
	<-this.stopped
	this.logger.Printf("[INFO] done downloading %s (%s).", this.label, humanFileSize(float64(this.written.Load())))
	return nil
}
