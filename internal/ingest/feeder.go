// Package ingest moves raw weather records from local data files into the
// node. The Feeder streams line-delimited records to the ingest worker; the
// Receiver is the ingest worker itself, publishing each record to the
// message queue and reporting readiness once its input stream is defined.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/JohnReedLOL/killrweather/internal/domain"
	"github.com/JohnReedLOL/killrweather/internal/metrics"
	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// maxRecordBytes bounds one raw observation line.
const maxRecordBytes = 1 << 20

// Target is the mailbox address raw records are pushed to.
type Target interface {
	Send(msg interface{}) bool
}

// Feeder streams records from an ordered set of local files to the target,
// one record at a time, attaching topic and group routing metadata. Source
// order and intra-source record order are preserved. The push is
// fire-and-forget: the feeder never waits for the worker to act on a record.
type Feeder struct {
	sources []string
	topic   string
	group   string
	target  Target
	logger  log.Logger
}

// NewFeeder creates a feeder over the given sources, in input order.
func NewFeeder(sources []string, topic, group string, target Target, logger log.Logger) *Feeder {
	return &Feeder{
		sources: sources,
		topic:   topic,
		group:   group,
		target:  target,
		logger:  logger,
	}
}

// Run feeds every source in order. It returns early when the context is
// canceled or the target stops accepting records; a single unreadable source
// is logged and skipped.
func (f *Feeder) Run(ctx context.Context) error {
	for _, src := range f.sources {
		if err := f.feedSource(ctx, src); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrStopped) {
				return err
			}
			f.logger.Error("feed source failed",
				log.String("source", src),
				log.Err(err),
			)
		}
	}
	f.logger.Info("feed complete", log.Int("sources", len(f.sources)))
	return nil
}

func (f *Feeder) feedSource(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer file.Close()

	fed := 0
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64<<10), maxRecordBytes)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec := domain.RawRecord{Topic: f.topic, Group: f.group, Payload: line}
		if !f.target.Send(rec) {
			return domain.ErrStopped
		}
		metrics.RecordsFed.Inc()
		fed++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	f.logger.Info("source fed",
		log.String("source", path),
		log.Int("records", fed),
	)
	return nil
}
