package agent

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/MeKo-Tech/retina/internal/glimpse"
	"github.com/MeKo-Tech/retina/internal/tensor"
)

// ExtractJob pairs an image batch with one focus location per sample.
type ExtractJob struct {
	Batch     *tensor.ImageBatch
	Locations []glimpse.Location
}

// extractResult tags a finished job with its input index so results can be
// reassembled in order.
type extractResult struct {
	index int
	ret   *tensor.Retina
	err   error
}

// ExtractParallel runs independent extraction jobs over a worker pool and
// returns results in input order. Failed jobs leave a nil slot; the first
// error encountered (by input order) is returned alongside the results.
func ExtractParallel(ctx context.Context, sensor *glimpse.Sensor, jobs []ExtractJob, workers int) ([]*tensor.Retina, error) {
	if sensor == nil {
		return nil, errors.New("nil sensor")
	}
	if len(jobs) == 0 {
		return nil, errors.New("no jobs provided")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan int, len(jobs))
	resultCh := make(chan extractResult, len(jobs))

	var wg sync.WaitGroup
	for _i := 0; _i < workers; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case i, ok := <-jobCh:
					if !ok {
						return
					}
					start := time.Now()
					ret, err := sensor.Extract(jobs[i].Batch, jobs[i].Locations)
					if err != nil {
						extractionsTotal.WithLabelValues("error").Inc()
					} else {
						extractionsTotal.WithLabelValues("ok").Inc()
						extractionDuration.Observe(time.Since(start).Seconds())
					}
					select {
					case resultCh <- extractResult{index: i, ret: ret, err: err}:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for i := range jobs {
			select {
			case jobCh <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]*tensor.Retina, len(jobs))
	errs := make([]error, len(jobs))
	for r := range resultCh {
		results[r.index] = r.ret
		errs[r.index] = r.err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var firstErr error
	for i, err := range errs {
		if err != nil {
			firstErr = fmt.Errorf("job %d: %w", i, err)
			break
		}
	}
	return results, firstErr
}
