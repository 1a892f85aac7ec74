package client

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// BenchmarkResult 并发压测结果
type BenchmarkResult struct {
	Path           string        `json:"path"`
	Concurrency    int           `json:"concurrency"`
	TotalRequests  int           `json:"total_requests"`
	SuccessCount   int           `json:"success_count"`
	FailureCount   int           `json:"failure_count"`
	TotalTime      time.Duration `json:"total_time"`
	AverageTime    time.Duration `json:"average_time"`
	MinTime        time.Duration `json:"min_time"`
	MaxTime        time.Duration `json:"max_time"`
	RequestsPerSec float64       `json:"requests_per_sec"`
	StatusCodes    map[int]int   `json:"status_codes"`
	Errors         []string      `json:"errors"`
}

// Benchmark 以给定并发对 GET 接口发起 requests 次请求，携带当前令牌
func (c *Client) Benchmark(ctx context.Context, path string, concurrency, requests int) *BenchmarkResult {
	if concurrency < 1 {
		concurrency = 1
	}
	result := &BenchmarkResult{
		Path:          path,
		Concurrency:   concurrency,
		TotalRequests: requests,
		StatusCodes:   make(map[int]int),
	}

	var (
		mu        sync.Mutex
		totalTime time.Duration
	)
	record := func(d time.Duration, status int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, err.Error())
			return
		}
		totalTime += d
		if result.MinTime == 0 || d < result.MinTime {
			result.MinTime = d
		}
		if d > result.MaxTime {
			result.MaxTime = d
		}
		result.StatusCodes[status]++
		if status >= 200 && status < 300 {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	start := time.Now()
	for i := 0; i < requests; i++ {
		g.Go(func() error {
			req := c.httpClient.R().SetContext(gctx)
			if token := c.Token(); token != "" {
				req.SetAuthToken(token)
			}
			began := time.Now()
			resp, err := req.Get(path)
			if err != nil {
				record(0, 0, err)
				return nil
			}
			record(time.Since(began), resp.StatusCode(), nil)
			return nil
		})
	}
	_ = g.Wait()

	result.TotalTime = time.Since(start)
	if done := result.SuccessCount + result.FailureCount; done > 0 {
		result.AverageTime = totalTime / time.Duration(done)
	}
	if secs := result.TotalTime.Seconds(); secs > 0 {
		result.RequestsPerSec = float64(requests) / secs
	}
	return result
}

// Print 打印压测结果，错误最多显示5个
func (r *BenchmarkResult) Print(w io.Writer) {
	fmt.Fprintf(w, "GET %s\n", r.Path)
	fmt.Fprintf(w, "  concurrency: %d, requests: %d, ok: %d, failed: %d\n", r.Concurrency, r.TotalRequests, r.SuccessCount, r.FailureCount)
	fmt.Fprintf(w, "  total: %s, avg: %s, min: %s, max: %s, rps: %.2f\n", r.TotalTime, r.AverageTime, r.MinTime, r.MaxTime, r.RequestsPerSec)

	codes := make([]int, 0, len(r.StatusCodes))
	for code := range r.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, r.StatusCodes[code])
	}
	for i, err := range r.Errors {
		if i >= 5 {
			fmt.Fprintf(w, "  ... %d more errors\n", len(r.Errors)-5)
			break
		}
		fmt.Fprintf(w, "  error: %s\n", err)
	}
}
