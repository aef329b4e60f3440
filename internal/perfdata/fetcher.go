// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package perfdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/elastic/perfdatacat/internal/es/errfmt"
	"github.com/elastic/perfdatacat/internal/fault"
	"github.com/elastic/perfdatacat/internal/telemetry"
)

// searchPage is the part of a _search response the fetcher reads.
type searchPage struct {
	Hits struct {
		Hits []Hit `json:"hits"`
	} `json:"hits"`
	Error json.RawMessage `json:"error,omitempty"`
}

// Fetcher pages through perfdata documents with search_after and folds them
// into metric sets.
type Fetcher struct {
	exec    Executor
	builder QueryBuilder
	logger  *zap.Logger
	metrics *telemetry.Collectors
	tracer  trace.Tracer
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithCollectors sets the Prometheus collectors.
func WithCollectors(c *telemetry.Collectors) FetcherOption {
	return func(f *Fetcher) {
		f.metrics = c
	}
}

// WithTracer sets the tracer. The global tracer is used otherwise.
func WithTracer(t trace.Tracer) FetcherOption {
	return func(f *Fetcher) {
		if t != nil {
			f.tracer = t
		}
	}
}

// NewFetcher creates a Fetcher that searches through exec with builder.
func NewFetcher(exec Executor, builder QueryBuilder, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		exec:    exec,
		builder: builder,
		logger:  zap.NewNop(),
		tracer:  telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.Named("fetcher")
	return f
}

// Fetch runs the paginated search for req. It always returns a result: a
// failed page stops pagination and is recorded in Errors next to whatever was
// collected before it.
func (f *Fetcher) Fetch(ctx context.Context, req Request) *FetchResult {
	start := time.Now()
	ctx, span := f.tracer.Start(ctx, "perfdata.fetch", trace.WithAttributes(
		attribute.String("perfdata.host", req.Host),
		attribute.String("perfdata.service", req.Service),
		attribute.String("perfdata.check_command", req.CheckCommand),
		attribute.Bool("perfdata.host_check", req.IsHostCheck),
	))
	defer span.End()

	result := &FetchResult{Data: []MetricSet{}, Errors: []Fault{}}
	acc := NewAccumulator()
	filter := NewFilter(req.Include, req.Exclude)
	index := f.builder.IndexName(req)

	logger := f.logger.With(
		zap.String("index", index),
		zap.String("host", req.Host),
		zap.String("service", req.Service),
	)

	var (
		cursor  any
		docs    int
		pages   int
		skipped skipTally
	)
	for {
		pages++
		hits, err := f.page(ctx, index, f.builder.BuildQuery(req, cursor), pages)
		if err != nil {
			logger.Warn("fetch stopped", zap.Int("page", pages), zap.Error(err))
			f.record(result, err)
			break
		}

		for _, hit := range hits {
			p, err := f.builder.ExtractMetrics(hit, filter.Keep)
			if err != nil {
				logger.Debug("skipping hit", zap.Int("page", pages), zap.Error(err))
				skipped.hit(err)
				continue
			}
			for _, err := range p.Skipped {
				logger.Debug("skipping metric", zap.Int("page", pages), zap.Error(err))
				skipped.label(err)
			}
			acc.Add(p)
		}
		docs += len(hits)

		if len(hits) == 0 {
			break
		}
		sortKey := hits[len(hits)-1].Sort
		if len(sortKey) == 0 {
			err := fault.Errorf(fault.Decode, "paginate", "last hit on page %d has no sort value", pages)
			logger.Warn("fetch stopped", zap.Error(err))
			f.record(result, err)
			break
		}
		cursor = sortKey[0]
	}

	if err := skipped.err(); err != nil {
		logger.Warn("unreadable perfdata", zap.Error(err))
		f.record(result, err)
	}
	result.Data = acc.Assemble()

	span.SetAttributes(
		attribute.Int("perfdata.pages", pages),
		attribute.Int("perfdata.documents", docs),
		attribute.Int("perfdata.metrics", len(result.Data)),
	)
	if result.HasErrors() {
		span.SetStatus(codes.Error, result.Errors[0].Message)
	}
	f.metrics.ObserveFetch(time.Since(start).Seconds())
	logger.Debug("fetch finished",
		zap.Int("pages", pages),
		zap.Int("documents", docs),
		zap.Int("metrics", len(result.Data)),
		zap.Duration("took", time.Since(start)),
	)
	return result
}

// skipTally counts hits and labels dropped during extraction so they surface
// as a single fault.
type skipTally struct {
	hits   int
	labels int
	first  error
}

func (s *skipTally) hit(err error) {
	s.hits++
	s.note(err)
}

func (s *skipTally) label(err error) {
	s.labels++
	s.note(err)
}

func (s *skipTally) note(err error) {
	if s.first == nil {
		s.first = err
	}
}

func (s *skipTally) err() error {
	if s.first == nil {
		return nil
	}
	return fault.Errorf(fault.Decode, "extract metrics",
		"skipped %d hit(s) and %d metric(s) with unreadable data, first: %v", s.hits, s.labels, s.first)
}

func (f *Fetcher) record(result *FetchResult, err error) {
	result.addFault(err)
	f.metrics.ObserveFault(fault.KindOf(err).String())
}

// page sends one search and decodes its hits.
func (f *Fetcher) page(ctx context.Context, index string, body map[string]any, n int) ([]Hit, error) {
	ctx, span := f.tracer.Start(ctx, "perfdata.page", trace.WithAttributes(
		attribute.String("perfdata.index", index),
		attribute.Int("perfdata.page", n),
	))
	defer span.End()

	queryJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fault.New(fault.Validation, "encode query", err)
	}

	res, err := f.exec.SearchForPerfdata(ctx, index, queryJSON)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		if fault.KindOf(err) == fault.Unknown {
			err = fault.New(fault.Network, "search", err)
		}
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError {
		respBody, _ := io.ReadAll(res.Body)
		span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
		span.SetStatus(codes.Error, res.Status)
		return nil, fault.New(fault.HTTP, "search", errfmt.FormatQueryError(res.Status, respBody, queryJSON))
	}

	var page searchPage
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&page); err != nil {
		span.SetStatus(codes.Error, "decode failed")
		return nil, fault.New(fault.Decode, "decode search response", err)
	}
	if len(page.Error) > 0 && string(page.Error) != "null" {
		return nil, fault.New(fault.HTTP, "search", fmt.Errorf("search returned an error: %s", page.Error))
	}

	f.metrics.ObservePage(len(page.Hits.Hits))
	span.SetAttributes(attribute.Int("perfdata.hits", len(page.Hits.Hits)))
	return page.Hits.Hits, nil
}
