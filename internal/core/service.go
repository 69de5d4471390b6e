package core

import (
	"context"
	"fmt"
	"time"

	"github.com/arturomorarioja/csv-parser-api/internal/config"
)

// Service is the entry point for parse requests. It is built once at
// startup from the immutable configuration and shared by all requests.
type Service struct {
	resolver  *Resolver
	converter *Converter
	limiter   *ParseLimiter
}

// ParseResult is the outcome of a successful Parse.
type ParseResult struct {
	Path     string         // resolved absolute path
	Records  RecordSequence // rows in file order
	Duration time.Duration  // time spent reading and parsing
}

// NewService wires the resolver, converter and limiter from cfg.
func NewService(cfg *config.Config) (*Service, error) {
	resolver, err := NewResolver(cfg.Files.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	return &Service{
		resolver:  resolver,
		converter: NewConverter(cfg.Files.MaxFileSize),
		limiter:   NewParseLimiter(cfg.Files.MaxConcurrent, cfg.Files.MaxWaitTime),
	}, nil
}

// Parse resolves input against the base directory and converts the file it
// names. Path errors are reported before a parse slot is taken.
func (s *Service) Parse(ctx context.Context, input string) (*ParseResult, error) {
	path, err := s.resolver.Resolve(input)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	records, err := s.converter.ConvertFile(ctx, path)
	if err != nil {
		return nil, err
	}

	return &ParseResult{
		Path:     path,
		Records:  records,
		Duration: time.Since(start),
	}, nil
}

// BaseDir returns the canonical base directory.
func (s *Service) BaseDir() string {
	return s.resolver.Base()
}

// LimiterStatus reports parse slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForParses blocks until in-flight parses finish or ctx is done.
func (s *Service) WaitForParses(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
