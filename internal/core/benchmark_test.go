package core

import (
	"context"
	"strconv"
	"strings"
	"testing"
)

// ============================================================================
// Converter Benchmarks
// ============================================================================

func buildCSV(rows, cols int) string {
	var b strings.Builder
	for c := 0; c < cols; c++ {
		if c > 0 {
			b.WriteByte(',')
		}
		b.WriteString("col" + strconv.Itoa(c))
	}
	b.WriteByte('\n')
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteByte(',')
			}
			if c%3 == 0 {
				b.WriteString(`"quoted, value ` + strconv.Itoa(r) + `"`)
			} else {
				b.WriteString("  value" + strconv.Itoa(r*cols+c) + "  ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// BenchmarkConvert_Small is a typical hand-edited file.
func BenchmarkConvert_Small(b *testing.B) {
	data := buildCSV(50, 5)
	conv := NewConverter(0)
	ctx := context.Background()

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conv.Convert(ctx, strings.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkConvert_Large exercises the context check interval and trimming.
func BenchmarkConvert_Large(b *testing.B) {
	data := buildCSV(10000, 12)
	conv := NewConverter(0)
	ctx := context.Background()

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conv.Convert(ctx, strings.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Encoding Benchmarks
// ============================================================================

func BenchmarkRecordSequence_MarshalJSON(b *testing.B) {
	records, err := NewConverter(0).Convert(context.Background(), strings.NewReader(buildCSV(1000, 8)))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := records.MarshalJSON(); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Resolver Benchmarks
// ============================================================================

func BenchmarkResolve(b *testing.B) {
	r, err := NewResolver("/app/data")
	if err != nil {
		b.Fatal(err)
	}
	inputs := []string{"sales.csv", "a/b/../c.csv", "../../etc/passwd", "/tmp/x.csv"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			_, _ = r.Resolve(in)
		}
	}
}
