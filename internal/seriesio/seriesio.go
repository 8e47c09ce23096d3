// Package seriesio reads and writes polynomials in a compact binary format.
//
// A file is a zstd stream holding:
//
//	magic "PLYC" | version:byte | ring:str | nsyms:uvarint | sym:str... |
//	nterms:uvarint | (key:varint cf:str)...
//
// where str is a uvarint length followed by the bytes. Terms are written in
// increasing key order so that equal polynomials produce equal files.
// Coefficients are stored in the decimal form of Ring.Format.
package seriesio

import (
	"bufio"
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"slices"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/agbru/polycalc/internal/coeff"
	"github.com/agbru/polycalc/internal/kronecker"
	"github.com/agbru/polycalc/internal/polynomial"
	"github.com/agbru/polycalc/internal/series"
	"github.com/agbru/polycalc/internal/symbols"
)

const (
	magic   = "PLYC"
	version = 1

	// maxString bounds a decoded string so that a corrupted length cannot
	// trigger a huge allocation.
	maxString = 1 << 20
)

var (
	// ErrFormat is returned for input that is not a polynomial file.
	ErrFormat = errors.New("not a polynomial file")
	// ErrVersion is returned for a file written by an unknown format version.
	ErrVersion = errors.New("unsupported polynomial file version")
	// ErrRingMismatch is returned when the file ring differs from the requested one.
	ErrRingMismatch = errors.New("coefficient ring mismatch")
)

// Parser converts the text produced by Ring.Format back into a coefficient.
type Parser[C any] func(s string) (C, error)

// ParseInt64 parses an int64 coefficient.
func ParseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

// ParseFloat64 parses a float64 coefficient.
func ParseFloat64(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// ParseBigInt parses a *big.Int coefficient.
func ParseBigInt(s string) (*big.Int, error) {
	z, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return z, nil
}

// ParseRat parses a *big.Rat coefficient.
func ParseRat(s string) (*big.Rat, error) {
	z, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid rational %q", s)
	}
	return z, nil
}

// Write encodes p to w.
//
// Parameters:
//   - w: The destination. It is not closed.
//   - p: The polynomial to encode.
//
// Returns:
//   - error: An error from the compressor or from w.
func Write[C any](w io.Writer, p *polynomial.Polynomial[C]) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	bw := bufio.NewWriter(enc)

	terms := p.Series().Terms()
	slices.SortFunc(terms, func(a, b series.Term[C]) int { return cmp.Compare(a.Key, b.Key) })

	buf := make([]byte, 0, 64)
	buf = append(buf, magic...)
	buf = append(buf, version)
	buf = appendString(buf, p.Ring().Name())
	names := p.Symbols().Names()
	buf = binary.AppendUvarint(buf, uint64(len(names)))
	for _, n := range names {
		buf = appendString(buf, n)
	}
	buf = binary.AppendUvarint(buf, uint64(len(terms)))
	if _, err := bw.Write(buf); err != nil {
		enc.Close()
		return err
	}
	for _, t := range terms {
		buf = binary.AppendVarint(buf[:0], int64(t.Key))
		buf = appendString(buf, p.Ring().Format(t.Cf))
		if _, err := bw.Write(buf); err != nil {
			enc.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func appendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// Read decodes a polynomial over ring r from rd.
//
// Parameters:
//   - rd: The source.
//   - r: The ring the file must have been written with.
//   - parse: The coefficient parser for r.
//
// Returns:
//   - *polynomial.Polynomial[C]: The decoded polynomial.
//   - error: ErrFormat, ErrVersion or ErrRingMismatch (wrapped), or a read error.
func Read[C any](rd io.Reader, r coeff.Ring[C], parse Parser[C]) (*polynomial.Polynomial[C], error) {
	dec, err := zstd.NewReader(rd, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	head := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if string(head[:len(magic)]) != magic {
		return nil, ErrFormat
	}
	if head[len(magic)] != version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, head[len(magic)])
	}
	ring, err := readString(br)
	if err != nil {
		return nil, err
	}
	if ring != r.Name() {
		return nil, fmt.Errorf("%w: file holds %s coefficients, expected %s", ErrRingMismatch, ring, r.Name())
	}

	nsyms, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if nsyms >= kronecker.MaxDimensions {
		return nil, fmt.Errorf("%w: %d symbols", ErrFormat, nsyms)
	}
	names := make([]string, nsyms)
	for i := range names {
		if names[i], err = readString(br); err != nil {
			return nil, err
		}
	}
	syms := symbols.New(names...)
	if syms.Len() != len(names) {
		return nil, fmt.Errorf("%w: duplicate symbols", ErrFormat)
	}

	nterms, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	set, err := series.New[C](0)
	if err != nil {
		return nil, err
	}
	for range nterms {
		key, err := binary.ReadVarint(br)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		m := kronecker.Monomial(key)
		if !kronecker.IsCompatible(m, syms.Len()) {
			return nil, fmt.Errorf("%w: monomial %d out of range", ErrFormat, key)
		}
		text, err := readString(br)
		if err != nil {
			return nil, err
		}
		cf, err := parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		if err := set.Insert(series.Term[C]{Cf: cf, Key: m}, r); err != nil {
			return nil, err
		}
	}
	return polynomial.FromSeries(r, syms, set), nil
}

func readString(br *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if n > maxString {
		return "", fmt.Errorf("%w: string of %d bytes", ErrFormat, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(br, b); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return string(b), nil
}

// WriteFile encodes p into the file at path, replacing it.
func WriteFile[C any](path string, p *polynomial.Polynomial[C]) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, p)
}

// ReadFile decodes the polynomial stored at path.
func ReadFile[C any](path string, r coeff.Ring[C], parse Parser[C]) (*polynomial.Polynomial[C], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, r, parse)
}
