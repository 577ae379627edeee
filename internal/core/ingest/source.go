package ingest

import (
	"ai-concierge/internal/core/chunker"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ledongthuc/pdf"
)

// maxLineBytes bounds a single corpus line.
const maxLineBytes = 1 << 20

// EmbeddedSourceName selects the corpus compiled into the binary.
const EmbeddedSourceName = "embedded"

// Source yields the raw corpus, one entry per line.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ObjectGetter is the subset of *s3.Client used to download a corpus.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewSource resolves a configured source: "embedded", "s3://bucket/key" or a
// local path. PDF files (by extension) are converted to plain text first.
// newS3 is only called for s3:// sources.
func NewSource(spec string, embedded []byte, newS3 func() (ObjectGetter, error)) (Source, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case spec == "" || spec == EmbeddedSourceName:
		return BytesSource{Label: EmbeddedSourceName, Data: embedded}, nil
	case strings.HasPrefix(spec, "s3://"):
		u, err := url.Parse(spec)
		if err != nil {
			return nil, err
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("invalid s3 source %q", spec)
		}
		if newS3 == nil {
			return nil, errors.New("s3 source configured without s3 client")
		}
		cli, err := newS3()
		if err != nil {
			return nil, err
		}
		return S3Source{Bucket: u.Host, Key: key, Client: cli}, nil
	default:
		return FileSource{Path: spec}, nil
	}
}

// BytesSource serves an in-memory corpus.
type BytesSource struct {
	Label string
	Data  []byte
}

func (s BytesSource) Name() string { return s.Label }

func (s BytesSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

// FileSource reads a local text or PDF file.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	abs := s.Path
	if !filepath.IsAbs(abs) {
		// allow paths relative to the working directory
		cwd, _ := os.Getwd()
		abs = filepath.Join(cwd, s.Path)
	}
	if isPDF(abs) {
		return ExtractPDFText(abs)
	}
	return os.Open(abs)
}

// S3Source downloads the corpus from a bucket (MinIO or AWS).
type S3Source struct {
	Bucket string
	Key    string
	Client ObjectGetter
}

func (s S3Source) Name() string { return "s3://" + s.Bucket + "/" + s.Key }

func (s S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.Bucket), Key: aws.String(s.Key)})
	if err != nil {
		return nil, err
	}
	if !isPDF(s.Key) {
		return out.Body, nil
	}
	defer out.Body.Close()

	tmpPath, cleanup, err := downloadToTemp(out.Body)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return ExtractPDFText(tmpPath)
}

// downloadToTemp spools r into a temp file; the pdf reader needs random access.
func downloadToTemp(r io.Reader) (string, func(), error) {
	tmp, err := os.CreateTemp("", "ingest-*.pdf")
	if err != nil {
		return "", func() {}, err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", func() {}, err
	}
	tmp.Close()
	return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, nil
}

// ExtractPDFText returns the plain text of a PDF using ledongthuc/pdf.
func ExtractPDFText(localPath string) (io.ReadCloser, error) {
	f, r, err := pdf.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	text, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}
	return io.NopCloser(&buf), nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ScanDocuments calls fn for every non-blank line of r. Document indexes are
// 1-based line numbers, so blank lines leave gaps. Scanning stops at the
// first error from r or fn.
func ScanDocuments(r io.Reader, fn func(chunker.Document) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		text := sanitizeLine(sc.Text())
		if text == "" {
			continue
		}
		if err := fn(chunker.Document{Index: line, Content: text}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read line %d: %w", line+1, err)
	}
	return nil
}

// sanitizeLine removes BOM and non-printable runes, keeping tabs.
func sanitizeLine(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\uFEFF' || r == unicode.ReplacementChar {
			continue
		}
		if r != '\t' && !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
