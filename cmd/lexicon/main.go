// SPDX-License-Identifier: MIT

// Command lexicon is the CLI front end over the scanner, wordlist
// sorter and trie builder: `scan` turns a Wiktionary dump into JSONL
// entries, `sort-words` turns an unsorted key stream into the trie
// builder's sorted input, `build-trie` turns a sorted wordlist into a
// serialized succinct trie, and `query` inspects an already-built trie
// file (spec §6.4, plus SPEC_FULL.md §11.1's `sort-words`/`query`
// additions). `scan` and `build-trie` can optionally upload their
// output to S3-compatible object storage via `--upload-bucket`.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/openword-lexicon/lexicon-core/pkg/extract"
	"github.com/openword-lexicon/lexicon-core/pkg/filter"
	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
	"github.com/openword-lexicon/lexicon-core/pkg/metrics"
	"github.com/openword-lexicon/lexicon-core/pkg/pipeline"
	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
	"github.com/openword-lexicon/lexicon-core/pkg/storage"
	"github.com/openword-lexicon/lexicon-core/pkg/trie"
	"github.com/openword-lexicon/lexicon-core/pkg/wordlist"
	"github.com/openword-lexicon/lexicon-core/pkg/xmldump"
)

// Exit codes, per spec §6.4: 0 success, 1 I/O error, 2 format error.
const (
	exitOK     = 0
	exitIOErr  = 1
	exitFormat = 2
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)

	if len(os.Args) < 2 {
		usage()
		os.Exit(exitIOErr)
	}

	var err error
	switch os.Args[1] {
	case "scan":
		err = runScan(os.Args[2:])
	case "sort-words":
		err = runSortWords(os.Args[2:])
	case "build-trie":
		err = runBuildTrie(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	default:
		usage()
		os.Exit(exitIOErr)
	}

	if err != nil {
		logger.Printf("%s failed: %v", os.Args[1], err)
		os.Exit(exitCodeFor(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: lexicon scan <dump-path> <output.jsonl> [--language L] [--limit N] [--diagnostic] [--workers N] [--zstd] [--metrics-addr ADDR] [--upload-bucket B] [--upload-prefix P] [--storagekey FILE]")
	fmt.Fprintln(os.Stderr, "       lexicon sort-words <input.txt> <output.txt>")
	fmt.Fprintln(os.Stderr, "       lexicon build-trie <wordlist.txt> <out.trie> [--format=v7|v8] [--depth=N] [--upload-bucket B] [--upload-prefix P] [--storagekey FILE]")
	fmt.Fprintln(os.Stderr, "       lexicon query <trie-file> <has|word-id|key-of-id|prefix> <arg> [--limit N]")
}

// exitCodeFor maps the error taxonomy of spec §7 to the CLI's two
// failure exit codes: I/O-flavored errors get 1, structural/format
// errors get 2. An error outside the taxonomy (e.g. an errgroup error
// that isn't one of the typed variants) is treated as the I/O code
// rather than assumed to be a format problem.
func exitCodeFor(err error) int {
	switch err.(type) {
	case *lexicon.ParseError, *lexicon.FormatError, *lexicon.IntegrityError:
		return exitFormat
	case *lexicon.IoError, *lexicon.DecompressError:
		return exitIOErr
	default:
		return exitIOErr
	}
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	language := fs.String("language", "English", "target language section to extract")
	limit := fs.Int("limit", 0, "stop after reading N pages from the dump, accepted or not (0 = no limit)")
	diagnostic := fs.Bool("diagnostic", false, "enable the open-tag fallback for truncated pages")
	workers := fs.Int("workers", 1, "number of parallel extractor workers")
	zstdOut := fs.Bool("zstd", false, "zstd-compress the output JSONL file")
	metricsAddr := fs.String("metrics-addr", "", "if set, serve run counters as Prometheus metrics on this address")
	uploadBucket, uploadPrefix, storageKey := addUploadFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		usage()
		return &lexicon.IoError{Op: "scan", Err: fmt.Errorf("expected <dump-path> <output.jsonl>")}
	}
	dumpPath, outPath := fs.Arg(0), fs.Arg(1)

	in, err := xmldump.Open(dumpPath)
	if err != nil {
		return err
	}
	defer in.Close()

	// Write through a sibling temp file and rename into place only once
	// every entry has landed, so a run that dies partway never leaves a
	// truncated output file at outPath (spec §7's "no partial output
	// file" rule, the same guarantee lexicon.WriteAtomic gives callers
	// that can buffer their whole write in one synchronous callback;
	// scan's entries arrive asynchronously off the pipeline instead, so
	// the temp-then-rename is done by hand here).
	tmpPath := outPath + ".tmp"
	out, err := xmldump.CreateOutput(tmpPath, *zstdOut)
	if err != nil {
		return err
	}
	abort := func(err error) error {
		out.Close()
		os.Remove(tmpPath)
		return err
	}

	counters := runstats.New()
	scanner := xmldump.NewScanner(xmldump.BufferedText(in), *diagnostic, counters)
	w := lexicon.NewWriter(out)

	cfg := pipeline.Config{
		Filter:     filter.Config{TargetLanguage: *language},
		Extract:    extract.Config{TargetLanguage: *language},
		NumWorkers: *workers,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *metricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, *metricsAddr, metrics.NewCollector("lexicon", counters)); err != nil {
				logger.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	src := &limitedSource{Scanner: scanner, limit: *limit}
	if err := pipeline.Run(ctx, src, cfg, w, counters); err != nil {
		return abort(err)
	}
	if err := w.Flush(); err != nil {
		return abort(&lexicon.IoError{Op: "flush " + tmpPath, Err: err})
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return &lexicon.IoError{Op: "close " + tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return &lexicon.IoError{Op: "rename " + tmpPath, Err: err}
	}

	logSummary(counters)

	if *uploadBucket != "" {
		if err := uploadArtifact(ctx, *uploadBucket, *uploadPrefix, *storageKey, outPath, "application/x-ndjson"); err != nil {
			return err
		}
	}
	return nil
}

// limitedSource wraps *xmldump.Scanner to stop after the configured
// number of pages read from the dump. Every page the scanner yields
// counts toward the limit, including pages the filter later rejects;
// accepted pages are not counted separately.
type limitedSource struct {
	*xmldump.Scanner
	limit int
	seen  int
}

func (s *limitedSource) Scan() bool {
	if s.limit > 0 && s.seen >= s.limit {
		return false
	}
	if !s.Scanner.Scan() {
		return false
	}
	s.seen++
	return true
}

func runBuildTrie(args []string) error {
	fs := flag.NewFlagSet("build-trie", flag.ExitOnError)
	format := fs.String("format", "v7", "output format: v7 or v8")
	depth := fs.Int("depth", trie.DefaultDepth, "tail sub-trie recursion depth")
	uploadBucket, uploadPrefix, storageKey := addUploadFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		usage()
		return &lexicon.IoError{Op: "build-trie", Err: fmt.Errorf("expected <wordlist.txt> <out.trie>")}
	}
	wordlistPath, outPath := fs.Arg(0), fs.Arg(1)

	var fmtVal trie.Format
	switch *format {
	case "v7":
		fmtVal = trie.FormatV7
	case "v8":
		fmtVal = trie.FormatV8
	default:
		return &lexicon.FormatError{Msg: "unknown --format " + *format}
	}

	f, err := os.Open(wordlistPath)
	if err != nil {
		return &lexicon.IoError{Op: "open " + wordlistPath, Err: err}
	}
	defer f.Close()

	var keys []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			keys = append(keys, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return &lexicon.IoError{Op: "read " + wordlistPath, Err: err}
	}

	ctx := context.Background()
	b, err := trie.Build(ctx, keys, *depth)
	if err != nil {
		return err
	}

	// Write through a sibling temp file and rename into place only once
	// serialization succeeds, so a failed build never leaves a truncated
	// .trie file at outPath (spec §7's "no partial output file" rule).
	tmpPath := outPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return &lexicon.IoError{Op: "create " + tmpPath, Err: err}
	}
	if err := b.Serialize(out, fmtVal); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return &lexicon.IoError{Op: "close " + tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return &lexicon.IoError{Op: "rename " + tmpPath, Err: err}
	}

	logger.Printf("built trie: %s words, %s nodes -> %s",
		humanize.Comma(int64(b.WordCount)), humanize.Comma(int64(b.NodeCount)), outPath)

	if *uploadBucket != "" {
		if err := uploadArtifact(ctx, *uploadBucket, *uploadPrefix, *storageKey, outPath, "application/octet-stream"); err != nil {
			return err
		}
	}
	return nil
}

// runSortWords drives pkg/wordlist.Prepare (spec §6.2): it reads an
// unsorted, possibly-duplicate stream of keys and writes the sorted,
// duplicate-free stream build-trie requires.
func runSortWords(args []string) error {
	fs := flag.NewFlagSet("sort-words", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		usage()
		return &lexicon.IoError{Op: "sort-words", Err: fmt.Errorf("expected <input.txt> <output.txt>")}
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	in, err := os.Open(inPath)
	if err != nil {
		return &lexicon.IoError{Op: "open " + inPath, Err: err}
	}
	defer in.Close()

	tmpPath := outPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return &lexicon.IoError{Op: "create " + tmpPath, Err: err}
	}
	if err := wordlist.Prepare(context.Background(), in, out); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return &lexicon.IoError{Op: "close " + tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return &lexicon.IoError{Op: "rename " + tmpPath, Err: err}
	}

	logger.Printf("sorted wordlist written to %s", outPath)
	return nil
}

// addUploadFlags registers the `--upload-bucket`/`--upload-prefix`/
// `--storagekey` flags shared by `scan` and `build-trie`.
func addUploadFlags(fs *flag.FlagSet) (bucket, prefix, storageKey *string) {
	bucket = fs.String("upload-bucket", "", "if set, upload the output file to this S3-compatible bucket after it's written locally")
	prefix = fs.String("upload-prefix", "", "object key prefix under --upload-bucket")
	storageKey = fs.String("storagekey", "", `path to a JSON key file ({"Endpoint":...,"Key":...,"Secret":...}) with S3 access credentials; falls back to the S3_ENDPOINT/S3_KEY/S3_SECRET environment variables`)
	return bucket, prefix, storageKey
}

// newStorageClient sets up a minio.Client for --upload-bucket, resolving
// credentials the same two ways the teacher's own NewStorageClient does:
// a JSON key file, or the S3_ENDPOINT/S3_KEY/S3_SECRET environment
// variables when no key file is given.
func newStorageClient(keyPath string) (*minio.Client, error) {
	var config struct{ Endpoint, Key, Secret string }
	if keyPath == "" {
		config.Endpoint = os.Getenv("S3_ENDPOINT")
		config.Key = os.Getenv("S3_KEY")
		config.Secret = os.Getenv("S3_SECRET")
	} else {
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, &lexicon.IoError{Op: "read " + keyPath, Err: err}
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, &lexicon.FormatError{Msg: "invalid storage key file: " + err.Error()}
		}
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Key, config.Secret, ""),
		Secure: true,
	})
	if err != nil {
		return nil, &lexicon.IoError{Op: "connect to " + config.Endpoint, Err: err}
	}
	client.SetAppInfo("openword-lexicon", "0.1")
	return client, nil
}

// uploadArtifact copies the local file at path to bucket/prefix once it
// has been written successfully (pkg/storage.Upload's staged-then-
// promoted write).
func uploadArtifact(ctx context.Context, bucket, prefix, storageKeyPath, path, contentType string) error {
	client, err := newStorageClient(storageKeyPath)
	if err != nil {
		return err
	}
	dest := storage.Destination{Bucket: bucket, Prefix: prefix}
	objectName := filepath.Base(path)
	if err := storage.Upload(ctx, client, dest, path, objectName, contentType); err != nil {
		return err
	}
	logger.Printf("uploaded %s to s3://%s/%s/%s", path, bucket, prefix, objectName)
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	limit := fs.Int("limit", 20, "max results for prefix enumeration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		usage()
		return &lexicon.IoError{Op: "query", Err: fmt.Errorf("expected <trie-file> <has|word-id|key-of-id|prefix> <arg>")}
	}
	triePath, mode, arg := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	data, err := os.ReadFile(triePath)
	if err != nil {
		return &lexicon.IoError{Op: "read " + triePath, Err: err}
	}
	t, err := trie.Load(data)
	if err != nil {
		return err
	}

	switch mode {
	case "has":
		fmt.Println(t.Has(arg))
	case "word-id":
		id, ok := t.WordID(arg)
		if !ok {
			fmt.Println("not found")
			return nil
		}
		fmt.Println(id)
	case "key-of-id":
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return &lexicon.FormatError{Msg: "invalid word id " + arg}
		}
		fmt.Println(t.KeyOfID(uint32(id)))
	case "prefix":
		for _, k := range t.PrefixEnum(arg, *limit) {
			fmt.Println(k)
		}
	default:
		usage()
		return &lexicon.FormatError{Msg: "unknown query mode " + mode}
	}
	return nil
}

func logSummary(counters *runstats.Counters) {
	snapshot := counters.Snapshot()
	for _, name := range counters.Names() {
		logger.Printf("  %s: %s", name, humanize.Comma(snapshot[name]))
	}
}
