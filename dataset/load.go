package dataset

import (
	"context"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/biswajyotidutta/tabeda/pkg/errors"
	"github.com/biswajyotidutta/tabeda/pkg/log"
)

// DefaultTimeout bounds a remote fetch when no client is supplied.
const DefaultTimeout = 30 * time.Second

var missingTokens = []string{"", "NA", "NaN", "nan", "<nil>", "?"}

type options struct {
	target   string
	client   *http.Client
	registry *Registry
	logger   log.Logger
}

// Option configures Load.
type Option func(*options)

// WithTarget overrides the target column. Matching is case-insensitive.
func WithTarget(name string) Option {
	return func(o *options) {
		o.target = name
	}
}

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithRegistry replaces the built-in registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger sets the logger; the process logger is used otherwise.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Load resolves id and returns its features and target as float64 columns.
//
// id is a registered dataset name, an http(s) URL, a file:// URL or a local
// CSV path. Without WithTarget the registered target is used, or the last
// column for unregistered sources.
func Load(ctx context.Context, id string, opts ...Option) (*Dataset, error) {
	o := options{registry: DefaultRegistry()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: DefaultTimeout}
	}
	if o.logger == nil {
		o.logger = log.GetLogger()
	}
	logger := o.logger.With(log.ComponentKey, "dataset", log.DatasetIDKey, id)
	start := time.Now()

	location, target, err := o.resolve(id)
	if err != nil {
		return nil, err
	}

	rc, err := o.open(ctx, id, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ds, err := parse(id, rc, target)
	if err != nil {
		return nil, err
	}

	logger.Info("Dataset loaded",
		log.SourceKey, location,
		log.TargetKey, ds.TargetName,
		log.SamplesKey, ds.Rows(),
		log.FeaturesKey, len(ds.FeatureNames()),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return ds, nil
}

func (o *options) resolve(id string) (location, target string, err error) {
	target = o.target
	if src, ok := o.registry.Lookup(id); ok {
		if target == "" {
			target = src.Target
		}
		return src.URL, target, nil
	}

	switch {
	case strings.HasPrefix(id, "http://"), strings.HasPrefix(id, "https://"), strings.HasPrefix(id, "file://"):
		return id, target, nil
	}
	if fi, statErr := os.Stat(id); statErr == nil && !fi.IsDir() {
		return id, target, nil
	}
	return "", "", errors.NewDatasetError(id, errors.DatasetUnknown,
		errors.Newf("not a registered dataset (%s), URL or file", strings.Join(o.registry.Names(), ", ")))
}

func (o *options) open(ctx context.Context, id, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(strings.TrimPrefix(location, "file://"))
		if err != nil {
			return nil, errors.NewDatasetError(id, errors.DatasetUnreachable, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.NewDatasetError(id, errors.DatasetUnreachable, err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, errors.NewDatasetError(id, errors.DatasetUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errors.NewDatasetError(id, errors.DatasetUnreachable,
			errors.Newf("GET %s: %s", location, resp.Status))
	}
	return resp.Body, nil
}

// parse reads a CSV with a header row. Every column is read as text and
// converted here so that coercions can be reported per column.
func parse(id string, r io.Reader, target string) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return nil, errors.NewDatasetError(id, errors.DatasetParse, df.Err)
	}
	if df.Nrow() == 0 || df.Ncol() < 2 {
		return nil, errors.NewDatasetError(id, errors.DatasetParse,
			errors.Newf("need a header, at least one row and two columns, got %dx%d", df.Nrow(), df.Ncol()))
	}

	names := df.Names()
	targetName := ""
	if target == "" {
		targetName = names[len(names)-1]
	} else {
		for _, n := range names {
			if strings.EqualFold(n, target) {
				targetName = n
				break
			}
		}
	}
	if targetName == "" {
		return nil, errors.NewDatasetError(id, errors.DatasetTarget,
			errors.Newf("column %q not found in %v", target, names))
	}

	y, col := parseColumn(df.Col(targetName).Records())
	if col.encoded || col.unparsed > 0 {
		return nil, errors.NewDatasetError(id, errors.DatasetParse,
			errors.Newf("target column %q is not numeric", targetName))
	}
	for i, v := range y {
		if math.IsNaN(v) {
			return nil, errors.NewDatasetError(id, errors.DatasetParse,
				errors.Newf("target column %q has a missing value at row %d", targetName, i))
		}
	}

	featureNames := make([]string, 0, len(names)-1)
	columns := make([][]float64, 0, len(names)-1)
	for _, n := range names {
		if n == targetName {
			continue
		}
		values, col := parseColumn(df.Col(n).Records())
		switch {
		case col.encoded:
			errors.Warn(errors.NewDataConversionWarning(n, "string", "float64",
				"non-numeric labels encoded as ordinal codes"))
		case col.unparsed > 0:
			errors.Warn(errors.NewDataConversionWarning(n, "string", "float64",
				strconv.Itoa(col.unparsed)+" unparseable values treated as missing"))
		}
		featureNames = append(featureNames, n)
		columns = append(columns, values)
	}

	return New(id, featureNames, columns, targetName, y)
}

// columnParse describes how a text column was converted.
type columnParse struct {
	// encoded is set when no present value is numeric and the column was
	// replaced by sorted label codes.
	encoded bool
	// unparsed counts non-numeric cells set to NaN in an otherwise numeric column.
	unparsed int
}

// parseColumn converts text records to float64. Missing tokens become NaN.
// Numbers are kept as parsed; a non-numeric cell becomes NaN unless the
// column has no numbers at all, in which case it is label encoded.
func parseColumn(records []string) ([]float64, columnParse) {
	var (
		values  = make([]float64, len(records))
		parsed  int
		unparse int
	)
	for i, rec := range records {
		rec = strings.TrimSpace(rec)
		if isMissing(rec) {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(rec, 64)
		if err != nil {
			values[i] = math.NaN()
			unparse++
			continue
		}
		values[i] = v
		parsed++
	}
	if parsed == 0 && unparse > 0 {
		return encodeLabels(records), columnParse{encoded: true}
	}
	return values, columnParse{unparsed: unparse}
}

func encodeLabels(records []string) []float64 {
	seen := make(map[string]struct{})
	for _, rec := range records {
		rec = strings.TrimSpace(rec)
		if !isMissing(rec) {
			seen[rec] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	code := make(map[string]float64, len(labels))
	for i, l := range labels {
		code[l] = float64(i)
	}

	values := make([]float64, len(records))
	for i, rec := range records {
		rec = strings.TrimSpace(rec)
		if isMissing(rec) {
			values[i] = math.NaN()
			continue
		}
		values[i] = code[rec]
	}
	return values
}

func isMissing(s string) bool {
	for _, m := range missingTokens {
		if s == m {
			return true
		}
	}
	return false
}
