package logger

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
	"github.com/rs/zerolog/diode"
)

const (
	defaultDataDogTimeout = 5 * time.Second
	dataDogSource         = "go"
	diodeBufferSize       = 1000
	diodePollInterval     = 10 * time.Millisecond
)

// logSubmitter is the part of the datadog logs api the writer needs.
type logSubmitter interface {
	SubmitLog(
		ctx context.Context,
		body []datadogV2.HTTPLogItem,
		o ...datadogV2.SubmitLogOptionalParameters,
	) (interface{}, *http.Response, error)
}

// DataDogWriter ships every log line to the datadog intake.
type DataDogWriter struct {
	api      logSubmitter
	ctx      context.Context //nolint:containedctx // carries the datadog api keys
	service  string
	hostname string
	tags     string
	timeout  time.Duration
}

// NewDataDogWriter creates a writer for the datadog logs api.
func NewDataDogWriter(cfg DataDog) *DataDogWriter {
	ctx := context.WithValue(
		context.Background(),
		datadog.ContextAPIKeys,
		map[string]datadog.APIKey{"apiKeyAuth": {Key: cfg.APIKey}},
	)

	if cfg.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{"site": cfg.Site})
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultDataDogTimeout
	}

	hostname, _ := os.Hostname()

	return &DataDogWriter{
		api:      datadogV2.NewLogsApi(datadog.NewAPIClient(datadog.NewConfiguration())),
		ctx:      ctx,
		service:  cfg.ServiceName,
		hostname: hostname,
		tags:     cfg.Tags,
		timeout:  timeout,
	}
}

// Write implements io.Writer. p is one serialized zerolog event.
func (w *DataDogWriter) Write(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	defer cancel()

	item := datadogV2.HTTPLogItem{
		Ddsource: datadog.PtrString(dataDogSource),
		Hostname: datadog.PtrString(w.hostname),
		Message:  string(bytes.TrimSpace(p)),
		Service:  datadog.PtrString(w.service),
	}

	if w.tags != "" {
		item.Ddtags = datadog.PtrString(w.tags)
	}

	if _, _, err := w.api.SubmitLog(ctx, []datadogV2.HTTPLogItem{item}); err != nil {
		return 0, err //nolint:wrapcheck
	}

	return len(p), nil
}

// newDataDogDiode wraps the datadog writer in a non blocking ring buffer.
func newDataDogDiode(cfg DataDog) diode.Writer {
	return diode.NewWriter(NewDataDogWriter(cfg), diodeBufferSize, diodePollInterval, func(missed int) {
		_, _ = os.Stderr.WriteString("datadog log writer dropped " + strconv.Itoa(missed) + " messages\n")
	})
}
