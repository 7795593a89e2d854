package fiber_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"

	"github.com/GoSlider/GoSlider/internal/logger"
	adapter "github.com/GoSlider/GoSlider/internal/logger/adapter/fiber"
)

// expectedLoggerJSONFormat implements loggers default json format.
type expectedLoggerJSONFormat struct {
	IP           net.IP    `json:"IP"`
	Status       int       `json:"status"`
	XPerformance float32   `json:"X-Performance"`
	URI          string    `json:"URI"`
	Method       string    `json:"method"`
	Host         string    `json:"host"`
	UserAgent    string    `json:"User-Agent"`
	Time         time.Time `json:"time"`
}

func consoleConfig() adapter.Config {
	return adapter.Config{
		Config: logger.Log{
			EnableAccessLogToConsole: true,
			DisableCheckAlive:        true,
			Console:                  logger.Console{Enabled: true},
		},
		CheckAliveURI: "/checkalive",
	}
}

func TestNew(t *testing.T) {
	type want struct {
		err    error
		output *expectedLoggerJSONFormat
	}

	tests := []struct {
		name       string
		config     adapter.Config
		targetPath string
		want       want
	}{
		{
			name:       "empty no output at all",
			targetPath: "/",
		},
		{
			name:       "get / log to console json",
			config:     consoleConfig(),
			targetPath: "/",
			want: want{
				output: &expectedLoggerJSONFormat{
					IP:     net.ParseIP("0.0.0.0"),
					Status: fiber.StatusOK,
					URI:    "/",
					Method: fiber.MethodGet,
					Host:   "example.com",
				},
			},
		},
		{
			name:       "get log with params",
			config:     consoleConfig(),
			targetPath: "/?sesskey=abc",
			want: want{
				output: &expectedLoggerJSONFormat{
					IP:     net.ParseIP("0.0.0.0"),
					Status: fiber.StatusOK,
					URI:    "/?sesskey=abc",
					Method: fiber.MethodGet,
					Host:   "example.com",
				},
			},
		},
		{
			name:       "unknown slider route",
			config:     consoleConfig(),
			targetPath: "/slider/7/unknown",
			want: want{
				output: &expectedLoggerJSONFormat{
					IP:     net.ParseIP("0.0.0.0"),
					Status: fiber.StatusNotFound,
					URI:    "/slider/7/unknown",
					Method: fiber.MethodGet,
					Host:   "example.com",
				},
			},
		},
		{
			name:       "checkalive is not logged",
			config:     consoleConfig(),
			targetPath: "/checkalive",
		},
		{
			name: "next skips the middleware",
			config: func() adapter.Config {
				cfg := consoleConfig()
				cfg.Next = func(_ fiber.Ctx) bool { return true }

				return cfg
			}(),
			targetPath: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := testMiddlewareHelper(t, tt.targetPath, tt.config)

			assert.Equal(t, tt.want.err, err)

			if tt.want.output == nil && output != "" {
				t.Errorf("expected no output, but got output %s", output)
			}

			if tt.want.output != nil && output == "" {
				t.Error("expected output but got no output")
			}

			if tt.want.output != nil && output != "" {
				var decodedOutput expectedLoggerJSONFormat
				if err = json.Unmarshal([]byte(output), &decodedOutput); err != nil {
					t.Error(err)
					return
				}

				assert.Equal(t, tt.want.output.Host, decodedOutput.Host)
				assert.Equal(t, tt.want.output.Method, decodedOutput.Method)
				assert.Equal(t, tt.want.output.Status, decodedOutput.Status)
				assert.Equal(t, tt.want.output.IP, decodedOutput.IP)
				assert.Equal(t, tt.want.output.URI, decodedOutput.URI)
			}
		})
	}
}

func testMiddlewareHelper(t *testing.T, targetPath string, adapterConfig adapter.Config) (string, error) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	// capture stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		Immutable:     true,
	})

	app.Use(adapter.New(adapterConfig))

	app.Get("/", func(ctx fiber.Ctx) error {
		return ctx.SendString("hello test")
	})

	app.Get("/checkalive", func(ctx fiber.Ctx) error {
		return ctx.SendString("OK")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, targetPath, nil))
	if err != nil {
		_ = w.Close()
		os.Stdout = stdout
		os.Stderr = stderr

		return "", err
	}

	_ = resp.Body.Close()

	outC := make(chan string)
	// copy the output in a separate goroutine so printing can't block indefinitely
	go func() {
		var buf bytes.Buffer

		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	// back to normal state
	_ = w.Close()
	os.Stdout = stdout
	os.Stderr = stderr
	out := <-outC

	return out, nil
}
